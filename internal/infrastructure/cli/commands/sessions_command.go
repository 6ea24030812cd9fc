package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewSessionsCommand creates the sessions command
func NewSessionsCommand(env *Env) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Browse saved session documents",
	}
	sessionsCmd.AddCommand(
		newSessionsListCommand(env),
		newSessionsShowCommand(env),
		newSessionsPathCommand(env),
	)
	return sessionsCmd
}

func newSessionsListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := container.Sessions.List()
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoSessions)
				return nil
			}
			renderSessions(cmd.OutOrStdout(), entries, time.Now())
			return nil
		},
	}
}

func newSessionsShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id|latest]",
		Short: "Print a session document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			id := "latest"
			if len(args) == 1 {
				id = args[0]
			}
			doc, err := container.Sessions.Read(id)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
}

func newSessionsPathCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the sessions directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.Sessions.Dir())
			return nil
		},
	}
}
