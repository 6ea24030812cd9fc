package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rhonimohanraj/anti-bot/assets"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
)

// NewGuardrailCommand creates the guardrail command
func NewGuardrailCommand(env *Env) *cobra.Command {
	guardrailCmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Inspect the shell command blocklist",
	}
	guardrailCmd.AddCommand(
		newGuardrailCheckCommand(env),
		newGuardrailListCommand(env),
		newGuardrailInitCommand(env),
	)
	return guardrailCmd
}

// newGuardrailCheckCommand evaluates a command the way /run would
func newGuardrailCheckCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "check <command>",
		Short: "Report whether /run would accept a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			command := strings.Join(args, " ")
			assessment, err := container.Guardrail.Evaluate(command)
			if err != nil {
				return err
			}
			renderAssessment(cmd.OutOrStdout(), command, assessment)
			return nil
		},
	}
}

// newGuardrailListCommand prints the active blocklist
func newGuardrailListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show blocklist entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			for _, entry := range container.Config.GetBlockedCommands() {
				fmt.Fprintln(cmd.OutOrStdout(), entry)
			}
			return nil
		},
	}
}

// newGuardrailInitCommand writes the bundled regex rules to security.rules_file
func newGuardrailInitCommand(env *Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default guardrail rules file",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			path := filesystem.ExpandHome(container.Config.Security.RulesFile)
			if path == "" {
				return errors.New("security.rules_file is not set")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
				return err
			}
			if err := filesystem.WriteFileAtomic(path, assets.DefaultGuardrailYAML, domain.FilePermissions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote guardrail rules to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing rules file")
	return cmd
}
