package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(env *Env) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect actions logged across sessions",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(env),
		newHistorySearchCommand(env),
		newHistoryClearCommand(env),
		newHistoryExportCommand(env),
	)

	return historyCmd
}

func historyStore(cmd *cobra.Command, env *Env) (ports.HistoryRepository, error) {
	container, err := env.Container(cmd.Context())
	if err != nil {
		return nil, err
	}
	store := container.History()
	if store == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return store, nil
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, env)
			if err != nil {
				return err
			}
			return listHistoryEntries(cmd.OutOrStdout(), store, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistorySearchCommand creates the 'history search' subcommand
func newHistorySearchCommand(env *Env) *cobra.Command {
	var searchLimit int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search actions by target or summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, env)
			if err != nil {
				return err
			}
			return listHistoryEntries(cmd.OutOrStdout(), store, searchLimit, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVar(&searchLimit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, env)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			return nil
		},
	}
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, env)
			if err != nil {
				return err
			}
			if err := store.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			return nil
		},
	}
}

func listHistoryEntries(out io.Writer, store ports.HistoryRepository, limit int, query string) error {
	records, err := store.Records(limit, query)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	renderHistory(out, records)
	return nil
}
