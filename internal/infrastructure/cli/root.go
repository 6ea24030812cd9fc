package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rhonimohanraj/anti-bot/internal/app"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command. The container is built lazily by
// the subcommands so --config is honoured.
func NewRootCmd(ctx context.Context, opts Options) *cobra.Command {
	env := commands.NewEnv(app.Options{ConfigPath: opts.ConfigPath, Verbose: opts.Verbose})

	root := &cobra.Command{
		Use:     "anti-bot",
		Short:   "anti-bot - drive your workstation from Telegram",
		Long:    "anti-bot relays Telegram messages to an LLM and applies file edits and commands only after you approve them.",
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)

	flags := root.PersistentFlags()
	flags.StringVar(&env.Options.ConfigPath, "config", opts.ConfigPath, "Path to config file (default ~/.anti-bot/config.yaml)")
	flags.BoolVarP(&env.Options.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(
		commands.NewServeCommand(env),
		commands.NewConsoleCommand(env),
		commands.NewSessionsCommand(env),
		commands.NewHistoryCommand(env),
		commands.NewConfigCommand(env),
		commands.NewDoctorCommand(env),
		commands.NewGuardrailCommand(env),
		commands.NewVersionCommand(),
	)
	return root
}
