package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	configapp "github.com/rhonimohanraj/anti-bot/internal/application/config"
	"github.com/rhonimohanraj/anti-bot/internal/application/workflow"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/telegram"
)

// NewServeCommand runs the Telegram bot until interrupted.
func NewServeCommand(env *Env) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := env.Container(ctx)
			if err != nil {
				return err
			}
			cfg := container.Config
			if err := configapp.ValidateTransport(cfg); err != nil {
				return fmt.Errorf("telegram is not configured: %w", err)
			}

			coord, err := container.NewCoordinator(model)
			if err != nil {
				return err
			}
			router := workflow.NewRouter(coord, container.Logger)

			bot, err := telegram.New(telegram.Options{
				Token:         cfg.GetTelegramToken(),
				AllowedChatID: cfg.GetAllowedChatID(),
				PollTimeout:   cfg.Telegram.PollTimeout,
				Debug:         cfg.Telegram.Debug,
			}, router, container.Logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🤖 @%s is listening (session %s). Press Ctrl+C to stop.\n",
				bot.Username(), coord.SessionID())
			return bot.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	return cmd
}
