package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rhonimohanraj/anti-bot/internal/application/workflow"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// NewConsoleCommand drives the workflow from the terminal instead of Telegram.
func NewConsoleCommand(env *Env) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot locally (same commands as Telegram)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			container, err := env.Container(ctx)
			if err != nil {
				return err
			}
			coord, err := container.NewCoordinator(model)
			if err != nil {
				return err
			}
			router := workflow.NewRouter(coord, container.Logger)
			return runConsole(ctx, router, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	return cmd
}

func runConsole(ctx context.Context, router *workflow.Router, in io.Reader, out io.Writer) error {
	notifier := &consoleNotifier{out: out}
	prompt := color.New(color.FgCyan).SprintFunc()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, prompt("> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := router.Handle(ctx, notifier, scanner.Text()); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

type consoleNotifier struct {
	out io.Writer
}

func (n *consoleNotifier) Notify(ctx context.Context, text string) error {
	_, err := fmt.Fprintf(n.out, "%s\n\n", text)
	return err
}

func (n *consoleNotifier) SendFile(ctx context.Context, file ports.Attachment) error {
	_, err := fmt.Fprintf(n.out, "%s\n📎 %s\n\n", file.Caption, file.Path)
	return err
}
