package workflow

import (
	"context"
	"strings"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

const helpText = "🤖 *anti-bot*\n\n" +
	"💬 *AI Chat:*\n" +
	"  Just type anything → the model responds\n" +
	"  `/ask <prompt>` — explicit query\n" +
	"  `/clear` — fresh session\n" +
	"  `/history` — session summary\n\n" +
	"📂 *File Operations:*\n" +
	"  `/view <path>` — read a file\n" +
	"  `/edit <path> <instructions>` — AI-powered edit\n" +
	"  `/create <path> <description>` — generate a file\n" +
	"  `/ls [path]` — list directory\n" +
	"  `/project [path]` — set working dir\n\n" +
	"🚀 *Agentic Tasks:*\n" +
	"  `/task <description>` — multi-step coding task\n" +
	"  `/approve`, `/reject` — settle the pending proposal\n\n" +
	"🖥 *Host Control:*\n" +
	"  `/run <cmd>` — shell command\n" +
	"  `/file <path>` — download file\n" +
	"  `/screen` — screenshot\n" +
	"  `/status` — health check\n\n" +
	"📝 All actions logged for IDE continuity."

// Router turns raw operator text into coordinator operations and sends the
// outcome, including any error, back through a notifier.
type Router struct {
	coord  *Coordinator
	logger ports.Logger
}

// NewRouter wraps a coordinator.
func NewRouter(coord *Coordinator, logger ports.Logger) *Router {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Router{coord: coord, logger: logger}
}

// ParseCommand splits "/cmd@bot args" into its lower-cased name and the
// argument text. Plain text yields an empty name.
func ParseCommand(text string) (name, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	head, rest, _ := strings.Cut(text, " ")
	if nl := strings.IndexByte(head, '\n'); nl != -1 {
		rest = head[nl+1:] + " " + rest
		head = head[:nl]
	}
	head = strings.TrimPrefix(head, "/")
	if at := strings.IndexByte(head, '@'); at != -1 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest)
}

// Handle processes one inbound message. It only fails when the notifier does.
func (r *Router) Handle(ctx context.Context, n ports.Notifier, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	ctx = WithProgress(ctx, func(msg string) {
		if err := n.Notify(ctx, msg); err != nil {
			r.logger.Warn("progress notice failed", map[string]interface{}{"error": err.Error()})
		}
	})

	name, args := ParseCommand(text)
	reply, err := r.dispatch(ctx, name, args, text)
	if err != nil {
		r.logger.Warn("operation failed", map[string]interface{}{
			"command": name,
			"kind":    string(domain.KindOf(err)),
			"error":   err.Error(),
		})
		return n.Notify(ctx, domain.Describe(err))
	}

	for _, msg := range reply.Messages {
		if msg == "" {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			return err
		}
	}
	for _, f := range reply.Files {
		if err := n.SendFile(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) dispatch(ctx context.Context, name, args, raw string) (Reply, error) {
	switch name {
	case "":
		return r.coord.Decide(ctx, raw)
	case "start", "help":
		return textReply(helpText), nil
	case "ask":
		return r.coord.Ask(ctx, args)
	case "clear":
		return r.coord.NewSession(ctx)
	case "history":
		return r.coord.Summary(ctx)
	case "view":
		return r.coord.View(ctx, args)
	case "edit":
		path, instructions, _ := strings.Cut(args, " ")
		return r.coord.Edit(ctx, path, strings.TrimSpace(instructions))
	case "create":
		path, description, _ := strings.Cut(args, " ")
		return r.coord.Create(ctx, path, strings.TrimSpace(description))
	case "ls":
		return r.coord.List(ctx, args)
	case "project":
		return r.coord.Project(ctx, args)
	case "task":
		return r.coord.Task(ctx, args)
	case "approve":
		return r.coord.Approve(ctx)
	case "reject", "cancel":
		return r.coord.Reject(ctx)
	case "run":
		return r.coord.Run(ctx, args)
	case "status":
		return r.coord.Status(ctx)
	case "file":
		return r.coord.Fetch(ctx, args)
	case "screen":
		return r.coord.Screenshot(ctx)
	default:
		return Reply{}, domain.InvalidInput("Unknown command `/" + name + "`. Send /help for the list.")
	}
}
