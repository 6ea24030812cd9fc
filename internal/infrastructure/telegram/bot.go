// Package telegram is the chat transport: it long-polls the Bot API, admits
// only the configured chat and hands each message to the router in order.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// Handler consumes one inbound message.
type Handler interface {
	Handle(ctx context.Context, n ports.Notifier, text string) error
}

// botAPI is the subset of *tgbotapi.BotAPI the transport uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options configures the transport.
type Options struct {
	Token         string
	AllowedChatID string
	PollTimeout   int
	Debug         bool
}

// Bot owns the polling loop.
type Bot struct {
	api         botAPI
	allowed     int64
	pollTimeout int
	handler     Handler
	logger      ports.Logger
	username    string
}

// New connects to the Bot API and verifies the token.
func New(opts Options, handler Handler, logger ports.Logger) (*Bot, error) {
	allowed, err := strconv.ParseInt(opts.AllowedChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("allowed chat id %q: %w", opts.AllowedChatID, err)
	}
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, domain.CollaboratorError("Telegram", err)
	}
	api.Debug = opts.Debug
	b := newBot(api, allowed, handler, logger)
	b.username = api.Self.UserName
	if opts.PollTimeout > 0 {
		b.pollTimeout = opts.PollTimeout
	}
	return b, nil
}

func newBot(api botAPI, allowed int64, handler Handler, logger ports.Logger) *Bot {
	return &Bot{
		api:         api,
		allowed:     allowed,
		pollTimeout: 60,
		handler:     handler,
		logger:      logger,
	}
}

// Username is the bot's @handle, known after New.
func (b *Bot) Username() string {
	return b.username
}

// Run polls until ctx is cancelled. Updates are handled one at a time.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram polling started", map[string]interface{}{
		"bot":          b.username,
		"allowed_chat": b.allowed,
	})
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("telegram polling stopped", nil)
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update channel closed")
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}
	fields := map[string]interface{}{
		"request_id": uuid.NewString(),
		"update_id":  update.UpdateID,
		"chat_id":    msg.Chat.ID,
	}
	if msg.Chat.ID != b.allowed {
		b.logger.Warn("ignoring message from unauthorized chat", fields)
		return
	}

	b.logger.Debug("update received", fields)
	start := time.Now()
	n := &chatNotifier{api: b.api, chatID: msg.Chat.ID, logger: b.logger}
	if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("typing indicator failed", map[string]interface{}{"error": err.Error()})
	}
	if err := b.handler.Handle(ctx, n, msg.Text); err != nil {
		b.logger.Error("reply failed", err, fields)
		return
	}
	fields["duration_ms"] = time.Since(start).Milliseconds()
	b.logger.Debug("update handled", fields)
}

// chatNotifier implements ports.Notifier for one chat.
type chatNotifier struct {
	api    botAPI
	chatID int64
	logger ports.Logger
}

// Notify sends text in chunks, retrying each chunk without Markdown when the
// API rejects its formatting.
func (n *chatNotifier) Notify(ctx context.Context, text string) error {
	for _, chunk := range Chunk(text, domain.MaxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := n.api.Send(msg); err != nil {
			n.logger.Debug("markdown rejected, resending as plain text", map[string]interface{}{"error": err.Error()})
			msg.ParseMode = ""
			if _, err := n.api.Send(msg); err != nil {
				return domain.CollaboratorError("Telegram", err)
			}
		}
	}
	return nil
}

// SendFile uploads a document or photo. Temporary files are removed after
// the attempt.
func (n *chatNotifier) SendFile(ctx context.Context, file ports.Attachment) error {
	if file.Temporary {
		defer func() {
			if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				n.logger.Warn("could not remove temporary file", map[string]interface{}{"path": file.Path, "error": err.Error()})
			}
		}()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var c tgbotapi.Chattable
	if file.Photo {
		photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FilePath(file.Path))
		photo.Caption = file.Caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		c = photo
	} else {
		doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FilePath(file.Path))
		doc.Caption = file.Caption
		doc.ParseMode = tgbotapi.ModeMarkdown
		c = doc
	}
	if _, err := n.api.Send(c); err != nil {
		return domain.CollaboratorError("Telegram", err)
	}
	return nil
}

var _ ports.Notifier = (*chatNotifier)(nil)
