// Package workflow drives the proposal/approval lifecycle: it drafts changes
// with the model, parks them in the proposal slot, executes approved ones and
// records every step in the session log.
package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rhonimohanraj/anti-bot/internal/application/proposal"
	"github.com/rhonimohanraj/anti-bot/internal/application/sessionlog"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// Options are the tunables of a Coordinator.
type Options struct {
	ProjectDir        string
	SessionsDir       string
	SystemPrompt      string
	ModelTimeout      time.Duration
	CommandTimeout    time.Duration
	MaxOutputLength   int
	MaxDownloadSize   int64
	ListLimit         int
	TaskContextLimit  int
	BackupSuffix      string
	RequireApproval   bool
	ReplaceOnConflict bool
	ProposalTTL       time.Duration
	Tokens            proposal.Tokens
	ScreenshotPath    string
	ScreenshotCommand string
}

// OptionsFromConfig derives coordinator options from the loaded config.
func OptionsFromConfig(cfg *domain.Config, model domain.ModelDefinition) Options {
	return Options{
		ProjectDir:        filesystem.ExpandHome(cfg.Workspace.ProjectDir),
		SessionsDir:       filesystem.ExpandHome(cfg.Sessions.Dir),
		SystemPrompt:      cfg.GetSystemPrompt(),
		ModelTimeout:      model.GetModelTimeout(),
		CommandTimeout:    cfg.GetCommandTimeout(),
		MaxOutputLength:   cfg.GetMaxOutputLength(),
		MaxDownloadSize:   cfg.GetMaxDownloadSize(),
		ListLimit:         cfg.GetListLimit(),
		TaskContextLimit:  cfg.GetTaskContextLimit(),
		BackupSuffix:      cfg.GetBackupSuffix(),
		RequireApproval:   cfg.ShouldRequireApproval(),
		ReplaceOnConflict: cfg.ShouldReplaceOnConflict(),
		ProposalTTL:       cfg.GetProposalTTL(),
		Tokens:            proposal.Tokens{Approve: cfg.GetApproveWords(), Reject: cfg.GetRejectWords()},
		ScreenshotPath:    filesystem.ExpandHome(cfg.Workspace.ScreenshotPath),
		ScreenshotCommand: cfg.Workspace.ScreenshotCmd,
	}
}

func (o *Options) hydrate() {
	if o.ProjectDir == "" {
		o.ProjectDir = filesystem.UserHomeDir()
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = domain.DefaultSystemPrompt
	}
	if o.ModelTimeout <= 0 {
		o.ModelTimeout = domain.DefaultModelTimeout
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = domain.DefaultCommandTimeout
	}
	if o.MaxOutputLength <= 0 {
		o.MaxOutputLength = domain.DefaultMaxOutputLength
	}
	if o.MaxDownloadSize <= 0 {
		o.MaxDownloadSize = domain.DefaultMaxDownloadSize
	}
	if o.ListLimit <= 0 {
		o.ListLimit = domain.DefaultListLimit
	}
	if o.TaskContextLimit <= 0 {
		o.TaskContextLimit = domain.DefaultTaskContextLimit
	}
	if o.BackupSuffix == "" {
		o.BackupSuffix = domain.DefaultBackupSuffix
	}
	if len(o.Tokens.Approve) == 0 {
		o.Tokens.Approve = domain.DefaultApproveWords
	}
	if len(o.Tokens.Reject) == 0 {
		o.Tokens.Reject = domain.DefaultRejectWords
	}
}

// Dependencies are the collaborators a Coordinator drives. History and Status
// are optional.
type Dependencies struct {
	Model    ports.ModelProvider
	Files    ports.FileSystem
	Shell    ports.CommandExecutor
	Security ports.SecurityService
	Sink     sessionlog.Sink
	History  ports.HistoryRepository
	Status   ports.StatusCollector
	Logger   ports.Logger
	Clock    func() time.Time
}

// Reply is what an operation hands back to the operator.
type Reply struct {
	Messages []string
	Files    []ports.Attachment
}

func textReply(msgs ...string) Reply {
	return Reply{Messages: msgs}
}

// Coordinator owns the active session and the proposal slot. Every public
// operation runs under one mutex, so requests are handled to completion one
// at a time.
type Coordinator struct {
	mu sync.Mutex

	deps    Dependencies
	opts    Options
	now     func() time.Time
	session *sessionlog.Log
	conv    ports.Conversation
	slot    *proposal.Slot
}

// NewCoordinator starts the first session.
func NewCoordinator(deps Dependencies, opts Options) (*Coordinator, error) {
	if deps.Model == nil || deps.Files == nil || deps.Shell == nil || deps.Security == nil || deps.Sink == nil {
		return nil, errors.New("workflow: model, files, shell, security and sink are required")
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	opts.hydrate()

	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	c := &Coordinator{
		deps: deps,
		opts: opts,
		now:  now,
		slot: proposal.NewSlot(proposal.WithTTL(opts.ProposalTTL), proposal.WithClock(now)),
	}
	c.session = sessionlog.New(now(), opts.ProjectDir)
	return c, nil
}

// SessionID names the active session.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID()
}

// Turns returns a copy of the active session's turns.
func (c *Coordinator) Turns() []domain.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Turns()
}

// Pending reports the open proposal, if any.
func (c *Coordinator) Pending() (proposal.Proposal, bool) {
	return c.slot.Pending()
}

// send runs one model round trip under the model timeout. The conversation is
// opened lazily so a fresh session starts a fresh context.
func (c *Coordinator) send(ctx context.Context, prompt string) (string, error) {
	if c.conv == nil {
		conv, err := c.deps.Model.NewConversation(ctx, c.opts.SystemPrompt)
		if err != nil {
			return "", domain.CollaboratorError("Model", err)
		}
		c.conv = conv
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.ModelTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	conv := c.conv
	go func() {
		text, err := conv.Send(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return "", domain.Timeout("model call", c.opts.ModelTimeout)
			}
			return "", domain.CollaboratorError("Model", res.err)
		}
		return res.text, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.Timeout("model call", c.opts.ModelTimeout)
		}
		return "", ctx.Err()
	}
}

// converse logs the operator's request, consults the model and removes the
// request again if the model fails.
func (c *Coordinator) converse(ctx context.Context, request, prompt string) (string, error) {
	mark := c.session.Len()
	c.session.Append(domain.ConversationTurn{Role: domain.RoleOperator, Text: request, At: c.now()})

	reply, err := c.send(ctx, prompt)
	if err != nil {
		c.session.Truncate(mark)
		c.deps.Logger.Warn("model call failed", map[string]interface{}{
			"session": c.session.ID(),
			"error":   err.Error(),
		})
		return "", err
	}
	return reply, nil
}

func (c *Coordinator) say(text string) {
	c.session.Append(domain.ConversationTurn{Role: domain.RoleAssistant, Text: text, At: c.now()})
}

// record appends an operator turn that carries an action and indexes the
// action in history.
func (c *Coordinator) record(text string, details domain.ActionDetails, status string) {
	at := c.now()
	action := &domain.ActionRecord{Details: details, Status: status, At: at}
	c.session.Append(domain.ConversationTurn{Role: domain.RoleOperator, Text: text, Action: action, At: at})

	if c.deps.History == nil {
		return
	}
	if err := c.deps.History.Save(domain.NewHistoryRecord(c.session.ID(), *action)); err != nil {
		c.deps.Logger.Warn("history index failed", map[string]interface{}{
			"kind":  string(details.Kind()),
			"error": err.Error(),
		})
	}
}

// persist saves the session. Failures are logged and never abort the caller.
func (c *Coordinator) persist() {
	if err := c.session.Persist(c.deps.Sink); err != nil {
		c.deps.Logger.Warn("session persist failed", map[string]interface{}{
			"session": c.session.ID(),
			"stale":   errors.Is(err, sessionlog.ErrLatestStale),
			"error":   err.Error(),
		})
	}
}

// resolvePath expands ~ and $VARS and anchors relative paths at the project.
func (c *Coordinator) resolvePath(p string) string {
	p = filesystem.ExpandHome(os.ExpandEnv(strings.TrimSpace(p)))
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.session.ProjectDir(), p)
	}
	return filepath.Clean(p)
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}
