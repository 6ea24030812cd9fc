package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rhonimohanraj/anti-bot/internal/application/proposal"
	"github.com/rhonimohanraj/anti-bot/internal/diff"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

const (
	approveHint = "Reply ✅ to apply or ❌ to cancel."
	createHint  = "Reply ✅ to create or ❌ to cancel."
	taskHint    = "Reply ✅ to execute or ❌ to cancel."
)

// Edit drafts a full replacement of path following instructions and opens a
// FILE_EDIT proposal for it.
func (c *Coordinator) Edit(ctx context.Context, path, instructions string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(path) == "" || strings.TrimSpace(instructions) == "" {
		return Reply{}, domain.InvalidInput("Usage: `/edit <path> <edit instructions>`")
	}
	path = c.resolvePath(path)
	notes, err := c.checkConflict()
	if err != nil {
		return Reply{}, err
	}

	original, err := c.deps.Files.ReadText(path)
	if err != nil {
		return Reply{}, err
	}

	progress(ctx, fmt.Sprintf("🧠 Reading `%s` and applying edits...", filepath.Base(path)))
	request := fmt.Sprintf("/edit %s %s", path, instructions)
	reply, err := c.converse(ctx, request, editPrompt(path, instructions, original))
	if err != nil {
		return Reply{}, err
	}

	proposed := draftContent(reply, original == "" || strings.HasSuffix(original, "\n"))
	unified := diff.Unified(original, proposed, filepath.Base(path))
	if unified == "" {
		msg := "ℹ️ No changes needed — file already matches."
		c.say(msg)
		c.persist()
		return textReply(append(notes, msg)...), nil
	}

	payload := proposal.FileEditPayload{
		Path:         path,
		Original:     original,
		Proposed:     proposed,
		Diff:         unified,
		Instructions: instructions,
	}
	added, removed := diff.Stat(unified)
	preview := fmt.Sprintf("✏️ *Proposed edit to* `%s` (+%d −%d):\n\n```diff\n%s\n```",
		filepath.Base(path), added, removed, strings.TrimRight(domain.Truncate(unified, domain.PreviewLength), "\n"))
	if len([]rune(unified)) > domain.PreviewLength {
		preview += "\n... (diff truncated)"
	}
	return c.open(ctx, payload, preview, approveHint, notes)
}

// Create drafts a new file. An existing path fails before the model is asked.
func (c *Coordinator) Create(ctx context.Context, path, description string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(path) == "" || strings.TrimSpace(description) == "" {
		return Reply{}, domain.InvalidInput("Usage: `/create <path> <description of file>`")
	}
	path = c.resolvePath(path)
	if err := c.ensureAbsent(path); err != nil {
		return Reply{}, err
	}
	notes, err := c.checkConflict()
	if err != nil {
		return Reply{}, err
	}

	progress(ctx, fmt.Sprintf("🧠 Generating `%s`...", filepath.Base(path)))
	request := fmt.Sprintf("/create %s %s", path, description)
	reply, err := c.converse(ctx, request, createPrompt(path, description))
	if err != nil {
		return Reply{}, err
	}

	content := draftContent(reply, true)
	payload := proposal.FileCreatePayload{Path: path, Content: content, Description: description}
	preview := fmt.Sprintf("🆕 *New file:* `%s`\n\n```\n%s\n```",
		filepath.Base(path), strings.TrimRight(domain.Truncate(content, domain.PreviewLength), "\n"))
	if len([]rune(content)) > domain.PreviewLength {
		preview += "\n... (content truncated)"
	}
	return c.open(ctx, payload, preview, createHint, notes)
}

// Task asks the model for a step plan over the project and opens a
// TASK_EXECUTE proposal. Tasks always wait for approval.
func (c *Coordinator) Task(ctx context.Context, description string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(description) == "" {
		return Reply{}, domain.InvalidInput("Usage: `/task <describe what you want to build/fix>`")
	}
	notes, err := c.checkConflict()
	if err != nil {
		return Reply{}, err
	}

	progress(ctx, "🚀 Planning task...")
	projectDir := c.session.ProjectDir()
	request := "/task " + description
	plan, err := c.converse(ctx, request, planPrompt(description, projectDir, c.projectFiles(projectDir)))
	if err != nil {
		return Reply{}, err
	}

	payload := proposal.TaskPayload{Description: description, Plan: plan}
	return c.open(ctx, payload, "🚀 *Task Plan:*\n\n"+plan, taskHint, notes)
}

// Approve executes the open proposal exactly once.
func (c *Coordinator) Approve(ctx context.Context) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.approveLocked(ctx)
}

// Reject discards the open proposal and logs a cancellation notice.
func (c *Coordinator) Reject(ctx context.Context) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejectLocked()
}

// Decide reads a free-text reply. While a proposal is open a recognised
// approve or reject word settles it; anything else goes to the conversation.
func (c *Coordinator) Decide(ctx context.Context, text string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, open := c.slot.Pending(); open {
		switch proposal.Classify(text, c.opts.Tokens) {
		case proposal.Approve:
			return c.approveLocked(ctx)
		case proposal.Reject:
			return c.rejectLocked()
		}
	}
	return c.askLocked(ctx, text)
}

// checkConflict clears an expired proposal, returning a notice about it, and
// under the reject policy fails while another proposal is still open.
func (c *Coordinator) checkConflict() ([]string, error) {
	var notes []string
	if p, expired := c.slot.Expire(); expired {
		age := c.now().Sub(p.CreatedAt).Round(time.Second)
		c.deps.Logger.Info("proposal expired", map[string]interface{}{
			"id":   p.ID.String(),
			"kind": string(p.Kind()),
			"age":  age.String(),
		})
		notes = append(notes, fmt.Sprintf("⌛ The pending %s proposal expired after %s and was discarded.", kindLabel(p.Kind()), age))
	}
	if c.opts.ReplaceOnConflict {
		return notes, nil
	}
	if p, open := c.slot.Pending(); open {
		return nil, domain.ProposalPending(p.Kind())
	}
	return notes, nil
}

func (c *Coordinator) ensureAbsent(path string) error {
	_, err := c.deps.Files.Stat(path)
	switch {
	case err == nil:
		return domain.AlreadyExists(path)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// open parks a drafted payload in the slot and logs the preview. With
// approval switched off, edits and creations are executed right away.
func (c *Coordinator) open(ctx context.Context, payload proposal.Payload, preview, hint string, notes []string) (Reply, error) {
	p := proposal.New(payload, c.now())

	if c.opts.ReplaceOnConflict {
		if displaced := c.slot.Replace(p); displaced != nil {
			notes = append(notes, fmt.Sprintf("♻️ Discarded the pending %s proposal.", kindLabel(displaced.Kind())))
		}
	} else if err := c.slot.Propose(p); err != nil {
		return Reply{}, err
	}

	if !c.opts.RequireApproval && payload.Kind() != domain.ActionTaskExecute {
		c.persist()
		reply, err := c.approveLocked(ctx)
		reply.Messages = append(notes, reply.Messages...)
		return reply, err
	}

	c.say(preview)
	c.persist()
	c.deps.Logger.Info("proposal opened", map[string]interface{}{
		"id":   p.ID.String(),
		"kind": string(p.Kind()),
	})
	return textReply(append(notes, preview+"\n\n"+hint)...), nil
}

func (c *Coordinator) approveLocked(ctx context.Context) (Reply, error) {
	p, err := c.slot.Approve()
	if err != nil {
		return Reply{}, err
	}
	c.deps.Logger.Info("proposal approved", map[string]interface{}{
		"id":   p.ID.String(),
		"kind": string(p.Kind()),
	})

	switch payload := p.Payload.(type) {
	case proposal.FileEditPayload:
		return c.applyEdit(payload)
	case proposal.FileCreatePayload:
		return c.applyCreate(payload)
	case proposal.TaskPayload:
		return c.executeTask(ctx, payload)
	default:
		return Reply{}, fmt.Errorf("unsupported proposal kind %q", p.Kind())
	}
}

func (c *Coordinator) rejectLocked() (Reply, error) {
	p, err := c.slot.Reject()
	if err != nil {
		return Reply{}, err
	}
	msg := fmt.Sprintf("🚫 %s cancelled.", kindLabel(p.Kind()))
	c.say(msg)
	c.persist()
	c.deps.Logger.Info("proposal rejected", map[string]interface{}{
		"id":   p.ID.String(),
		"kind": string(p.Kind()),
	})
	return textReply(msg), nil
}

func (c *Coordinator) applyEdit(p proposal.FileEditPayload) (Reply, error) {
	current, err := c.deps.Files.ReadText(p.Path)
	if err != nil {
		return Reply{}, err
	}
	if current != p.Original {
		c.deps.Logger.Warn("edit target changed since proposal", map[string]interface{}{"path": p.Path})
		return Reply{}, domain.FileChanged(p.Path)
	}

	backup := p.Path + c.opts.BackupSuffix
	if err := c.deps.Files.Backup(p.Path, backup); err != nil {
		return Reply{}, fmt.Errorf("backup %s: %w", p.Path, err)
	}
	if err := c.deps.Files.WriteFile(p.Path, []byte(p.Proposed)); err != nil {
		return Reply{}, fmt.Errorf("write %s: %w", p.Path, err)
	}

	c.record("✅ Approved edit to "+p.Path, domain.FileEdit{
		Path:         p.Path,
		Instructions: p.Instructions,
		Diff:         p.Diff,
	}, domain.StatusApplied)
	c.persist()

	return textReply(fmt.Sprintf("✅ *Edit applied* to `%s`\nBackup saved as `%s`",
		filepath.Base(p.Path), filepath.Base(backup))), nil
}

func (c *Coordinator) applyCreate(p proposal.FileCreatePayload) (Reply, error) {
	if err := c.ensureAbsent(p.Path); err != nil {
		return Reply{}, err
	}
	if err := c.deps.Files.MkdirAll(filepath.Dir(p.Path)); err != nil {
		return Reply{}, fmt.Errorf("create parent of %s: %w", p.Path, err)
	}
	if err := c.deps.Files.WriteFile(p.Path, []byte(p.Content)); err != nil {
		return Reply{}, fmt.Errorf("write %s: %w", p.Path, err)
	}

	c.record("✅ Approved create "+p.Path, domain.FileCreate{
		Path:           p.Path,
		Description:    p.Description,
		ContentPreview: domain.Truncate(p.Content, domain.SummaryBlobCap),
	}, domain.StatusCreated)
	c.persist()

	return textReply(fmt.Sprintf("✅ *Created* `%s`", filepath.Base(p.Path))), nil
}

// executeTask asks the model to materialize the plan. The returned blocks are
// shown to the operator but never applied automatically.
func (c *Coordinator) executeTask(ctx context.Context, p proposal.TaskPayload) (Reply, error) {
	progress(ctx, "🚀 *Executing task step by step...*")
	result, err := c.send(ctx, executePrompt(p.Plan, c.session.ProjectDir()))
	if err != nil {
		return Reply{}, err
	}

	c.record("✅ Approved task: "+p.Description, domain.TaskExecute{
		Description: p.Description,
		Plan:        p.Plan,
		Result:      result,
	}, domain.StatusExecuted)
	c.persist()

	return textReply(result,
		"📝 *Task complete.* Results logged for IDE continuity.\n"+
			"Use `/view`, `/edit`, or `/run` to follow up on individual steps."), nil
}

// projectFiles lists the project root for the planner, best effort.
func (c *Coordinator) projectFiles(dir string) string {
	entries, err := c.deps.Files.List(dir)
	if err != nil {
		return "(could not list directory)"
	}
	if len(entries) > c.opts.TaskContextLimit {
		entries = entries[:c.opts.TaskContextLimit]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, "  - "+e.Name)
	}
	return strings.Join(lines, "\n")
}

func kindLabel(k domain.ActionKind) string {
	switch k {
	case domain.ActionFileEdit:
		return "Edit"
	case domain.ActionFileCreate:
		return "Create"
	case domain.ActionTaskExecute:
		return "Task"
	default:
		return string(k)
	}
}
