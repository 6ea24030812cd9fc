package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rhonimohanraj/anti-bot/internal/application/sessionlog"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

const screenshotTimeout = 10 * time.Second

// Ask sends free text to the model and logs both sides of the exchange.
func (c *Coordinator) Ask(ctx context.Context, prompt string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.askLocked(ctx, prompt)
}

func (c *Coordinator) askLocked(ctx context.Context, prompt string) (Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Reply{}, domain.InvalidInput("Usage: `/ask <your question>`")
	}

	progress(ctx, "🧠 Thinking...")
	reply, err := c.converse(ctx, prompt, prompt)
	if err != nil {
		return Reply{}, err
	}
	c.say(reply)
	c.persist()
	return textReply(reply), nil
}

// NewSession drops the active session and any open proposal. Documents of the
// previous session stay on disk.
func (c *Coordinator) NewSession(ctx context.Context) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.session.ID()
	c.session = sessionlog.New(c.now(), c.session.ProjectDir())
	c.conv = nil
	c.slot.Clear()
	c.deps.Logger.Info("new session started", map[string]interface{}{
		"session":  c.session.ID(),
		"previous": previous,
	})

	msg := "🗑 Session cleared. Starting fresh."
	if c.opts.SessionsDir != "" {
		msg += fmt.Sprintf("\nPrevious sessions are saved in `%s`.", c.opts.SessionsDir)
	}
	return textReply(msg), nil
}

// Summary reports message and action counts of the active session.
func (c *Coordinator) Summary(ctx context.Context) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Len() == 0 {
		return textReply("📭 No conversation yet. Just type something!"), nil
	}
	counts := c.session.Counts()
	msg := fmt.Sprintf("📝 *Session:* `%s`\n💬 %d messages\n📌 %d actions logged\n📁 Project: `%s`",
		c.session.ID(), counts.Messages, counts.Actions, c.session.ProjectDir())
	if c.opts.SessionsDir != "" {
		msg += fmt.Sprintf("\n\nSession saved to:\n`%s`",
			filepath.Join(c.opts.SessionsDir, "session_"+c.session.ID()+".md"))
	}
	if p, open := c.slot.Pending(); open {
		msg += fmt.Sprintf("\n⏳ Pending: %s proposal", kindLabel(p.Kind()))
	}
	return textReply(msg), nil
}

// Project shows the working directory, or changes it when path is given.
func (c *Coordinator) Project(ctx context.Context, path string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(path) == "" {
		return textReply(fmt.Sprintf("📁 Current project: `%s`", c.session.ProjectDir())), nil
	}
	path = c.resolvePath(path)
	if err := c.requireDir(path); err != nil {
		return Reply{}, err
	}

	c.session.SetProjectDir(path)
	c.record("/project "+path, domain.ProjectSet{Path: path}, "")
	c.persist()
	return textReply(fmt.Sprintf("📍 Project set to: `%s`", path)), nil
}

// List renders a directory, capped at the list limit.
func (c *Coordinator) List(ctx context.Context, path string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := c.session.ProjectDir()
	if strings.TrimSpace(path) != "" {
		dir = c.resolvePath(path)
	}
	if err := c.requireDir(dir); err != nil {
		return Reply{}, err
	}
	entries, err := c.deps.Files.List(dir)
	if err != nil {
		return Reply{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📁 `%s`\n", dir)
	shown := entries
	if len(shown) > c.opts.ListLimit {
		shown = shown[:c.opts.ListLimit]
	}
	for _, e := range shown {
		if e.IsDir {
			fmt.Fprintf(&b, "\n  📂 %s/", e.Name)
			continue
		}
		fmt.Fprintf(&b, "\n  📄 %s (%s)", e.Name, humanize.IBytes(uint64(e.Size)))
	}
	if len(entries) == 0 {
		b.WriteString("\n  (empty)")
	}
	if rest := len(entries) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n\n... and %d more", rest)
	}

	c.record("/ls "+dir, domain.DirList{Path: dir, Count: len(entries)}, "")
	c.persist()
	return textReply(b.String()), nil
}

// View shows a text file with line numbers.
func (c *Coordinator) View(ctx context.Context, path string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(path) == "" {
		return Reply{}, domain.InvalidInput("Usage: `/view <path>`")
	}
	path = c.resolvePath(path)
	content, err := c.deps.Files.ReadText(path)
	if err != nil {
		return Reply{}, err
	}

	lines := strings.Split(content, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%4d │ %s", i+1, line)
	}

	c.record("/view "+path, domain.FileView{Path: path, Lines: len(lines)}, "")
	c.persist()
	return textReply(fmt.Sprintf("📄 `%s` (%d lines)\n\n```\n%s\n```", path, len(lines), b.String())), nil
}

// Run executes an operator command after the blocklist check.
func (c *Coordinator) Run(ctx context.Context, command string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	command = strings.TrimSpace(command)
	if command == "" {
		return Reply{}, domain.InvalidInput("Usage: `/run <command>`")
	}
	assessment, err := c.deps.Security.Evaluate(command)
	if err != nil {
		return Reply{}, fmt.Errorf("evaluate command: %w", err)
	}
	if assessment.Blocked() {
		c.deps.Logger.Warn("command blocked", map[string]interface{}{
			"command": command,
			"rules":   assessment.MatchedRules,
		})
		return Reply{}, domain.Blocked(command, assessment.Reasons...)
	}
	var warning string
	if assessment.Action == domain.ActionWarn {
		c.deps.Logger.Warn("command flagged by guardrail", map[string]interface{}{
			"command": command,
			"level":   string(assessment.Level),
			"reasons": assessment.Reasons,
		})
		warning = "⚠️ *Guardrail warning:* " + strings.Join(assessment.Reasons, "; ")
	}

	progress(ctx, fmt.Sprintf("⏳ Running: `%s`", command))
	c.deps.Logger.Info("executing command", map[string]interface{}{"command": command})
	res, err := c.deps.Shell.Run(ctx, command, c.session.ProjectDir(), c.opts.CommandTimeout)
	if err != nil {
		return Reply{}, err
	}

	stdout := strings.TrimSpace(res.Stdout)
	stderr := strings.TrimSpace(res.Stderr)
	var parts []string
	if warning != "" {
		parts = append(parts, warning)
	}
	if res.ExitCode == 0 {
		parts = append(parts, "✅ *Success*")
	} else {
		parts = append(parts, fmt.Sprintf("⚠️ *Exit code: %d*", res.ExitCode))
	}
	if stdout != "" {
		parts = append(parts, "```\n"+c.capOutput(stdout)+"\n```")
	}
	if stderr != "" {
		parts = append(parts, "*stderr:*\n```\n"+c.capOutput(stderr)+"\n```")
	}
	if stdout == "" && stderr == "" {
		parts = append(parts, "_(no output)_")
	}

	summary := stdout
	if summary == "" {
		summary = stderr
	}
	if summary == "" {
		summary = "(no output)"
	}
	c.record("/run "+command, domain.CommandRun{
		Command:  command,
		ExitCode: res.ExitCode,
		Output:   domain.Truncate(summary, domain.SummaryBlobCap),
	}, "")
	c.persist()
	return textReply(strings.Join(parts, "\n\n")), nil
}

func (c *Coordinator) capOutput(s string) string {
	if len([]rune(s)) <= c.opts.MaxOutputLength {
		return s
	}
	return domain.Truncate(s, c.opts.MaxOutputLength) + "\n... (truncated)"
}

// Status reports host health and the session in progress.
func (c *Coordinator) Status(ctx context.Context) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString("✅ *Online*\n\n")
	if c.deps.Status != nil {
		st, err := c.deps.Status.Collect(ctx)
		if err != nil {
			c.deps.Logger.Warn("status probe failed", map[string]interface{}{"error": err.Error()})
			fmt.Fprintf(&b, "⚠️ (error: %v)\n", err)
		}
		fmt.Fprintf(&b, "🖥 `%s` (%s)\n", st.Hostname, st.OS)
		if st.Uptime != "" {
			fmt.Fprintf(&b, "⏱ %s\n", st.Uptime)
		}
		if st.Battery != "" {
			fmt.Fprintf(&b, "🔋 %s\n", st.Battery)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "📁 Project: `%s`\n📝 Session: `%s`", c.session.ProjectDir(), c.session.ID())
	if p, open := c.slot.Pending(); open {
		fmt.Fprintf(&b, "\n⏳ Pending: %s proposal (%s)", kindLabel(p.Kind()), p.ID)
	}
	return textReply(b.String()), nil
}

// Fetch returns a file as an attachment.
func (c *Coordinator) Fetch(ctx context.Context, path string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(path) == "" {
		return Reply{}, domain.InvalidInput("Usage: `/file <path>`")
	}
	path = c.resolvePath(path)
	st, err := c.deps.Files.Stat(path)
	if err != nil {
		return Reply{}, err
	}
	if st.IsDir {
		return Reply{}, domain.IsADirectory(path)
	}
	if st.Size > c.opts.MaxDownloadSize {
		return Reply{}, domain.TooLarge(path, st.Size, c.opts.MaxDownloadSize)
	}
	return Reply{Files: []ports.Attachment{{Path: path, Caption: fmt.Sprintf("📁 `%s`", path)}}}, nil
}

// Screenshot captures the screen with the configured command and returns the
// image, which the transport removes after sending.
func (c *Coordinator) Screenshot(ctx context.Context) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.ScreenshotCommand == "" || c.opts.ScreenshotPath == "" {
		return Reply{}, domain.InvalidInput("Screenshots are not configured (workspace.screenshot_command).")
	}

	progress(ctx, "📸 Taking screenshot...")
	command := c.opts.ScreenshotCommand + " " + shellQuote(c.opts.ScreenshotPath)
	res, err := c.deps.Shell.Run(ctx, command, c.session.ProjectDir(), screenshotTimeout)
	if err != nil {
		return Reply{}, err
	}
	if !res.Succeeded() {
		return Reply{}, domain.CollaboratorError("Screenshot", errors.New(strings.TrimSpace(res.Stderr)))
	}
	if _, err := c.deps.Files.Stat(c.opts.ScreenshotPath); err != nil {
		return Reply{}, domain.CollaboratorError("Screenshot", err)
	}
	return Reply{Files: []ports.Attachment{{
		Path:      c.opts.ScreenshotPath,
		Caption:   "🖥 Screenshot",
		Photo:     true,
		Temporary: true,
	}}}, nil
}

func (c *Coordinator) requireDir(path string) error {
	st, err := c.deps.Files.Stat(path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotADirectory(path)
		}
		return err
	}
	if !st.IsDir {
		return domain.NotADirectory(path)
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
