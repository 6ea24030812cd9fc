// Package sessionlog keeps the ordered record of a chat session and renders
// it to the Markdown document an IDE picks the work up from.
package sessionlog

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

// ErrLatestStale marks a persist where the per-session document was written
// but the latest pointer could not be refreshed.
var ErrLatestStale = errors.New("latest session document is stale")

// Sink stores rendered documents. Both writes replace the target atomically.
type Sink interface {
	WriteSession(id string, doc []byte) error
	WriteLatest(doc []byte) error
}

// Counts summarises a session for /history.
type Counts struct {
	Messages int
	Actions  int
}

// Log is the in-memory turn sequence of one session. It is owned by a single
// coordinator and is not safe for concurrent use on its own.
type Log struct {
	id         string
	startedAt  time.Time
	projectDir string
	turns      []domain.ConversationTurn
}

// New starts an empty session identified by its start time.
func New(startedAt time.Time, projectDir string) *Log {
	return &Log{
		id:         startedAt.Format(domain.SessionIDFormat),
		startedAt:  startedAt,
		projectDir: projectDir,
	}
}

func (l *Log) ID() string             { return l.id }
func (l *Log) StartedAt() time.Time   { return l.startedAt }
func (l *Log) ProjectDir() string     { return l.projectDir }
func (l *Log) SetProjectDir(d string) { l.projectDir = d }

// Append adds a turn to the end of the sequence.
func (l *Log) Append(turn domain.ConversationTurn) {
	l.turns = append(l.turns, turn)
}

// Len returns the number of turns.
func (l *Log) Len() int {
	return len(l.turns)
}

// Turns returns a copy of the turn sequence.
func (l *Log) Turns() []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Truncate drops every turn past n. It only ever shortens the log and exists
// to undo the operator turn of a request whose model call failed.
func (l *Log) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(l.turns) {
		clear(l.turns[n:])
		l.turns = l.turns[:n]
	}
}

// Counts returns operator message and action totals.
func (l *Log) Counts() Counts {
	var c Counts
	for _, t := range l.turns {
		if t.Role == domain.RoleOperator {
			c.Messages++
		}
		if t.Action != nil {
			c.Actions++
		}
	}
	return c
}

// Render projects the session onto its Markdown document. The output depends
// only on the turn sequence, the id and the project directory.
func (l *Log) Render() []byte {
	var b bytes.Buffer
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line("# Telegram Session — " + l.id)
	line("")
	line("> anti-bot action log. To continue in the IDE, reference this file.")
	line(fmt.Sprintf("> Project directory: `%s`", l.projectDir))
	line("")
	line("---")
	line("")

	for _, t := range l.turns {
		switch t.Role {
		case domain.RoleOperator:
			line("## 👤 You")
		default:
			line("## 🤖 anti-bot")
		}
		line("")
		line(t.Text)
		line("")

		if t.Action == nil || t.Action.Details == nil {
			continue
		}
		kind := t.Action.Kind()
		line(fmt.Sprintf("## %s ACTION: %s", kind.Icon(), kind))
		for _, f := range t.Action.Details.Fields() {
			switch f.Style {
			case domain.FieldDiff:
				line(fmt.Sprintf("**%s:**", f.Name))
				line("```diff")
				line(blob(f.Value))
				line("```")
			case domain.FieldBlock:
				line(fmt.Sprintf("**%s:**", f.Name))
				line("```")
				line(blob(f.Value))
				line("```")
			default:
				line(fmt.Sprintf("**%s:** `%s`", f.Name, f.Value))
			}
		}
		if t.Action.Status != "" {
			line(fmt.Sprintf("**Status:** `%s`", t.Action.Status))
		}
		line("")
	}
	return b.Bytes()
}

func blob(s string) string {
	return strings.TrimRight(domain.Truncate(s, domain.RenderBlobCap), "\n")
}

// Persist writes the rendered document to the per-session file and then to
// the latest pointer. An empty log writes nothing. When only the latest write
// fails the returned error wraps ErrLatestStale; the session file stays
// authoritative. In-memory turns are never touched.
func (l *Log) Persist(sink Sink) error {
	if len(l.turns) == 0 {
		return nil
	}
	doc := l.Render()
	if err := sink.WriteSession(l.id, doc); err != nil {
		return fmt.Errorf("write session %s: %w", l.id, err)
	}
	if err := sink.WriteLatest(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrLatestStale, err)
	}
	return nil
}
