package sessionlog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

type memorySink struct {
	sessions   map[string][]byte
	latest     []byte
	sessionErr error
	latestErr  error
}

func newMemorySink() *memorySink {
	return &memorySink{sessions: map[string][]byte{}}
}

func (m *memorySink) WriteSession(id string, doc []byte) error {
	if m.sessionErr != nil {
		return m.sessionErr
	}
	m.sessions[id] = append([]byte(nil), doc...)
	return nil
}

func (m *memorySink) WriteLatest(doc []byte) error {
	if m.latestErr != nil {
		return m.latestErr
	}
	m.latest = append([]byte(nil), doc...)
	return nil
}

var start = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func sampleLog() *Log {
	log := New(start, "/work/proj")
	log.Append(domain.ConversationTurn{Role: domain.RoleOperator, Text: "what does main.go do?", At: start})
	log.Append(domain.ConversationTurn{Role: domain.RoleAssistant, Text: "It starts the server.", At: start})
	log.Append(domain.ConversationTurn{
		Role: domain.RoleOperator,
		Text: "✅ Approved edit to /work/proj/main.go",
		Action: &domain.ActionRecord{
			Details: domain.FileEdit{
				Path:         "/work/proj/main.go",
				Instructions: "rename b",
				Diff:         "--- a/main.go\n+++ b/main.go\n@@ -1 +1 @@\n-b\n+B\n",
			},
			Status: domain.StatusApplied,
			At:     start,
		},
		At: start,
	})
	return log
}

func TestIDFromStartTime(t *testing.T) {
	assert.Equal(t, "2025-03-14_092653", New(start, "").ID())
}

func TestRenderFormat(t *testing.T) {
	doc := string(sampleLog().Render())

	assert.True(t, strings.HasPrefix(doc, "# Telegram Session — 2025-03-14_092653\n\n"))
	assert.Contains(t, doc, "> Project directory: `/work/proj`\n\n---\n")
	assert.Contains(t, doc, "## 👤 You\n\nwhat does main.go do?\n")
	assert.Contains(t, doc, "## 🤖 anti-bot\n\nIt starts the server.\n")
	assert.Contains(t, doc, "## ✏️ ACTION: FILE_EDIT\n**File:** `/work/proj/main.go`\n**Instructions:** `rename b`\n**Diff:**\n```diff\n--- a/main.go\n")
	assert.Contains(t, doc, "+B\n```\n**Status:** `✅ Applied`\n")

	you := strings.Index(doc, "## 👤 You")
	bot := strings.Index(doc, "## 🤖 anti-bot")
	assert.Less(t, you, bot, "turn order preserved")
}

func TestRenderIsIdempotent(t *testing.T) {
	log := sampleLog()
	assert.Equal(t, log.Render(), log.Render())
}

func TestRenderCapsBlobs(t *testing.T) {
	log := New(start, "/p")
	long := strings.Repeat("x", domain.RenderBlobCap+500)
	log.Append(domain.ConversationTurn{
		Role: domain.RoleOperator,
		Text: "/run yes",
		Action: &domain.ActionRecord{
			Details: domain.CommandRun{Command: "yes", Output: long},
		},
	})
	doc := string(log.Render())

	assert.Contains(t, doc, "**Output:**\n```\n"+strings.Repeat("x", domain.RenderBlobCap)+"\n```\n")
	assert.NotContains(t, doc, strings.Repeat("x", domain.RenderBlobCap+1))
}

func TestTruncateRollsBack(t *testing.T) {
	log := sampleLog()
	before := log.Len()
	log.Append(domain.ConversationTurn{Role: domain.RoleOperator, Text: "doomed"})
	log.Truncate(before)

	assert.Equal(t, before, log.Len())
	assert.NotContains(t, string(log.Render()), "doomed")

	log.Truncate(before + 10)
	assert.Equal(t, before, log.Len(), "truncate never grows the log")
}

func TestTurnsReturnsCopy(t *testing.T) {
	log := sampleLog()
	turns := log.Turns()
	turns[0].Text = "mutated"
	assert.Equal(t, "what does main.go do?", log.Turns()[0].Text)
}

func TestCounts(t *testing.T) {
	c := sampleLog().Counts()
	assert.Equal(t, 2, c.Messages)
	assert.Equal(t, 1, c.Actions)
}

func TestPersistWritesBothDocuments(t *testing.T) {
	log := sampleLog()
	sink := newMemorySink()

	require.NoError(t, log.Persist(sink))
	assert.Equal(t, log.Render(), sink.sessions[log.ID()])
	assert.Equal(t, sink.sessions[log.ID()], sink.latest)
}

func TestPersistEmptyIsNoop(t *testing.T) {
	sink := newMemorySink()
	require.NoError(t, New(start, "/p").Persist(sink))
	assert.Empty(t, sink.sessions)
	assert.Nil(t, sink.latest)
}

func TestPersistLatestFailureIsStale(t *testing.T) {
	log := sampleLog()
	sink := newMemorySink()
	sink.latestErr = errors.New("disk full")

	err := log.Persist(sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLatestStale)
	assert.NotEmpty(t, sink.sessions[log.ID()])
	assert.Equal(t, 3, log.Len())
}

func TestPersistSessionFailureKeepsHistory(t *testing.T) {
	log := sampleLog()
	sink := newMemorySink()
	sink.sessionErr = errors.New("permission denied")

	err := log.Persist(sink)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLatestStale)
	assert.Nil(t, sink.latest)
	assert.Equal(t, 3, log.Len())
}
