package history

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

func sample(i int, kind domain.ActionKind, target string) domain.HistoryRecord {
	return domain.HistoryRecord{
		Timestamp: time.Date(2025, 6, 1, 10, i, 0, 0, time.UTC),
		SessionID: "2025-06-01_100000",
		Kind:      kind,
		Target:    target,
		Status:    "applied",
		Summary:   "summary of " + target,
	}
}

func stores(t *testing.T) map[string]ports.HistoryRepository {
	dir := t.TempDir()
	sqlite := NewSQLiteStore(filepath.Join(dir, "history.db"))
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]ports.HistoryRepository{
		"sqlite": sqlite,
		"jsonl":  NewFileStore(filepath.Join(dir, "history.jsonl")),
	}
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(sample(1, domain.ActionFileEdit, "/proj/a.go")))
			require.NoError(t, store.Save(sample(2, domain.ActionCommandRun, "go test ./...")))
			require.NoError(t, store.Save(sample(3, domain.ActionFileCreate, "/proj/b.go")))

			all, err := store.Records(0, "")
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "/proj/b.go", all[0].Target, "newest first")
			assert.Equal(t, domain.ActionFileEdit, all[2].Kind)
			assert.True(t, all[2].Timestamp.Equal(sample(1, "", "").Timestamp))

			limited, err := store.Records(2, "")
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			found, err := store.Records(0, "go test")
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, domain.ActionCommandRun, found[0].Kind)

			dest := filepath.Join(t.TempDir(), "export.jsonl")
			require.NoError(t, store.ExportJSON(dest))
			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, 3, bytes.Count(data, []byte("\n")))

			require.NoError(t, store.Clear())
			none, err := store.Records(0, "")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestFileStoreSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	store := NewFileStore(path)
	require.NoError(t, store.Save(sample(1, domain.ActionDirList, "/proj")))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := store.Records(0, "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMissingFileIsEmpty(t *testing.T) {
	records, err := NewFileStore(filepath.Join(t.TempDir(), "none.jsonl")).Records(10, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}
