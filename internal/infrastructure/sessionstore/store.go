// Package sessionstore keeps rendered session documents on disk.
package sessionstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rhonimohanraj/anti-bot/internal/application/sessionlog"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
)

const (
	sessionPrefix = "session_"
	docExt        = ".md"
	// LatestName is the document that always mirrors the most recent persist.
	LatestName = "latest.md"
)

// Entry describes one stored session document.
type Entry struct {
	ID      string
	Path    string
	Size    int64
	ModTime time.Time
}

// FileStore writes session_<id>.md and latest.md under a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir (~ expanded). The directory is
// created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: filesystem.ExpandHome(dir)}
}

// Dir returns the sessions directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// SessionPath returns the document path for a session id.
func (s *FileStore) SessionPath(id string) string {
	return filepath.Join(s.dir, sessionPrefix+id+docExt)
}

// WriteSession implements sessionlog.Sink.
func (s *FileStore) WriteSession(id string, doc []byte) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid session id %q", id)
	}
	return s.write(s.SessionPath(id), doc)
}

// WriteLatest implements sessionlog.Sink.
func (s *FileStore) WriteLatest(doc []byte) error {
	return s.write(filepath.Join(s.dir, LatestName), doc)
}

func (s *FileStore) write(path string, doc []byte) error {
	if err := os.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}
	return filesystem.WriteFileAtomic(path, doc, domain.FilePermissions)
}

// List returns stored sessions, newest first. A missing directory is empty.
func (s *FileStore) List() ([]Entry, error) {
	items, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, item := range items {
		name := item.Name()
		if item.IsDir() || !strings.HasPrefix(name, sessionPrefix) || !strings.HasSuffix(name, docExt) {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			ID:      strings.TrimSuffix(strings.TrimPrefix(name, sessionPrefix), docExt),
			Path:    filepath.Join(s.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	// Ids are timestamps, so lexical order is chronological.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Read returns a stored document. The id "latest" reads latest.md.
func (s *FileStore) Read(id string) ([]byte, error) {
	path := s.SessionPath(id)
	if id == "latest" {
		path = filepath.Join(s.dir, LatestName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound(path)
		}
		return nil, err
	}
	return data, nil
}

var _ sessionlog.Sink = (*FileStore)(nil)
