// Package fsys is the filesystem collaborator. Reads are size-capped and
// refuse binary content; writes are atomic and refuse protected paths.
package fsys

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// sniffLength is how much of a file is inspected for NUL bytes.
const sniffLength = 8000

// Local implements ports.FileSystem on the host filesystem.
type Local struct {
	maxFileSize int64
	protected   []string
}

// New returns a filesystem that reads at most maxFileSize bytes and never
// writes to paths matching one of the protected globs (doublestar syntax,
// ~ expanded).
func New(maxFileSize int64, protected []string) (*Local, error) {
	if maxFileSize <= 0 {
		maxFileSize = domain.DefaultMaxFileSize
	}
	l := &Local{maxFileSize: maxFileSize}
	for _, pattern := range protected {
		pattern = filepath.ToSlash(filesystem.ExpandHome(pattern))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid protected path pattern %q", pattern)
		}
		l.protected = append(l.protected, pattern)
	}
	return l, nil
}

// Stat implements ports.FileSystem.
func (l *Local) Stat(path string) (domain.FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileStat{}, classify(path, err)
	}
	return domain.FileStat{
		Path:    path,
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}, nil
}

// ReadText implements ports.FileSystem. The size cap is checked before the
// file is opened.
func (l *Local) ReadText(path string) (string, error) {
	st, err := l.Stat(path)
	if err != nil {
		return "", err
	}
	if st.IsDir {
		return "", domain.IsADirectory(path)
	}
	if st.Size > l.maxFileSize {
		return "", domain.TooLarge(path, st.Size, l.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", classify(path, err)
	}
	if IsBinary(data) {
		return "", domain.BinaryContent(path)
	}
	return string(data), nil
}

// WriteFile implements ports.FileSystem. An existing file keeps its mode.
func (l *Local) WriteFile(path string, data []byte) error {
	if l.Protected(path) {
		return domain.PermissionDenied(path, errors.New("protected path"))
	}
	perm := os.FileMode(domain.FilePermissions)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := filesystem.WriteFileAtomic(path, data, perm); err != nil {
		return classify(path, err)
	}
	return nil
}

// Backup implements ports.FileSystem by copying path's current bytes.
func (l *Local) Backup(path, backupPath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return classify(path, err)
	}
	return l.WriteFile(backupPath, data)
}

// List implements ports.FileSystem. Entries are sorted by name.
func (l *Local) List(path string) ([]domain.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, classify(path, err)
	}
	out := make([]domain.DirEntry, 0, len(entries))
	for _, entry := range entries {
		row := domain.DirEntry{Name: entry.Name(), IsDir: entry.IsDir()}
		if !row.IsDir {
			if info, err := entry.Info(); err == nil {
				row.Size = info.Size()
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MkdirAll implements ports.FileSystem.
func (l *Local) MkdirAll(path string) error {
	if l.Protected(path) {
		return domain.PermissionDenied(path, errors.New("protected path"))
	}
	if err := os.MkdirAll(path, domain.DirectoryPermissions); err != nil {
		return classify(path, err)
	}
	return nil
}

// Protected reports whether path matches a protected glob.
func (l *Local) Protected(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	target := filepath.ToSlash(abs)
	for _, pattern := range l.protected {
		if ok, _ := doublestar.Match(pattern, target); ok {
			return true
		}
	}
	return false
}

// IsBinary reports content that is not valid UTF-8 text or contains NUL.
func IsBinary(data []byte) bool {
	head := data
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	if bytes.IndexByte(head, 0) != -1 {
		return true
	}
	return !utf8.Valid(data)
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.NotFound(path)
	case errors.Is(err, fs.ErrPermission):
		return domain.PermissionDenied(path, err)
	default:
		return fmt.Errorf("%s: %w", path, err)
	}
}

var _ ports.FileSystem = (*Local)(nil)
