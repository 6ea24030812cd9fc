package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

type fakeModel struct {
	mu      sync.Mutex
	replies []string
	err     error
	block   bool
	prompts []string
	opened  int
}

func (m *fakeModel) Name() string                  { return "fake" }
func (m *fakeModel) Model() domain.ModelDefinition { return domain.ModelDefinition{Name: "fake"} }

func (m *fakeModel) NewConversation(ctx context.Context, systemInstruction string) (ports.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
	return &fakeConversation{model: m}, nil
}

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

type fakeConversation struct {
	model *fakeModel
}

func (c *fakeConversation) Send(ctx context.Context, prompt string) (string, error) {
	m := c.model
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	block, err := m.block, m.err
	var reply string
	if len(m.replies) > 0 {
		reply, m.replies = m.replies[0], m.replies[1:]
	}
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

type memFS struct {
	files  map[string]string
	dirs   map[string]bool
	writes int
}

func newMemFS() *memFS {
	return &memFS{files: map[string]string{}, dirs: map[string]bool{"/": true}}
}

func (f *memFS) addDir(path string) {
	for p := path; p != "/" && p != "."; p = filepath.Dir(p) {
		f.dirs[p] = true
	}
}

func (f *memFS) addFile(path, content string) {
	f.addDir(filepath.Dir(path))
	f.files[path] = content
}

func (f *memFS) Stat(path string) (domain.FileStat, error) {
	if f.dirs[path] {
		return domain.FileStat{Path: path, IsDir: true}, nil
	}
	if content, ok := f.files[path]; ok {
		return domain.FileStat{Path: path, Size: int64(len(content))}, nil
	}
	return domain.FileStat{}, domain.NotFound(path)
}

func (f *memFS) ReadText(path string) (string, error) {
	if f.dirs[path] {
		return "", domain.IsADirectory(path)
	}
	content, ok := f.files[path]
	if !ok {
		return "", domain.NotFound(path)
	}
	return content, nil
}

func (f *memFS) WriteFile(path string, data []byte) error {
	if !f.dirs[filepath.Dir(path)] {
		return errors.New("no such directory")
	}
	f.writes++
	f.files[path] = string(data)
	return nil
}

func (f *memFS) Backup(path, backupPath string) error {
	content, ok := f.files[path]
	if !ok {
		return domain.NotFound(path)
	}
	f.files[backupPath] = content
	return nil
}

func (f *memFS) List(path string) ([]domain.DirEntry, error) {
	if !f.dirs[path] {
		return nil, domain.NotADirectory(path)
	}
	var out []domain.DirEntry
	for p, content := range f.files {
		if filepath.Dir(p) == path {
			out = append(out, domain.DirEntry{Name: filepath.Base(p), Size: int64(len(content))})
		}
	}
	for d := range f.dirs {
		if d != path && filepath.Dir(d) == path {
			out = append(out, domain.DirEntry{Name: filepath.Base(d), IsDir: true})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *memFS) MkdirAll(path string) error {
	f.addDir(path)
	return nil
}

type fakeShell struct {
	commands []string
	result   domain.ExecutionResult
	err      error
}

func (s *fakeShell) Run(ctx context.Context, command, cwd string, timeout time.Duration) (domain.ExecutionResult, error) {
	s.commands = append(s.commands, command)
	res := s.result
	res.Command = command
	return res, s.err
}

type substringGuard struct {
	blocked []string
	warned  map[string]string
}

func (g *substringGuard) Evaluate(command string) (domain.RiskAssessment, error) {
	lower := strings.ToLower(command)
	for _, b := range g.blocked {
		if strings.Contains(lower, b) {
			return domain.RiskAssessment{
				Level:   domain.RiskCritical,
				Action:  domain.ActionBlock,
				Reasons: []string{"blocklist: " + b},
			}, nil
		}
	}
	for needle, reason := range g.warned {
		if strings.Contains(lower, needle) {
			return domain.RiskAssessment{
				Level:   domain.RiskHigh,
				Action:  domain.ActionWarn,
				Reasons: []string{reason},
			}, nil
		}
	}
	return domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionAllow}, nil
}

type memSink struct {
	sessions map[string][]byte
	latest   []byte
	err      error
}

func (s *memSink) WriteSession(id string, doc []byte) error {
	if s.err != nil {
		return s.err
	}
	if s.sessions == nil {
		s.sessions = map[string][]byte{}
	}
	s.sessions[id] = doc
	return nil
}

func (s *memSink) WriteLatest(doc []byte) error {
	if s.err != nil {
		return s.err
	}
	s.latest = doc
	return nil
}

type memHistory struct {
	records []domain.HistoryRecord
}

func (h *memHistory) Save(r domain.HistoryRecord) error {
	h.records = append(h.records, r)
	return nil
}
func (h *memHistory) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	return h.records, nil
}
func (h *memHistory) Clear() error                 { h.records = nil; return nil }
func (h *memHistory) ExportJSON(dest string) error { return nil }
func (h *memHistory) Path() string                 { return "mem" }

type recordingNotifier struct {
	texts []string
	files []ports.Attachment
}

func (n *recordingNotifier) Notify(ctx context.Context, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

func (n *recordingNotifier) SendFile(ctx context.Context, file ports.Attachment) error {
	n.files = append(n.files, file)
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	coord   *Coordinator
	model   *fakeModel
	fs      *memFS
	shell   *fakeShell
	guard   *substringGuard
	sink    *memSink
	history *memHistory
	clock   *fakeClock
}

func newHarness(opts Options) *harness {
	h := &harness{
		model:   &fakeModel{},
		fs:      newMemFS(),
		shell:   &fakeShell{},
		guard:   &substringGuard{blocked: []string{"rm -rf /", "shutdown"}},
		sink:    &memSink{},
		history: &memHistory{},
		clock:   &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)},
	}
	h.fs.addDir("/proj")
	if opts.ProjectDir == "" {
		opts.ProjectDir = "/proj"
	}
	coord, err := NewCoordinator(Dependencies{
		Model:    h.model,
		Files:    h.fs,
		Shell:    h.shell,
		Security: h.guard,
		Sink:     h.sink,
		History:  h.history,
		Clock:    h.clock.Now,
	}, opts)
	if err != nil {
		panic(err)
	}
	h.coord = coord
	return h
}

func approvalOptions() Options {
	return Options{RequireApproval: true, SessionsDir: "/sessions"}
}
