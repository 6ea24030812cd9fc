// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the approval workflow and the
// external collaborators it drives: the language model, the chat transport, the
// shell, the filesystem and the durable stores. Following the Ports and Adapters
// pattern, the application core depends only on these abstractions.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., ModelProvider, FileSystem)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.anti-bot/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ModelProvider opens stateful conversations with a language model.
type ModelProvider interface {
	Name() string
	Model() domain.ModelDefinition
	NewConversation(ctx context.Context, systemInstruction string) (Conversation, error)
}

// ProviderFactory builds model providers from their config definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (ModelProvider, error)
}

// Conversation keeps prior turns as context across Send calls. A failed Send
// leaves the conversation as it was before the call.
type Conversation interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// SecurityService evaluates commands against the blocklist before dispatch.
type SecurityService interface {
	Evaluate(command string) (domain.RiskAssessment, error)
}

// CommandExecutor runs shell commands in the configured shell environment.
type CommandExecutor interface {
	Run(ctx context.Context, command, cwd string, timeout time.Duration) (domain.ExecutionResult, error)
}

// FileSystem is the filesystem collaborator. Reads enforce the configured size
// cap before touching file contents; writes replace atomically.
type FileSystem interface {
	Stat(path string) (domain.FileStat, error)
	ReadText(path string) (string, error)
	WriteFile(path string, data []byte) error
	Backup(path, backupPath string) error
	List(path string) ([]domain.DirEntry, error)
	MkdirAll(path string) error
}

// Attachment is a file sent back through the transport.
type Attachment struct {
	Path    string
	Caption string
	Photo   bool
	// Temporary files are removed once delivered.
	Temporary bool
}

// Notifier delivers text and files to the operator.
type Notifier interface {
	Notify(ctx context.Context, text string) error
	SendFile(ctx context.Context, file Attachment) error
}

// StatusCollector reports host health for /status.
type StatusCollector interface {
	Collect(ctx context.Context) (domain.HostStatus, error)
}

// HistoryRepository indexes logged actions across sessions.
type HistoryRepository interface {
	Save(record domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
