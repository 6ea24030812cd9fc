package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// FilePermissions is the default permission for files written on behalf of the operator
	FilePermissions = 0o644
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultCommandTimeout bounds shell commands issued through /run
	DefaultCommandTimeout = 60 * time.Second
	// DefaultModelTimeout bounds a single model round trip
	DefaultModelTimeout = 120 * time.Second
	// DefaultProposalTTL is how long a proposal stays open without a decision
	DefaultProposalTTL = 30 * time.Minute
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 120 * time.Second
	// StatusProbeTimeout bounds each probe run by /status
	StatusProbeTimeout = 5 * time.Second
)

// Limit constants
const (
	// DefaultMaxFileSize caps files read by /view and /edit
	DefaultMaxFileSize = 100 * 1024
	// DefaultMaxDownloadSize caps files sent back through /file
	DefaultMaxDownloadSize = 50 * 1024 * 1024
	// DefaultListLimit caps entries rendered by /ls
	DefaultListLimit = 50
	// DefaultTaskContextLimit caps entries handed to the planner
	DefaultTaskContextLimit = 30
	// DefaultMaxOutputLength caps stdout/stderr echoed back to the operator
	DefaultMaxOutputLength = 3800
	// MaxMessageLength is the transport's hard limit for a single message
	MaxMessageLength = 4096
	// PreviewLength caps diffs and file bodies in proposal previews
	PreviewLength = 3000
	// RenderBlobCap caps blobs embedded in the rendered session document
	RenderBlobCap = 2000
	// SummaryBlobCap caps blobs stored in compact action records
	SummaryBlobCap = 500
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
)

// Defaults for the approval workflow
const (
	DefaultBackupSuffix = ".bak"
	ConflictReject      = "reject"
	ConflictReplace     = "replace"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
	// SessionIDFormat names session documents
	SessionIDFormat = "2006-01-02_150405"
	// ActionTimeFormat is used when rendering action timestamps
	ActionTimeFormat = "2006-01-02 15:04:05"
)

// DefaultApproveWords are accepted as an approval when a proposal is open.
var DefaultApproveWords = []string{"✅", "yes", "y", "approve"}

// DefaultRejectWords are accepted as a rejection when a proposal is open.
var DefaultRejectWords = []string{"❌", "no", "n", "reject", "cancel"}

// DefaultBlockedCommands is the static blocklist applied before any shell dispatch.
var DefaultBlockedCommands = []string{
	"rm -rf /",
	"rm -rf /*",
	"mkfs",
	"dd if=",
	"shutdown",
	"reboot",
	"halt",
	":(){:|:&};:",
}

// DefaultSystemPrompt tells the model how to behave.
const DefaultSystemPrompt = "You are anti-bot, an AI coding assistant accessible via Telegram. " +
	"You help with coding tasks, debugging, architecture, DevOps, scripting, " +
	"and general technical questions. Keep responses concise since they appear " +
	"in a mobile chat. Use markdown formatting. When showing code, use " +
	"fenced code blocks. The user may continue this conversation later in " +
	"an IDE, so be thorough in your reasoning."
