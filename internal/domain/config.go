package domain

// Config mirrors ~/.anti-bot/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Telegram            TelegramSettings  `yaml:"telegram"`
	Workspace           WorkspaceSettings `yaml:"workspace"`
	Sessions            SessionSettings   `yaml:"sessions"`
	Proposals           ProposalSettings  `yaml:"proposals"`
	Security            SecuritySettings  `yaml:"security"`
	Execution           ExecutionSettings `yaml:"execution"`
	History             HistorySettings   `yaml:"history"`
	Logging             LoggingSettings   `yaml:"logging"`
}

// Preferences captures operator level toggles.
type Preferences struct {
	DefaultModel    string `yaml:"default_model"`
	RequireApproval bool   `yaml:"require_approval"`
	SystemPrompt    string `yaml:"system_prompt"`
}

// TelegramSettings configures the chat transport.
type TelegramSettings struct {
	Token         string `yaml:"token,omitempty"`
	TokenEnvVar   string `yaml:"token_env_var"`
	AllowedChatID string `yaml:"allowed_chat_id"`
	PollTimeout   int    `yaml:"poll_timeout"`
	Debug         bool   `yaml:"debug"`
}

// WorkspaceSettings bounds what file operations may touch.
type WorkspaceSettings struct {
	ProjectDir       string   `yaml:"project_dir"`
	MaxFileSize      int64    `yaml:"max_file_size"`
	MaxDownloadSize  int64    `yaml:"max_download_size"`
	BackupSuffix     string   `yaml:"backup_suffix"`
	ListLimit        int      `yaml:"list_limit"`
	TaskContextLimit int      `yaml:"task_context_limit"`
	ProtectedPaths   []string `yaml:"protected_paths"`
	ScreenshotPath   string   `yaml:"screenshot_path"`
	ScreenshotCmd    string   `yaml:"screenshot_command"`
}

// SessionSettings controls where session documents land.
type SessionSettings struct {
	Dir string `yaml:"dir"`
}

// ProposalSettings controls the approval workflow.
type ProposalSettings struct {
	OnConflict   string   `yaml:"on_conflict"`
	TTL          string   `yaml:"ttl"`
	ApproveWords []string `yaml:"approve_words"`
	RejectWords  []string `yaml:"reject_words"`
}

// SecuritySettings defines guardrail behavior.
type SecuritySettings struct {
	BlockedCommands []string `yaml:"blocked_commands"`
	RulesFile       string   `yaml:"rules_file"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell           string `yaml:"shell"`
	TimeoutSeconds  int    `yaml:"timeout"`
	MaxOutputLength int    `yaml:"max_output_length"`
}

// HistorySettings configures the action index.
type HistorySettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingSettings configures the process logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}
