// Package config loads and stores ~/.anti-bot/config.yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// EnvConfigPath overrides the config location.
const EnvConfigPath = "ANTIBOT_CONFIG"

// FileLoader loads YAML configuration from ~/.anti-bot/config.yaml
// (overridable via ANTIBOT_CONFIG or an explicit path).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the default lookup.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is replaced by the
// defaults, written with owner-only permissions since it may hold a token.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := l.Save(cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return hydrateDefaults(cfg), nil
}

// Save writes cfg to the resolved path.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(path, raw, domain.SecureFilePermissions)
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

// DefaultConfig is written on first run.
func DefaultConfig() domain.Config {
	appDir := filesystem.AppDir()
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences: domain.Preferences{
			DefaultModel:    "gemini-flash",
			RequireApproval: true,
		},
		Models: []domain.ModelDefinition{
			{
				Name:           "gemini-flash",
				Provider:       string(domain.ProviderKindGemini),
				AuthEnvVar:     "GEMINI_API_KEY",
				ModelID:        "gemini-2.5-flash",
				TimeoutSeconds: int(domain.DefaultModelTimeout.Seconds()),
			},
			{
				Name:       "claude-sonnet",
				Provider:   string(domain.ProviderKindAnthropic),
				Endpoint:   "https://api.anthropic.com/v1/messages",
				AuthEnvVar: "ANTHROPIC_API_KEY",
				ModelID:    "claude-3-5-sonnet-20240620",
				MaxTokens:  4096,
			},
		},
		Telegram: domain.TelegramSettings{
			TokenEnvVar: "TELEGRAM_BOT_TOKEN",
			PollTimeout: 60,
		},
		Workspace: domain.WorkspaceSettings{
			ProjectDir:       "~",
			MaxFileSize:      domain.DefaultMaxFileSize,
			MaxDownloadSize:  domain.DefaultMaxDownloadSize,
			BackupSuffix:     domain.DefaultBackupSuffix,
			ListLimit:        domain.DefaultListLimit,
			TaskContextLimit: domain.DefaultTaskContextLimit,
			ProtectedPaths:   []string{"~/.ssh/**", "~/.anti-bot/config.yaml", "/**/.git/**"},
			ScreenshotPath:   filepath.Join(os.TempDir(), "anti-bot-screenshot.png"),
			ScreenshotCmd:    defaultScreenshotCommand(),
		},
		Sessions: domain.SessionSettings{
			Dir: filepath.Join(appDir, "sessions"),
		},
		Proposals: domain.ProposalSettings{
			OnConflict: domain.ConflictReject,
			TTL:        domain.DefaultProposalTTL.String(),
		},
		Security: domain.SecuritySettings{
			BlockedCommands: domain.DefaultBlockedCommands,
			RulesFile:       filepath.Join(appDir, "guardrail.yaml"),
		},
		Execution: domain.ExecutionSettings{
			Shell:           "auto",
			TimeoutSeconds:  int(domain.DefaultCommandTimeout.Seconds()),
			MaxOutputLength: domain.DefaultMaxOutputLength,
		},
		History: domain.HistorySettings{
			Enabled: true,
			Path:    filepath.Join(appDir, "history.db"),
		},
		Logging: domain.LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Workspace.ProjectDir == "" {
		cfg.Workspace.ProjectDir = "~"
	}
	if cfg.Sessions.Dir == "" {
		cfg.Sessions.Dir = filepath.Join(filesystem.AppDir(), "sessions")
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(filesystem.AppDir(), "history.db")
	}
	if cfg.Proposals.OnConflict == "" {
		cfg.Proposals.OnConflict = domain.ConflictReject
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	return cfg
}

func defaultScreenshotCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "screencapture -x"
	case "linux":
		return "import -window root"
	default:
		return ""
	}
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
