// Package config validates a loaded configuration before the bot starts.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	for _, model := range cfg.Models {
		if err := validateModel(model); err != nil {
			return err
		}
	}
	if err := validateProposals(cfg.Proposals); err != nil {
		return err
	}
	if err := validateWorkspace(cfg.Workspace); err != nil {
		return err
	}
	if err := validateLogging(cfg.Logging); err != nil {
		return err
	}
	if cfg.Sessions.Dir == "" {
		return errors.New("sessions.dir must be set")
	}
	return nil
}

// ValidateTransport checks the settings only the chat transport needs, so
// offline commands keep working without a token.
func ValidateTransport(cfg domain.Config) error {
	if cfg.GetTelegramToken() == "" {
		envVar := cfg.Telegram.TokenEnvVar
		if envVar == "" {
			envVar = "TELEGRAM_BOT_TOKEN"
		}
		return fmt.Errorf("telegram token missing: set %s or telegram.token", envVar)
	}
	id := cfg.GetAllowedChatID()
	if id == "" {
		return errors.New("telegram.allowed_chat_id must be set (or ANTIBOT_ALLOWED_CHAT_ID)")
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return fmt.Errorf("telegram.allowed_chat_id must be numeric, got %q", id)
	}
	return nil
}

func validateModel(model domain.ModelDefinition) error {
	if model.Name == "" {
		return errors.New("every model needs a name")
	}
	if model.Kind() == domain.ProviderKindUnknown {
		return fmt.Errorf("model %s: cannot infer provider, set provider to gemini|anthropic|openai|ollama", model.Name)
	}
	if model.TimeoutSeconds < 0 {
		return fmt.Errorf("model %s: timeout must be >= 0", model.Name)
	}
	return nil
}

func validateProposals(p domain.ProposalSettings) error {
	if p.TTL != "" {
		ttl, err := time.ParseDuration(p.TTL)
		if err != nil {
			return fmt.Errorf("proposals.ttl invalid: %w", err)
		}
		if ttl < 0 {
			return fmt.Errorf("proposals.ttl must be >= 0")
		}
	}
	seen := map[string]string{}
	for _, w := range p.ApproveWords {
		seen[strings.ToLower(strings.TrimSpace(w))] = "approve"
	}
	for _, w := range p.RejectWords {
		if seen[strings.ToLower(strings.TrimSpace(w))] == "approve" {
			return fmt.Errorf("proposals: %q is both an approve and a reject word", w)
		}
	}
	return nil
}

func validateWorkspace(ws domain.WorkspaceSettings) error {
	if ws.MaxFileSize < 0 || ws.MaxDownloadSize < 0 {
		return errors.New("workspace size limits must be >= 0")
	}
	for _, pattern := range ws.ProtectedPaths {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("workspace.protected_paths: invalid pattern %q", pattern)
		}
	}
	return nil
}

func validateLogging(l domain.LoggingSettings) error {
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text|json, got %s", l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %s", l.Level)
	}
	return nil
}
