package config

import (
	"strings"
	"testing"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "g"},
		Models:      []domain.ModelDefinition{{Name: "g", Provider: "gemini"}},
		Sessions:    domain.SessionSettings{Dir: "/tmp/sessions"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "no models", mutate: func(c *domain.Config) { c.Models = nil }, wantErr: "at least one model"},
		{name: "missing default", mutate: func(c *domain.Config) { c.Preferences.DefaultModel = "x" }, wantErr: "does not exist"},
		{name: "unknown provider", mutate: func(c *domain.Config) { c.Models[0].Provider = "" }, wantErr: "cannot infer provider"},
		{name: "bad ttl", mutate: func(c *domain.Config) { c.Proposals.TTL = "soon" }, wantErr: "proposals.ttl"},
		{name: "bad policy", mutate: func(c *domain.Config) { c.Proposals.OnConflict = "queue" }, wantErr: "on_conflict"},
		{name: "ambiguous word", mutate: func(c *domain.Config) {
			c.Proposals.ApproveWords = []string{"ok"}
			c.Proposals.RejectWords = []string{"OK"}
		}, wantErr: "both an approve and a reject"},
		{name: "bad glob", mutate: func(c *domain.Config) { c.Workspace.ProtectedPaths = []string{"[x"} }, wantErr: "invalid pattern"},
		{name: "bad log format", mutate: func(c *domain.Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "no sessions dir", mutate: func(c *domain.Config) { c.Sessions.Dir = "" }, wantErr: "sessions.dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTransport(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("ANTIBOT_ALLOWED_CHAT_ID", "")
	cfg := validConfig()

	if err := ValidateTransport(cfg); err == nil || !strings.Contains(err.Error(), "token missing") {
		t.Fatalf("expected missing token error, got %v", err)
	}

	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.AllowedChatID = "not-a-number"
	if err := ValidateTransport(cfg); err == nil || !strings.Contains(err.Error(), "numeric") {
		t.Fatalf("expected numeric error, got %v", err)
	}

	cfg.Telegram.AllowedChatID = "-100123"
	if err := ValidateTransport(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
