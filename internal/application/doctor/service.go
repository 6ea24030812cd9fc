// Package doctor runs the environment diagnostics behind `anti-bot doctor`.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rhonimohanraj/anti-bot/internal/application/config"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	SecurityService ports.SecurityService
	StatusCollector ports.StatusCollector
	History         ports.HistoryRepository
}

// Run executes checks and returns a report. Only a config that cannot be
// loaded aborts the run.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := config.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format v%s, %d model(s)", cfg.ConfigFormatVersion, len(cfg.Models))))
	}

	if err := config.ValidateTransport(cfg); err != nil {
		checks = append(checks, fail("Telegram", err.Error()))
	} else {
		checks = append(checks, ok("Telegram", fmt.Sprintf("token set, chat %s", cfg.GetAllowedChatID())))
	}

	checks = append(checks, apiCheck(cfg))

	if s.SecurityService != nil {
		if _, err := s.SecurityService.Evaluate("ls"); err != nil {
			checks = append(checks, fail("Guardrail", err.Error()))
		} else {
			checks = append(checks, ok("Guardrail", fmt.Sprintf("%d blocklist entries", len(cfg.GetBlockedCommands()))))
		}
	} else {
		checks = append(checks, warn("Guardrail", "security service not initialized"))
	}

	checks = append(checks, dirCheck("Project dir", filesystem.ExpandHome(cfg.Workspace.ProjectDir), false))
	checks = append(checks, dirCheck("Sessions dir", filesystem.ExpandHome(cfg.Sessions.Dir), true))

	if s.History != nil {
		if _, err := s.History.Records(1, ""); err != nil {
			checks = append(checks, warn("History", err.Error()))
		} else {
			checks = append(checks, ok("History", s.History.Path()))
		}
	}

	if s.StatusCollector != nil {
		if st, err := s.StatusCollector.Collect(ctx); err == nil {
			checks = append(checks, ok("Host", fmt.Sprintf("%s (%s), tools: %d", st.Hostname, st.OS, len(st.AvailableTools))))
		} else {
			checks = append(checks, warn("Host", err.Error()))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func apiCheck(cfg domain.Config) domain.HealthCheck {
	model, err := cfg.GetDefaultModel()
	if err != nil {
		return fail("API key", err.Error())
	}
	var fallback string
	switch model.Kind() {
	case domain.ProviderKindGemini:
		fallback = "GEMINI_API_KEY"
	case domain.ProviderKindAnthropic:
		fallback = "ANTHROPIC_API_KEY"
	case domain.ProviderKindOpenAI:
		fallback = "OPENAI_API_KEY"
	case domain.ProviderKindOllama:
		return ok("API key", fmt.Sprintf("%s needs none", model.Name))
	}
	if envMissing(model.AuthEnvVar, fallback) {
		name := model.AuthEnvVar
		if name == "" {
			name = fallback
		}
		return fail("API key", fmt.Sprintf("%s missing for model %s", name, model.Name))
	}
	return ok("API key", fmt.Sprintf("detected for %s", model.Name))
}

// dirCheck reports whether dir exists. A missing dir that the bot creates on
// demand is only a warning.
func dirCheck(name, dir string, createdOnDemand bool) domain.HealthCheck {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return ok(name, dir)
	case err == nil:
		return fail(name, dir+" is not a directory")
	case os.IsNotExist(err) && createdOnDemand:
		if _, perr := os.Stat(filepath.Dir(dir)); perr == nil {
			return warn(name, dir+" will be created on first write")
		}
		return warn(name, dir+" does not exist yet")
	default:
		return fail(name, err.Error())
	}
}

func envMissing(primary, fallback string) bool {
	if primary != "" && os.Getenv(primary) != "" {
		return false
	}
	if fallback != "" && os.Getenv(fallback) != "" {
		return false
	}
	return true
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
