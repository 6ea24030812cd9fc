package security

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// Guardrail implements the SecurityService port. A command is blocked when it
// contains any blocklist entry (case-insensitive) or matches a block rule.
type Guardrail struct {
	blocklist []string
	patterns  []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail combines the static blocklist with optional regex rules from
// rulesPath. A missing rules file is not an error.
func NewGuardrail(blocklist []string, rulesPath string) (*Guardrail, error) {
	rules, err := loadRules(rulesPath)
	if err != nil {
		return nil, err
	}

	g := &Guardrail{}
	for _, entry := range blocklist {
		if entry = strings.ToLower(strings.TrimSpace(entry)); entry != "" {
			g.blocklist = append(g.blocklist, entry)
		}
	}
	for _, pattern := range rules.Rules.DangerPatterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", pattern.Pattern, err)
		}
		g.patterns = append(g.patterns, compiledPattern{re: re, rule: pattern})
	}
	return g, nil
}

// Evaluate implements ports.SecurityService.
func (g *Guardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Level:  domain.RiskSafe,
		Action: domain.ActionAllow,
	}

	lower := strings.ToLower(strings.TrimSpace(command))
	for _, entry := range g.blocklist {
		if strings.Contains(lower, entry) {
			assessment.Level = domain.RiskCritical
			assessment.Action = domain.ActionBlock
			assessment.Reasons = append(assessment.Reasons, "blocklist: "+entry)
			assessment.MatchedRules = append(assessment.MatchedRules, entry)
		}
	}

	for _, pattern := range g.patterns {
		if !pattern.re.MatchString(command) {
			continue
		}
		level := parseRiskLevel(pattern.rule.Level)
		action := parseAction(pattern.rule.Action, level)
		if moreSevere(level, assessment.Level) {
			assessment.Level = level
		}
		if action == domain.ActionBlock || (action == domain.ActionWarn && assessment.Action == domain.ActionAllow) {
			assessment.Action = action
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
	}
	return assessment, nil
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	if strings.TrimSpace(path) == "" {
		return rules, nil
	}
	data, err := os.ReadFile(filesystem.ExpandHome(path))
	if errors.Is(err, os.ErrNotExist) {
		return rules, nil
	}
	if err != nil {
		return RulesFile{}, fmt.Errorf("read guardrail rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse guardrail rules: %w", err)
	}
	return rules, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

func parseAction(value string, fallback domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "block":
		return domain.ActionBlock
	case "warn":
		return domain.ActionWarn
	case "allow":
		return domain.ActionAllow
	default:
		if fallback == domain.RiskCritical {
			return domain.ActionBlock
		}
		if fallback == domain.RiskSafe {
			return domain.ActionAllow
		}
		return domain.ActionWarn
	}
}

func moreSevere(next domain.RiskLevel, current domain.RiskLevel) bool {
	order := map[domain.RiskLevel]int{
		domain.RiskSafe:     0,
		domain.RiskLow:      1,
		domain.RiskMedium:   2,
		domain.RiskHigh:     3,
		domain.RiskCritical: 4,
	}
	return order[next] > order[current]
}

var _ ports.SecurityService = (*Guardrail)(nil)
