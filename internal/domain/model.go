// Package domain defines core entities and value objects for anti-bot.
//
// The domain layer is independent of infrastructure concerns: it holds the
// configuration model, the session and action records that make up the
// continuity log, and the error taxonomy shared by every collaborator.
package domain

import "strings"

// ProviderKind identifies the wire protocol spoken by a model endpoint.
type ProviderKind string

const (
	ProviderKindGemini    ProviderKind = "gemini"
	ProviderKindAnthropic ProviderKind = "anthropic"
	ProviderKindOpenAI    ProviderKind = "openai"
	ProviderKindOllama    ProviderKind = "ollama"
	ProviderKindUnknown   ProviderKind = "unknown"
)

// ModelDefinition describes a language model declared in the config file.
type ModelDefinition struct {
	Name           string `yaml:"name"`
	Provider       string `yaml:"provider"`
	Endpoint       string `yaml:"endpoint,omitempty"`
	AuthEnvVar     string `yaml:"auth_env_var"`
	OrgEnvVar      string `yaml:"org_env_var,omitempty"`
	ModelID        string `yaml:"model_id"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// PromptMessage follows the role/content pair required by most chat APIs.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// Kind resolves the provider, falling back to endpoint sniffing when the
// provider field is blank.
func (m ModelDefinition) Kind() ProviderKind {
	switch strings.ToLower(strings.TrimSpace(m.Provider)) {
	case "gemini", "google":
		return ProviderKindGemini
	case "anthropic", "claude":
		return ProviderKindAnthropic
	case "openai":
		return ProviderKindOpenAI
	case "ollama":
		return ProviderKindOllama
	}

	endpoint := strings.ToLower(m.Endpoint)
	switch {
	case endpoint == "" && strings.HasPrefix(strings.ToLower(m.ModelID), "gemini"):
		return ProviderKindGemini
	case strings.Contains(endpoint, "generativelanguage.googleapis.com"):
		return ProviderKindGemini
	case strings.Contains(endpoint, "anthropic.com"):
		return ProviderKindAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return ProviderKindOpenAI
	case strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return ProviderKindOllama
	default:
		return ProviderKindUnknown
	}
}
