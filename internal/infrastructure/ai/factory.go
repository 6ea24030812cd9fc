// Package ai adapts language model APIs to ports.ModelProvider. Gemini goes
// through the genai SDK; Anthropic, OpenAI and Ollama share one HTTP client
// with a per-provider request adapter.
package ai

import (
	"fmt"
	"net/http"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// Factory creates model providers from config definitions.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a factory with a shared HTTP client.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// ForModel implements ports.ProviderFactory.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.ModelProvider, error) {
	switch kind := model.Kind(); kind {
	case domain.ProviderKindGemini:
		return newGeminiProvider(model), nil
	case domain.ProviderKindAnthropic:
		return newHTTPProvider("anthropic", model, f.httpClient, anthropicAdapter()), nil
	case domain.ProviderKindOpenAI:
		return newHTTPProvider("openai", model, f.httpClient, openaiAdapter()), nil
	case domain.ProviderKindOllama:
		return newHTTPProvider("ollama", model, f.httpClient, ollamaAdapter()), nil
	default:
		return nil, fmt.Errorf("model %q: unsupported provider kind %s", model.Name, kind)
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
