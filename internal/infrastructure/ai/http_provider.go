package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

type httpProvider struct {
	name       string
	model      domain.ModelDefinition
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	endpoint      string
	buildRequest  func(domain.ModelDefinition, string, []domain.PromptMessage) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.ModelDefinition) error
}

func newHTTPProvider(name string, model domain.ModelDefinition, client *http.Client, adapter providerAdapter) ports.ModelProvider {
	return &httpProvider{
		name:       name,
		model:      model,
		httpClient: client,
		adapter:    adapter,
	}
}

func (p *httpProvider) Name() string {
	return p.name
}

func (p *httpProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *httpProvider) NewConversation(ctx context.Context, systemInstruction string) (ports.Conversation, error) {
	return &httpConversation{provider: p, system: systemInstruction}, nil
}

// httpConversation replays the whole exchange on every request, since the
// chat endpoints are stateless.
type httpConversation struct {
	provider *httpProvider
	system   string

	mu      sync.Mutex
	history []domain.PromptMessage
}

func (c *httpConversation) Send(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]domain.PromptMessage, 0, len(c.history)+1)
	messages = append(messages, c.history...)
	messages = append(messages, domain.PromptMessage{Role: "user", Content: prompt})

	reply, err := c.provider.roundTrip(ctx, c.system, messages)
	if err != nil {
		return "", err
	}
	c.history = append(messages, domain.PromptMessage{Role: "assistant", Content: reply})
	return reply, nil
}

func (p *httpProvider) roundTrip(ctx context.Context, system string, messages []domain.PromptMessage) (string, error) {
	requestBody, err := p.adapter.buildRequest(p.model, system, messages)
	if err != nil {
		return "", err
	}

	endpoint := valueOrDefault(p.model.Endpoint, p.adapter.endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("content-type", "application/json")
	if err := p.adapter.setHeaders(httpReq, p.model); err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s: %s: %s", p.name, resp.Status, domain.Truncate(string(bytes.TrimSpace(body)), maxErrorBody))
	}

	content, err := p.adapter.parseResponse(body)
	if err != nil {
		return "", fmt.Errorf("%s: parse response: %w", p.name, err)
	}
	if content == "" {
		return "", fmt.Errorf("%s: empty response", p.name)
	}
	return content, nil
}
