package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiProvider talks to the Gemini API. The client is built on the first
// conversation so construction never needs the network.
type geminiProvider struct {
	model domain.ModelDefinition

	mu     sync.Mutex
	client *genai.Client
}

func newGeminiProvider(model domain.ModelDefinition) *geminiProvider {
	return &geminiProvider{model: model}
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *geminiProvider) NewConversation(ctx context.Context, systemInstruction string) (ports.Conversation, error) {
	client, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	cfg := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if p.model.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.model.MaxTokens)
	}
	return &geminiConversation{
		client:  client,
		modelID: valueOrDefault(p.model.ModelID, defaultGeminiModel),
		config:  cfg,
	}, nil
}

func (p *geminiProvider) ensureClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	apiKey := resolveAuth(p.model.AuthEnvVar, "GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s or GEMINI_API_KEY", p.model.AuthEnvVar)
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.model.Endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.model.Endpoint}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

type geminiConversation struct {
	client  *genai.Client
	modelID string
	config  *genai.GenerateContentConfig

	mu      sync.Mutex
	history []*genai.Content
}

func (c *geminiConversation) Send(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	contents := make([]*genai.Content, 0, len(c.history)+1)
	contents = append(contents, c.history...)
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	res, err := c.client.Models.GenerateContent(ctx, c.modelID, contents, c.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := res.Text()
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	c.history = append(contents, genai.NewContentFromText(text, genai.RoleModel))
	return text, nil
}
