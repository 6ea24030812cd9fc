package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

const anthropicVersion = "2023-06-01"

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		endpoint:      "https://api.anthropic.com/v1/messages",
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func buildAnthropicRequest(model domain.ModelDefinition, system string, messages []domain.PromptMessage) ([]byte, error) {
	payload := anthropicRequest{
		Model:     valueOrDefault(model.ModelID, "claude-3-5-sonnet-20240620"),
		MaxTokens: valueOrDefaultInt(model.MaxTokens, 4096),
		System:    strings.TrimSpace(system),
	}
	for _, msg := range messages {
		payload.Messages = append(payload.Messages, anthropicMessage{
			Role:    strings.ToLower(msg.Role),
			Content: []anthropicContent{{Type: "text", Text: msg.Content}},
		})
	}
	return json.Marshal(payload)
}

func parseAnthropicResponse(body []byte) (string, error) {
	var decoded anthropicResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", err
	}
	var parts []string
	for _, c := range decoded.Content {
		if c.Type == "" || c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

func setAnthropicHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := resolveAuth(model.AuthEnvVar, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or ANTHROPIC_API_KEY", model.AuthEnvVar)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return nil
}
