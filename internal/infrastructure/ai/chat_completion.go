package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c chatCompletionResponse) FirstMessage() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(c.Choices[0].Message.Content)
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		endpoint:      "https://api.openai.com/v1/chat/completions",
		buildRequest:  chatCompletionBuilder("gpt-4o-mini"),
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		endpoint:      "http://localhost:11434/v1/chat/completions",
		buildRequest:  chatCompletionBuilder("codellama:7b"),
		parseResponse: parseChatCompletionResponse,
		setHeaders:    func(*http.Request, domain.ModelDefinition) error { return nil },
	}
}

func chatCompletionBuilder(defaultModel string) func(domain.ModelDefinition, string, []domain.PromptMessage) ([]byte, error) {
	return func(model domain.ModelDefinition, system string, messages []domain.PromptMessage) ([]byte, error) {
		payload := chatCompletionRequest{
			Model:     valueOrDefault(model.ModelID, defaultModel),
			MaxTokens: model.MaxTokens,
		}
		if system = strings.TrimSpace(system); system != "" {
			payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: system})
		}
		for _, msg := range messages {
			payload.Messages = append(payload.Messages, chatMessage{Role: strings.ToLower(msg.Role), Content: msg.Content})
		}
		return json.Marshal(payload)
	}
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", err
	}
	return decoded.FirstMessage(), nil
}

func setOpenAIHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := resolveAuth(model.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or OPENAI_API_KEY", model.AuthEnvVar)
	}
	req.Header.Set("authorization", "Bearer "+apiKey)

	if org := resolveAuth(model.OrgEnvVar, "OPENAI_ORG_ID"); org != "" {
		req.Header.Set("OpenAI-Organization", org)
	}
	return nil
}
