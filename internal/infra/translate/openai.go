package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

// OpenAIConfig configures the chat completions backend.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// OpenAIBackend translates batches through the OpenAI chat completions API.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIBackend creates the backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}
	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// TranslateBatch implements Backend.
func (b *OpenAIBackend) TranslateBatch(ctx context.Context, req Request) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}
	payload, err := json.Marshal(req.Texts)
	if err != nil {
		return nil, &ProviderError{Message: "encode request", Cause: err}
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: b.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &ProviderError{
			Message:   "chat completion failed",
			Cause:     err,
			Retryable: retryableAPIError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Message: "empty completion", Retryable: true}
	}
	return parseTranslations(resp.Choices[0].Message.Content, len(req.Texts))
}

func systemPrompt(req Request) string {
	source := req.SourceName
	if source == "" {
		source = req.SourceLang
	}
	target := req.TargetName
	if target == "" {
		target = req.TargetLang
	}
	return fmt.Sprintf(`You translate FAQ content from %s (%s) to %s (%s).
Translate each string of the JSON array in the user message into natural, idiomatic %s.
Keep placeholders, URLs, e-mail addresses and product names unchanged.
Return a JSON object with a single key "translations" holding an array of strings in the same order as the input.
Example: {"translations": ["first", "second"]}`, source, req.SourceLang, target, req.TargetLang, target)
}

func parseTranslations(content string, expected int) ([]string, error) {
	var envelope struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil || envelope.Translations == nil {
		var direct []string
		if directErr := json.Unmarshal([]byte(content), &direct); directErr != nil {
			return nil, &ProviderError{Message: "invalid response format", Cause: err}
		}
		envelope.Translations = direct
	}
	if len(envelope.Translations) != expected {
		return nil, &ProviderError{
			Message:   fmt.Sprintf("expected %d translations, got %d", expected, len(envelope.Translations)),
			Retryable: true,
		}
	}
	return envelope.Translations, nil
}

func retryableAPIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
