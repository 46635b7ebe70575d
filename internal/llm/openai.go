package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Settings configures the OpenAI-compatible client.
type Settings struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// OpenAI implements Client on top of the chat completions API. A fresh API
// client is built for every call from the stored settings.
type OpenAI struct {
	settings Settings
	logger   *zap.Logger
}

func NewOpenAI(settings Settings, logger *zap.Logger) (*OpenAI, error) {
	if settings.APIKey == "" {
		return nil, errors.New("openai api key missing; provide openai.api_key or OPENAI_API_KEY")
	}
	if settings.Model == "" {
		return nil, errors.New("openai model is required")
	}
	return &OpenAI{settings: settings, logger: logger}, nil
}

func (o *OpenAI) newClient() *openai.Client {
	cfg := openai.DefaultConfig(o.settings.APIKey)
	if o.settings.BaseURL != "" {
		cfg.BaseURL = o.settings.BaseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (o *OpenAI) request(prompt Prompt) openai.ChatCompletionRequest {
	var msgs []openai.ChatCompletionMessage
	if prompt.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.User,
	})
	return openai.ChatCompletionRequest{
		Model:       o.settings.Model,
		Messages:    msgs,
		MaxTokens:   o.settings.MaxTokens,
		Temperature: float32(o.settings.Temperature),
	}
}

func (o *OpenAI) send(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := o.newClient().CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAI) Complete(ctx context.Context, prompt Prompt) (string, error) {
	text, err := o.send(ctx, o.request(prompt))
	if err != nil {
		o.logger.Error("Failed to get completion", zap.Error(err), zap.String("model", o.settings.Model))
		return "", err
	}
	return text, nil
}

func (o *OpenAI) Structured(ctx context.Context, prompt Prompt, schema Schema, out any) error {
	req := o.request(prompt)
	def := schema.Definition
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        schema.Name,
			Description: schema.Description,
			Schema:      &def,
		},
	}

	text, err := o.send(ctx, req)
	if err != nil {
		o.logger.Error("Failed to get structured completion",
			zap.Error(err),
			zap.String("model", o.settings.Model),
			zap.String("schema", schema.Name))
		return err
	}
	if err := decodeStructured(text, schema, out); err != nil {
		o.logger.Error("Failed to parse structured completion",
			zap.Error(err),
			zap.String("schema", schema.Name),
			zap.String("response", text))
		return err
	}
	return nil
}
