package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LangChainClient talks to the same OpenAI-style endpoint through langchaingo.
type LangChainClient struct {
	timeout time.Duration
}

func NewLangChainClient(timeout time.Duration) *LangChainClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &LangChainClient{timeout: timeout}
}

func (c *LangChainClient) Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return "", fmt.Errorf("init langchain llm failed: %w", err)
	}

	contents := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		contents = append(contents, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(cfg.Temperature)}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	resp, err := model.GenerateContent(ctx, contents, opts...)
	if errors.Is(err, openai.ErrEmptyResponse) {
		return "", ErrEmptyChoices
	}
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return resp.Choices[0].Content, nil
}

func messageType(role string) schema.ChatMessageType {
	switch role {
	case RoleSystem:
		return schema.ChatMessageTypeSystem
	case RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
