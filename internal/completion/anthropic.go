// ABOUTME: Anthropic Messages API backend for the completion capability
// ABOUTME: Maps system-role messages onto the API's system prompt parameter

package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client over the Anthropic Messages API.
type AnthropicClient struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

// NewAnthropicClient creates a client for the given API key and model name.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   anthropic.Model(model),
		timeout: DefaultTimeout,
	}
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System:      system,
		Messages:    turns,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("%w: response has no content blocks", ErrUnavailable)
	}
	content := message.Content[0]
	if content.Type != "text" {
		return "", fmt.Errorf("%w: unexpected content type %q", ErrUnavailable, content.Type)
	}
	return content.Text, nil
}

// ExtractKeywords implements Client.
func (c *AnthropicClient) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	return extractKeywords(ctx, c, text)
}
