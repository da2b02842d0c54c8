// ABOUTME: OpenAI-backed content provider producing JSON drafts with supporting data
// ABOUTME: Uses gpt-4o-mini by default (configurable) with bounded retries and per-call timeout
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/amb/internal/config"
	"github.com/harper/amb/internal/models"
	"github.com/harper/amb/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the default model for chat completions
const DefaultChatModel = "gpt-4o-mini"

// ClientConfig holds configuration for the OpenAI provider
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// ConfigFrom derives provider settings from the pipeline configuration
func ConfigFrom(cfg *config.Config) *ClientConfig {
	model := cfg.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	return &ClientConfig{
		APIKey:     cfg.OpenAIKey,
		ChatModel:  model,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.ProviderRetries,
		RetryDelay: cfg.RetryDelay,
	}
}

// OpenAIProvider drafts responses with a chat completion model
type OpenAIProvider struct {
	client     *openai.Client
	chatModel  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	now        func() time.Time
}

// NewOpenAIProvider creates a provider from the given configuration
func NewOpenAIProvider(cfg *ClientConfig) (*OpenAIProvider, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		chatModel:  model,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

const draftSystemPrompt = `You are a careful assistant answering a user's query.
Answer only from the supplied context. Do not refer to yourself, do not use placeholders, and do not speculate.

Return ONLY a JSON object with:
- content: the answer text (string)
- data: array of supporting data points, each with key (string), value, source (string),
  and optionally percentage (number, 0-100) and count (number, >= 0)`

type draftPayload struct {
	Content string `json:"content"`
	Data    []struct {
		Key        string   `json:"key"`
		Value      any      `json:"value"`
		Source     string   `json:"source"`
		Percentage *float64 `json:"percentage"`
		Count      *float64 `json:"count"`
	} `json:"data"`
}

// Draft implements Provider
func (p *OpenAIProvider) Draft(query string, contextData map[string]any, constraints *Constraints) (*models.Draft, error) {
	userPrompt, err := buildDraftPrompt(query, contextData, constraints)
	if err != nil {
		return nil, err
	}

	var payload draftPayload
	err = util.Retry(p.maxRetries, p.retryDelay, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: draftSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.1,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draft response: %w", err)
	}

	now := p.now()
	content := payload.Content
	if constraints != nil && constraints.MaxLength > 0 {
		content = util.Snippet(content, constraints.MaxLength)
	}

	data := make([]models.DataPoint, 0, len(payload.Data))
	for _, d := range payload.Data {
		data = append(data, models.DataPoint{
			Key:        d.Key,
			Value:      d.Value,
			Source:     d.Source,
			Timestamp:  now,
			Percentage: d.Percentage,
			Count:      d.Count,
		})
	}

	return &models.Draft{
		Content: content,
		Data:    data,
		Metadata: map[string]any{
			"timestamp":        now.Format(time.RFC3339Nano),
			"query":            query,
			"context_provided": len(contextData) > 0,
			"model":            p.chatModel,
		},
	}, nil
}

func buildDraftPrompt(query string, contextData map[string]any, constraints *Constraints) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)

	if len(contextData) > 0 {
		ctxJSON, err := json.Marshal(contextData)
		if err != nil {
			return "", fmt.Errorf("failed to encode context: %w", err)
		}
		fmt.Fprintf(&b, "\nContext (JSON):\n%s\n", ctxJSON)
	}

	if constraints != nil {
		b.WriteString("\nA previous answer was rejected. Follow these constraints:\n")
		if len(constraints.AvoidPatterns) > 0 {
			fmt.Fprintf(&b, "- avoid: %s\n", strings.Join(constraints.AvoidPatterns, ", "))
		}
		if constraints.RequireSources {
			b.WriteString("- every data point must name its source\n")
		}
		if constraints.MaxLength > 0 {
			fmt.Fprintf(&b, "- content must be at most %d characters\n", constraints.MaxLength)
		}
	}
	return b.String(), nil
}
