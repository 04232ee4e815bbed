// Package aitext generates brochure copy and schema patches through an
// OpenAI-compatible chat-completions endpoint. The base URL is
// configurable so any compatible router works.
package aitext

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"luxe_brochure/internal/adapters/observability"
)

type Client struct {
	model string
	opts  []option.RequestOption
}

func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("aitext: api key is required")
	}
	if model == "" {
		return nil, errors.New("aitext: model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{model: model, opts: opts}, nil
}

// complete issues one chat call and returns the first choice's content.
func (c *Client) complete(ctx context.Context, system, user string, temperature float64, maxTokens int64) (string, error) {
	client := openai.NewClient(c.opts...)
	start := time.Now()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		observability.ObserveExternal("llm", "chat_completions", 0, time.Since(start))
		return "", err
	}
	observability.ObserveExternal("llm", "chat_completions", 200, time.Since(start))
	if len(resp.Choices) == 0 {
		return "", errors.New("aitext: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON decodes the first JSON object found in model output,
// tolerating fences and preambles around it.
func extractJSON(text string, dst any) error {
	if err := json.Unmarshal([]byte(text), dst); err == nil {
		return nil
	}
	m := reJSONObject.FindString(text)
	if m == "" {
		return errors.New("aitext: no JSON object in output")
	}
	return json.Unmarshal([]byte(m), dst)
}
