// internal/oracle/openai.go
//
// Chat-completion backed text oracle. It produces candidate daily words and
// structural hints; callers own validation of whatever comes back.

package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/robalobadob/wordle/apps/mcp-server/assets"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("oracle: empty completion")

// Config configures the OpenAI client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	HTTPClient *http.Client
}

// OpenAI implements word and hint generation over the chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds an oracle. An empty APIKey is rejected.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("oracle: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

// GenerateWord asks for one candidate word that is not in exclude.
func (o *OpenAI) GenerateWord(ctx context.Context, exclude []string) (string, error) {
	system, err := assets.WordPrompt(exclude)
	if err != nil {
		return "", err
	}
	return o.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage("Generate a word"),
	})
}

// GenerateHint asks for a hint about word that differs from the prior ones.
// Prior hints are replayed as assistant turns.
func (o *OpenAI) GenerateHint(ctx context.Context, word string, prior []string) (string, error) {
	system, err := assets.HintPrompt()
	if err != nil {
		return "", err
	}
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(prior)+2)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, h := range prior {
		msgs = append(msgs, openai.AssistantMessage(h))
	}
	msgs = append(msgs, openai.UserMessage("Give me a unique hint for the word: "+word))
	return o.complete(ctx, msgs)
}

func (o *OpenAI) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("oracle: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
