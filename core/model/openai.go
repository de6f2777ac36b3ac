package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/core"
)

const defaultMaxCompletionTokens = 4096

// ProviderConfig configures one OpenAI-compatible provider endpoint.
type ProviderConfig struct {
	Name    string // label used in logs and errors
	APIKey  string
	BaseURL string // empty for the default OpenAI endpoint
}

// OpenAIProvider is a Completer backed by an OpenAI-compatible API.
type OpenAIProvider struct {
	name   string
	client openai.Client
	log    zerolog.Logger
}

// NewOpenAIProvider creates a provider for the given endpoint.
func NewOpenAIProvider(cfg ProviderConfig, log zerolog.Logger) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	name := cfg.Name
	if name == "" {
		name = "openai"
	}

	return &OpenAIProvider{
		name:   name,
		client: openai.NewClient(opts...),
		log:    log.With().Str("provider", name).Logger(),
	}
}

// Name returns the provider label.
func (p *OpenAIProvider) Name() string { return p.name }

// Complete runs a single non-streaming chat completion.
func (p *OpenAIProvider) Complete(ctx context.Context, modelName string, prompt core.Prompt) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	req := openai.ChatCompletionNewParams{
		Model:               modelName,
		Messages:            messages,
		MaxCompletionTokens: openai.Int(defaultMaxCompletionTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", p.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &core.ModelError{
			Kind:     core.ModelProviderUnavailable,
			Provider: p.name,
			Err:      fmt.Errorf("completion returned no choices"),
		}
	}

	p.log.Debug().
		Str("model", modelName).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("completion finished")

	return resp.Choices[0].Message.Content, nil
}

// classify maps a provider error onto the model error taxonomy.
func (p *OpenAIProvider) classify(err error) error {
	kind := core.ModelProviderUnavailable

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			kind = core.ModelRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = core.ModelAuthFailed
		}
	}

	return &core.ModelError{Kind: kind, Provider: p.name, Err: err}
}
