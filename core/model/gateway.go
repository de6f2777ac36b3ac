// Package model implements the ModelGateway interface.
// Every language-model call in the pipeline passes through the Gateway,
// which selects a model by task tier and tries exactly one fallback
// provider when the primary fails. Uniform error classification lives
// here so extractors never see provider-specific failures.
package model

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// Completer is a single model provider: prompt in, text out.
type Completer interface {
	Name() string
	Complete(ctx context.Context, modelName string, prompt core.Prompt) (string, error)
}

// TierModels maps task tiers to concrete model names.
type TierModels struct {
	Simple  string
	Complex string
}

// modelFor resolves a tier to a model name, defaulting to the simple tier.
func (t TierModels) modelFor(tier core.ModelTier) string {
	if tier == core.TierComplex {
		return t.Complex
	}
	return t.Simple
}

// Gateway routes completions to a primary provider with one fallback.
type Gateway struct {
	primary  Completer
	fallback Completer // may be nil
	models   TierModels
	log      zerolog.Logger
}

// NewGateway creates a Gateway. fallback may be nil, in which case primary
// failures surface immediately.
func NewGateway(primary, fallback Completer, models TierModels, log zerolog.Logger) *Gateway {
	return &Gateway{
		primary:  primary,
		fallback: fallback,
		models:   models,
		log:      log.With().Str("component", "model_gateway").Logger(),
	}
}

// Complete runs the prompt against the tier's model. On primary failure it
// attempts the fallback provider exactly once; there is no retry loop.
func (g *Gateway) Complete(ctx context.Context, prompt core.Prompt, tier core.ModelTier) (string, error) {
	modelName := g.models.modelFor(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %q", tier)
	}

	text, primaryErr := g.primary.Complete(ctx, modelName, prompt)
	if primaryErr == nil {
		return text, nil
	}

	if g.fallback == nil {
		return "", primaryErr
	}

	g.log.Warn().
		Err(primaryErr).
		Str("provider", g.primary.Name()).
		Str("model", modelName).
		Msg("primary provider failed, trying fallback")

	text, fallbackErr := g.fallback.Complete(ctx, modelName, prompt)
	if fallbackErr != nil {
		return "", fmt.Errorf("fallback after %v: %w", primaryErr, fallbackErr)
	}
	return text, nil
}
