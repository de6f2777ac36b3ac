package model

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/briefpipe/core"
)

type fakeCompleter struct {
	name   string
	text   string
	err    error
	calls  int
	models []string
}

func (f *fakeCompleter) Name() string { return f.name }

func (f *fakeCompleter) Complete(_ context.Context, modelName string, _ core.Prompt) (string, error) {
	f.calls++
	f.models = append(f.models, modelName)
	return f.text, f.err
}

var testModels = TierModels{Simple: "small-1", Complex: "big-1"}

func TestGateway_PrimarySuccess(t *testing.T) {
	primary := &fakeCompleter{name: "primary", text: "ok"}
	fallback := &fakeCompleter{name: "fallback", text: "nope"}
	g := NewGateway(primary, fallback, testModels, zerolog.Nop())

	text, err := g.Complete(context.Background(), core.Prompt{User: "hi"}, core.TierSimple)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls)
}

func TestGateway_TierSelectsModel(t *testing.T) {
	primary := &fakeCompleter{name: "primary", text: "ok"}
	g := NewGateway(primary, nil, testModels, zerolog.Nop())

	_, err := g.Complete(context.Background(), core.Prompt{User: "hi"}, core.TierComplex)
	require.NoError(t, err)
	_, err = g.Complete(context.Background(), core.Prompt{User: "hi"}, core.TierSimple)
	require.NoError(t, err)

	assert.Equal(t, []string{"big-1", "small-1"}, primary.models)
}

func TestGateway_FallbackOnPrimaryFailure(t *testing.T) {
	primaryErr := &core.ModelError{Kind: core.ModelRateLimited, Provider: "primary"}
	primary := &fakeCompleter{name: "primary", err: primaryErr}
	fallback := &fakeCompleter{name: "fallback", text: "rescued"}
	g := NewGateway(primary, fallback, testModels, zerolog.Nop())

	text, err := g.Complete(context.Background(), core.Prompt{User: "hi"}, core.TierSimple)
	require.NoError(t, err)
	assert.Equal(t, "rescued", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGateway_BothProvidersFail(t *testing.T) {
	primary := &fakeCompleter{name: "primary", err: &core.ModelError{Kind: core.ModelProviderUnavailable, Provider: "primary"}}
	fallback := &fakeCompleter{name: "fallback", err: &core.ModelError{Kind: core.ModelAuthFailed, Provider: "fallback"}}
	g := NewGateway(primary, fallback, testModels, zerolog.Nop())

	_, err := g.Complete(context.Background(), core.Prompt{User: "hi"}, core.TierSimple)
	require.Error(t, err)

	var modelErr *core.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, core.ModelAuthFailed, modelErr.Kind)

	// Exactly one attempt each; no retry loop.
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGateway_NoFallbackConfigured(t *testing.T) {
	wantErr := &core.ModelError{Kind: core.ModelRateLimited, Provider: "primary"}
	primary := &fakeCompleter{name: "primary", err: wantErr}
	g := NewGateway(primary, nil, testModels, zerolog.Nop())

	_, err := g.Complete(context.Background(), core.Prompt{User: "hi"}, core.TierSimple)
	var modelErr *core.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, core.ModelRateLimited, modelErr.Kind)
}

func TestGateway_MissingModelConfig(t *testing.T) {
	primary := &fakeCompleter{name: "primary", text: "ok"}
	g := NewGateway(primary, nil, TierModels{}, zerolog.Nop())

	_, err := g.Complete(context.Background(), core.Prompt{User: "hi"}, core.TierSimple)
	require.Error(t, err)
	assert.Zero(t, primary.calls)
}
