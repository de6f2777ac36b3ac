package cmd

import (
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/config"
	"github.com/gaurav-prasanna/briefpipe/core"
	"github.com/gaurav-prasanna/briefpipe/core/extract"
	"github.com/gaurav-prasanna/briefpipe/core/fetch"
	"github.com/gaurav-prasanna/briefpipe/core/model"
	"github.com/gaurav-prasanna/briefpipe/core/normalize"
	"github.com/gaurav-prasanna/briefpipe/core/pipeline"
)

// buildRunner assembles the pipeline from configuration. All configuration
// is injected at construction; nothing below this layer reads the
// environment.
func buildRunner(cfg *config.Config, log zerolog.Logger) *pipeline.Runner {
	var fetcher core.Fetcher
	if cfg.ScrapeBaseURL != "" {
		fetcher = fetch.NewScrape(fetch.ScrapeConfig{BaseURL: cfg.ScrapeBaseURL, APIKey: cfg.ScrapeAPIKey})
	} else {
		fetcher = fetch.New()
	}

	primary := model.NewOpenAIProvider(model.ProviderConfig{
		Name:    "primary",
		APIKey:  cfg.ModelAPIKey,
		BaseURL: cfg.ModelBaseURL,
	}, log)

	var fallback model.Completer
	if cfg.FallbackAPIKey != "" {
		fallback = model.NewOpenAIProvider(model.ProviderConfig{
			Name:    "fallback",
			APIKey:  cfg.FallbackAPIKey,
			BaseURL: cfg.FallbackBaseURL,
		}, log)
	}

	gateway := model.NewGateway(primary, fallback, model.TierModels{
		Simple:  cfg.SimpleModel,
		Complex: cfg.ComplexModel,
	}, log)

	return pipeline.NewRunner(pipeline.Deps{
		Fetcher:     fetcher,
		Normalizer:  normalize.New(cfg.TokenBudget),
		Links:       extract.NewLinkExtractor(gateway, log),
		Content:     extract.NewContentExtractor(gateway, log),
		Concurrency: cfg.MaxConcurrency,
		RenderPages: cfg.RenderPages,
		Log:         log,
	})
}
