// Package schedule runs campaigns on their cron schedules. Each tick runs
// every briefing in the campaign through the pipeline, persists the run,
// and hands the rendered digest to a Deliverer. Actual delivery (email,
// webhook) is external; the default Deliverer writes digests to disk.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/briefpipe/core"
	"github.com/gaurav-prasanna/briefpipe/digest"
	"github.com/gaurav-prasanna/briefpipe/store"
)

// runTimeout bounds one briefing run; a timed-out run is recorded as
// failed and the next tick starts fresh.
const runTimeout = 10 * time.Minute

// Runner is the slice of the pipeline the scheduler needs.
type Runner interface {
	Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error)
}

// Deliverer receives a rendered digest for a campaign's recipients.
type Deliverer interface {
	Deliver(ctx context.Context, campaign *store.Campaign, title string, data []byte, ext string) error
}

// FileDeliverer writes digests to disk instead of sending them.
type FileDeliverer struct {
	Writer *digest.Writer
}

// Deliver writes the digest under the configured output directory.
func (d *FileDeliverer) Deliver(_ context.Context, _ *store.Campaign, title string, data []byte, ext string) error {
	_, err := d.Writer.Write(title, data, ext)
	return err
}

// Scheduler drives campaign schedules.
type Scheduler struct {
	runner    Runner
	store     *store.Store
	renderer  digest.Renderer
	deliverer Deliverer
	cron      *cron.Cron
	log       zerolog.Logger
}

// New creates a Scheduler. The renderer decides the digest format all
// campaigns are delivered in.
func New(runner Runner, st *store.Store, renderer digest.Renderer, deliverer Deliverer, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:    runner,
		store:     st,
		renderer:  renderer,
		deliverer: deliverer,
		cron:      cron.New(),
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers every stored campaign and begins the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	campaigns, err := s.store.ListCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("loading campaigns: %w", err)
	}

	for _, c := range campaigns {
		campaign := c
		_, err := s.cron.AddFunc(campaign.Schedule, func() {
			s.runCampaign(&campaign)
		})
		if err != nil {
			return fmt.Errorf("scheduling campaign %s (%q): %w", campaign.ID, campaign.Schedule, err)
		}
		s.log.Info().
			Str("campaign_id", campaign.ID).
			Str("schedule", campaign.Schedule).
			Int("briefings", len(campaign.BriefingIDs)).
			Msg("campaign scheduled")
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for in-flight jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// runCampaign executes every briefing in the campaign and delivers the
// digests. One briefing failing does not stop the others.
func (s *Scheduler) runCampaign(campaign *store.Campaign) {
	ctx := context.Background()
	log := s.log.With().Str("campaign_id", campaign.ID).Logger()
	log.Info().Msg("campaign tick")

	for _, briefingID := range campaign.BriefingIDs {
		if err := s.runBriefing(ctx, campaign, briefingID); err != nil {
			log.Error().Err(err).Str("briefing_id", briefingID).Msg("briefing run failed")
		}
	}
}

// runBriefing executes one briefing, persists the run, and delivers the
// digest on success.
func (s *Scheduler) runBriefing(ctx context.Context, campaign *store.Campaign, briefingID string) error {
	b, err := s.store.GetBriefing(ctx, briefingID)
	if err != nil {
		return fmt.Errorf("loading briefing: %w", err)
	}
	if b.Status != "active" {
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	run := store.Run{BriefingID: b.ID, StartedAt: time.Now().UTC()}
	result, runErr := s.runner.Run(runCtx, b.RunRequest())
	run.FinishedAt = time.Now().UTC()

	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
	} else {
		run.Status = "succeeded"
		run.Result = result
	}

	if err := s.store.SaveRun(ctx, &run); err != nil {
		s.log.Error().Err(err).Str("briefing_id", b.ID).Msg("persisting run")
	}
	if runErr != nil {
		return runErr
	}

	data, err := s.renderer.Render(b.Name, result)
	if err != nil {
		return fmt.Errorf("rendering digest: %w", err)
	}
	if err := s.deliverer.Deliver(ctx, campaign, b.Name, data, s.renderer.Extension()); err != nil {
		return fmt.Errorf("delivering digest: %w", err)
	}

	s.log.Info().
		Str("briefing_id", b.ID).
		Int("items", len(result.Items)).
		Msg("digest delivered")
	return nil
}
