// internal/campaign/step.go
package campaign

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/pkg/models"
)

// Surface is one page of the site with its own listing markup
type Surface struct {
	Name       string
	URL        string
	Extractor  Extractor
	EntryChain []browser.Lookup

	// ClosesPopups closes windows opened by an attempt before the next record
	ClosesPopups bool
}

// Step is one independent unit of a run
type Step interface {
	Name() string
	Run(ctx context.Context, primary browser.WindowHandle)
}

// SurfaceStep extracts, classifies and enters the records of one surface
type SurfaceStep struct {
	Surface  Surface
	Executor *Executor
	Permute  Permutation
	Reporter Reporter
}

func (s *SurfaceStep) Name() string { return s.Surface.Name }

// Run processes the surface. Failures are reported and end only this step.
func (s *SurfaceStep) Run(ctx context.Context, primary browser.WindowHandle) {
	start := time.Now()
	defer func() { s.Reporter.StepFinished(s.Surface.Name, time.Since(start)) }()

	if s.Surface.URL == "" || s.Surface.Extractor == nil {
		s.Reporter.SurfaceSkipped(s.Surface.Name, NewStepError(ErrCodeConfig, s.Surface.Name, "no url or extractor", ErrNotConfigured))
		return
	}

	page := s.Executor.Page
	if err := page.Navigate(ctx, s.Surface.URL); err != nil {
		s.Reporter.SurfaceSkipped(s.Surface.Name, NewStepError(ErrCodeNavigation, s.Surface.Name, "failed to open surface", err))
		return
	}
	if err := s.Executor.Delay.Wait(ctx, s.Executor.PagePace); err != nil {
		return
	}

	records := s.Surface.Extractor.Extract(ctx, page)
	log.Debug().Str("surface", s.Surface.Name).Strs("records", recordIDs(records)).Msg("Extraction finished")

	classifier := s.Executor.Classifier
	for _, i := range s.Permute(len(records)) {
		if ctx.Err() != nil {
			return
		}

		r := records[i]
		verdict := classifier.Classify(r.Signal)
		s.Reporter.Record(s.Surface.Name, r, verdict)
		if !verdict.Attemptable() {
			continue
		}

		outcome := s.Executor.Attempt(ctx, r, verdict, s.Surface.EntryChain)
		s.Reporter.Outcome(s.Surface.Name, outcome)

		if s.Surface.ClosesPopups {
			if err := s.Executor.ClosePopups(ctx, primary); err != nil {
				s.Reporter.SurfaceSkipped(s.Surface.Name, NewStepError(ErrCodeWindow, s.Surface.Name, "failed to return to the primary window", err))
				return
			}
		}
	}
}

var _ Step = (*SurfaceStep)(nil)

func recordIDs(records []models.CampaignRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
