// internal/campaign/executor.go
package campaign

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/pkg/models"
)

// Executor performs one entry attempt per record on the shared page
type Executor struct {
	Page       browser.Page
	Classifier *Classifier
	Delay      *Delay

	// PagePace follows a navigation, ClickPace follows every attempt
	PagePace  Pace
	ClickPace Pace
}

// Attempt tries to enter r using chain. It never fails: every branch ends in an outcome.
func (e *Executor) Attempt(ctx context.Context, r models.CampaignRecord, v models.Verdict, chain []browser.Lookup) models.Outcome {
	out := e.attempt(ctx, r, chain)
	if v == models.VerdictUnknown {
		out.Unclassified = true
		out.Detail = joinDetail("unclassified signal", out.Detail)
	}

	if err := e.Delay.Wait(ctx, e.ClickPace); err != nil {
		log.Debug().Err(err).Str("record", r.ID).Msg("Post-attempt wait interrupted")
	}
	return out
}

func (e *Executor) attempt(ctx context.Context, r models.CampaignRecord, chain []browser.Lookup) models.Outcome {
	out := models.Outcome{RecordID: r.ID}

	if r.TargetURL != "" {
		current, _ := e.Page.Location(ctx)
		if current != r.TargetURL {
			if err := e.Page.Navigate(ctx, r.TargetURL); err != nil {
				out.Kind = models.OutcomeControlNotFound
				out.Detail = "navigation failed: " + err.Error()
				return out
			}
			if err := e.Delay.Wait(ctx, e.PagePace); err != nil {
				log.Debug().Err(err).Str("record", r.ID).Msg("Post-navigation wait interrupted")
			}
		}
	}

	var scope browser.Finder = e.Page
	if r.Scope != nil {
		scope = r.Scope
	}

	control, ok := Resolve(ctx, scope, chain)
	if !ok {
		out.Kind = models.OutcomeControlNotFound
		out.Detail = "no entry control matched"
		return out
	}

	if text, err := control.Text(ctx); err == nil && e.Classifier.IsAlreadyEntered(text) {
		out.Kind = models.OutcomeAlreadyEntered
		out.Detail = text
		return out
	}

	if err := control.Click(ctx); err != nil {
		out.Kind = models.OutcomeClickFailed
		out.Detail = err.Error()
		return out
	}

	out.Kind = models.OutcomeEntered
	return out
}

// ClosePopups closes every window except primary and activates primary again.
// With no extra windows it only re-activates primary.
func (e *Executor) ClosePopups(ctx context.Context, primary browser.WindowHandle) error {
	windows, err := e.Page.Windows(ctx)
	if err != nil {
		return err
	}

	for _, w := range windows {
		if w == primary {
			continue
		}
		if err := e.Page.CloseWindow(ctx, w); err != nil {
			log.Debug().Err(err).Str("window", string(w)).Msg("Failed to close popup")
		}
	}

	return e.Page.SwitchWindow(ctx, primary)
}

func joinDetail(prefix, detail string) string {
	if detail == "" {
		return prefix
	}
	return prefix + ": " + detail
}
