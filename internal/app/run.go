package app

import (
	"github.com/law-makers/campaigner/internal/auth"
	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/internal/campaign"
)

// NewOrchestrator wires one run over page from the configuration.
// Delays and orderings draw from sources seeded with Config.Seed.
func (a *Application) NewOrchestrator(page browser.Page, cred auth.Credential, reporter campaign.Reporter) (*campaign.Orchestrator, error) {
	cfg := a.Config

	surfaces, err := cfg.BuildSurfaces()
	if err != nil {
		return nil, err
	}

	delay := a.NewDelay()
	permute := campaign.RandomPermutation(campaign.NewRandStream(cfg.Seed, campaign.StreamOrder))

	exec := &campaign.Executor{
		Page:       page,
		Classifier: cfg.Classifier(),
		Delay:      delay,
		PagePace:   cfg.Paces.Page,
		ClickPace:  cfg.Paces.Click,
	}

	steps := make([]campaign.Step, 0, len(surfaces))
	for _, s := range surfaces {
		steps = append(steps, &campaign.SurfaceStep{
			Surface:  s,
			Executor: exec,
			Permute:  permute,
			Reporter: reporter,
		})
	}

	return &campaign.Orchestrator{
		Page: page,
		Authenticator: &auth.FormLogin{
			Credential: cred,
			Form:       cfg.Login,
			Delay:      delay,
			PagePace:   cfg.Paces.LoginPage,
		},
		Steps:     steps,
		Delay:     delay,
		LoginPace: cfg.Paces.AfterLogin,
		Permute:   permute,
	}, nil
}
