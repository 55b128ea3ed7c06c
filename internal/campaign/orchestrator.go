// internal/campaign/orchestrator.go
package campaign

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/browser"
)

// Authenticator logs the page in. Any error aborts the run.
type Authenticator interface {
	Authenticate(ctx context.Context, page browser.Page) error
}

// Permutation returns an ordering of 0..n-1
type Permutation func(n int) []int

// RandomPermutation draws uniformly random orderings from rng
func RandomPermutation(rng *rand.Rand) Permutation {
	var mu sync.Mutex
	return func(n int) []int {
		mu.Lock()
		defer mu.Unlock()
		return rng.Perm(n)
	}
}

// Identity keeps the original order
func Identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Orchestrator runs every step once per run against a single authenticated page
type Orchestrator struct {
	Page          browser.Page
	Authenticator Authenticator
	Steps         []Step
	Delay         *Delay
	LoginPace     Pace
	Permute       Permutation
}

// Run authenticates, then executes the steps in a random order and closes the page.
// Only authentication failures and interruption are returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer func() {
		if err := o.Page.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close page")
		}
	}()

	if err := o.Authenticator.Authenticate(ctx, o.Page); err != nil {
		if errors.Is(err, ErrAuthentication) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	if err := o.Delay.Wait(ctx, o.LoginPace); err != nil {
		return err
	}

	primary, err := o.Page.CurrentWindow(ctx)
	if err != nil {
		return fmt.Errorf("failed to read primary window: %w", err)
	}

	order := o.Permute(len(o.Steps))
	for _, i := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := o.Steps[i]
		log.Debug().Str("surface", step.Name()).Msg("Running step")
		step.Run(ctx, primary)
	}
	return ctx.Err()
}
