// internal/campaign/resolver.go
package campaign

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/browser"
)

// Attempt is one way of locating an element
type Attempt func() (browser.Element, error)

// FirstFound runs attempts in order and returns the first element found.
// Attempts after the first success are never called.
func FirstFound(attempts []Attempt) (browser.Element, bool) {
	for _, attempt := range attempts {
		el, err := attempt()
		if err == nil && el != nil {
			return el, true
		}
	}
	return nil, false
}

// Resolve returns the first element matched by chain within scope.
// Absence is never an error; it is reported as (nil, false).
func Resolve(ctx context.Context, scope browser.Finder, chain []browser.Lookup) (browser.Element, bool) {
	attempts := make([]Attempt, len(chain))
	for i, l := range chain {
		attempts[i] = func() (browser.Element, error) {
			el, err := scope.Find(ctx, l)
			if err != nil && !errors.Is(err, browser.ErrNoSuchElement) {
				log.Debug().Err(err).Str("lookup", l.String()).Msg("Lookup failed")
			}
			return el, err
		}
	}
	return FirstFound(attempts)
}
