// internal/campaign/delay.go
package campaign

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Pace parameterizes one kind of wait: a normal distribution around Mean with
// standard deviation Spread, never shorter than Minimum.
type Pace struct {
	Mean    time.Duration `yaml:"mean"`
	Spread  time.Duration `yaml:"spread"`
	Minimum time.Duration `yaml:"minimum"`
}

// robertThreshold is the standardized truncation point past which plain
// rejection accepts too rarely and the exponential sampler takes over.
const robertThreshold = 0.5

// Delay draws human-like waits from a left-truncated normal distribution
type Delay struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDelay creates a delay model using rng. A nil rng is seeded from the clock.
func NewDelay(rng *rand.Rand) *Delay {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Delay{rng: rng}
}

// Streams that draw from one run seed without sharing a sequence
const (
	StreamDelay uint64 = iota + 1
	StreamOrder
)

// NewRand creates a PCG-backed source. Seed 0 means time-based.
func NewRand(seed uint64) *rand.Rand {
	return NewRandStream(seed, 0)
}

// NewRandStream creates a PCG source for one stream of seed; distinct streams
// of the same seed produce unrelated sequences
func NewRandStream(seed, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, (seed^0x9e3779b97f4a7c15)+stream*0xbf58476d1ce4e5b9))
}

// Sample returns one duration drawn from N(Mean, Spread²) conditioned on being at least Minimum
func (d *Delay) Sample(p Pace) time.Duration {
	if p.Spread <= 0 {
		return max(p.Mean, p.Minimum)
	}

	mean := float64(p.Mean)
	sigma := float64(p.Spread)
	alpha := (float64(p.Minimum) - mean) / sigma

	d.mu.Lock()
	z := d.truncatedStandard(alpha)
	d.mu.Unlock()

	v := time.Duration(mean + z*sigma)
	// float rounding must not push the sample under the bound
	return max(v, p.Minimum)
}

// truncatedStandard samples a standard normal conditioned on z >= alpha
func (d *Delay) truncatedStandard(alpha float64) float64 {
	if alpha < robertThreshold {
		for {
			if z := d.rng.NormFloat64(); z >= alpha {
				return z
			}
		}
	}

	// Robert (1995): translated exponential proposal with optimal rate
	lambda := (alpha + math.Sqrt(alpha*alpha+4)) / 2
	for {
		z := alpha + d.rng.ExpFloat64()/lambda
		rho := math.Exp(-(z - lambda) * (z - lambda) / 2)
		if d.rng.Float64() <= rho {
			return z
		}
	}
}

// Wait blocks for one sampled duration. It returns early only when ctx is done.
func (d *Delay) Wait(ctx context.Context, p Pace) error {
	dur := d.Sample(p)
	if dur <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
