// internal/campaign/classify.go
package campaign

import (
	"fmt"
	"strings"

	"github.com/law-makers/campaigner/pkg/models"
)

// Default locale markers
var (
	DefaultAlreadyEnteredMarkers = []string{"エントリー済み", "エントリー済", "参加済み"}
	DefaultNoEntryMarkers        = []string{"エントリー不要"}
)

// DefaultDoneGlyph marks a banner that has already been clicked
const DefaultDoneGlyph = "済"

// Classifier maps raw signals to verdicts. It is a pure function of its markers and the signal.
type Classifier struct {
	AlreadyEntered []string
	NoEntry        []string
	DoneGlyph      string
}

// NewClassifier returns a classifier with the default markers
func NewClassifier() *Classifier {
	return &Classifier{
		AlreadyEntered: DefaultAlreadyEnteredMarkers,
		NoEntry:        DefaultNoEntryMarkers,
		DoneGlyph:      DefaultDoneGlyph,
	}
}

// Classify decides whether a record still needs an entry
func (c *Classifier) Classify(s models.Signal) models.Verdict {
	switch s.Kind {
	case models.SignalBooleanPair:
		necessary, err := parseFlag(s.EntryNecessary)
		if err != nil {
			return models.VerdictUnknown
		}
		// no entry needed, whatever the applied flag says
		if !necessary {
			return models.VerdictSkip
		}
		applied, err := parseFlag(s.Applied)
		if err != nil {
			return models.VerdictUnknown
		}
		if applied {
			return models.VerdictSkip
		}
		return models.VerdictMustEnter

	case models.SignalJSONPending:
		return models.VerdictMustEnter

	case models.SignalStatusBadge:
		if !s.BadgePresent {
			return models.VerdictUnknown
		}
		if containsAny(s.Badge, c.NoEntry) || containsAny(s.Badge, c.AlreadyEntered) {
			return models.VerdictSkip
		}
		return models.VerdictMustEnter

	case models.SignalDoneMarker:
		if s.MarkerPresent && strings.TrimSpace(s.Marker) == c.DoneGlyph {
			return models.VerdictSkip
		}
		return models.VerdictMustEnter
	}
	return models.VerdictUnknown
}

// IsAlreadyEntered reports whether control text shows the entry was already made
func (c *Classifier) IsAlreadyEntered(text string) bool {
	return containsAny(text, c.AlreadyEntered)
}

func parseFlag(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("not a flag: %q", v)
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}
