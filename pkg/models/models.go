package models

import "github.com/law-makers/campaigner/internal/browser"

// SignalKind identifies the shape of the raw eligibility signal a surface produces
type SignalKind string

const (
	SignalUnknown     SignalKind = ""
	SignalBooleanPair SignalKind = "boolean-pair"
	SignalJSONPending SignalKind = "json-pending"
	SignalStatusBadge SignalKind = "status-badge"
	SignalDoneMarker  SignalKind = "done-marker"
)

// Signal carries the raw eligibility data exactly as read from the page.
// Only the fields relevant to Kind are populated.
type Signal struct {
	Kind SignalKind `json:"kind"`

	// boolean-pair
	EntryNecessary string `json:"entry_necessary,omitempty"`
	Applied        string `json:"applied,omitempty"`

	// status-badge
	Badge        string `json:"badge,omitempty"`
	BadgePresent bool   `json:"badge_present,omitempty"`

	// done-marker
	Marker        string `json:"marker,omitempty"`
	MarkerPresent bool   `json:"marker_present,omitempty"`
}

// CampaignRecord is one campaign or banner discovered on a surface
type CampaignRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Signal      Signal `json:"signal"`
	TargetURL   string `json:"target_url,omitempty"`

	// Scope is the element in-place entries are resolved against (banners).
	// Nil means the whole page.
	Scope browser.Element `json:"-"`
}

// Verdict is the eligibility decision for a record
type Verdict string

const (
	VerdictMustEnter Verdict = "must-enter"
	VerdictSkip      Verdict = "skip"
	VerdictUnknown   Verdict = "unknown"
)

// Attemptable reports whether the executor should try to enter a record with this verdict
func (v Verdict) Attemptable() bool {
	return v == VerdictMustEnter || v == VerdictUnknown
}

// OutcomeKind is the result of one entry attempt
type OutcomeKind string

const (
	OutcomeEntered         OutcomeKind = "entered"
	OutcomeAlreadyEntered  OutcomeKind = "already-entered"
	OutcomeControlNotFound OutcomeKind = "control-not-found"
	OutcomeClickFailed     OutcomeKind = "click-failed"
)

// Outcome describes what happened to one record
type Outcome struct {
	RecordID     string      `json:"record_id"`
	Kind         OutcomeKind `json:"kind"`
	Detail       string      `json:"detail,omitempty"`
	Unclassified bool        `json:"unclassified,omitempty"`
}
