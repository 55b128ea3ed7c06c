// internal/campaign/report.go
package campaign

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/campaigner/internal/ui"
	"github.com/law-makers/campaigner/pkg/models"
)

// Reporter receives one call per discovered record and one per entry attempt
type Reporter interface {
	Record(surface string, r models.CampaignRecord, v models.Verdict)
	Outcome(surface string, o models.Outcome)
	SurfaceSkipped(surface string, err error)
	StepFinished(surface string, elapsed time.Duration)
}

// MultiReporter fans every call out to each reporter in order
type MultiReporter []Reporter

func (m MultiReporter) Record(surface string, r models.CampaignRecord, v models.Verdict) {
	for _, rep := range m {
		rep.Record(surface, r, v)
	}
}

func (m MultiReporter) Outcome(surface string, o models.Outcome) {
	for _, rep := range m {
		rep.Outcome(surface, o)
	}
}

func (m MultiReporter) SurfaceSkipped(surface string, err error) {
	for _, rep := range m {
		rep.SurfaceSkipped(surface, err)
	}
}

func (m MultiReporter) StepFinished(surface string, elapsed time.Duration) {
	for _, rep := range m {
		rep.StepFinished(surface, elapsed)
	}
}

// LogReporter writes structured log events
type LogReporter struct {
	Logger zerolog.Logger
}

func (l LogReporter) Record(surface string, r models.CampaignRecord, v models.Verdict) {
	l.Logger.Info().
		Str("surface", surface).
		Str("record", r.ID).
		Str("name", r.DisplayName).
		Str("signal", string(r.Signal.Kind)).
		Str("verdict", string(v)).
		Msg("Campaign discovered")
}

func (l LogReporter) Outcome(surface string, o models.Outcome) {
	ev := l.Logger.Info()
	if o.Kind == models.OutcomeClickFailed || o.Kind == models.OutcomeControlNotFound {
		ev = l.Logger.Warn()
	}
	ev.Str("surface", surface).
		Str("record", o.RecordID).
		Str("outcome", string(o.Kind)).
		Bool("unclassified", o.Unclassified).
		Str("detail", o.Detail).
		Msg("Entry attempted")
}

func (l LogReporter) SurfaceSkipped(surface string, err error) {
	l.Logger.Warn().Err(err).Str("surface", surface).Msg("Surface skipped")
}

func (l LogReporter) StepFinished(surface string, elapsed time.Duration) {
	l.Logger.Debug().Str("surface", surface).Dur("elapsed", elapsed).Msg("Surface finished")
}

// ConsoleReporter prints one human-readable line per record and per outcome
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer
	ui.Painter
}

// NewConsoleReporter writes to w, with ANSI colors when color is true
func NewConsoleReporter(w io.Writer, color bool) *ConsoleReporter {
	return &ConsoleReporter{w: w, Painter: ui.Painter{Color: color}}
}

func (c *ConsoleReporter) Record(surface string, r models.CampaignRecord, v models.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := r.DisplayName
	if name == "" {
		name = r.ID
	}

	style := ui.Style(ui.Warning)
	switch v {
	case models.VerdictMustEnter:
		style = ui.Bold
	case models.VerdictSkip:
		style = ui.Dim
	}
	fmt.Fprintf(c.w, "%s %s %s (%s)\n", c.Tag(surface), c.Paint(style, string(v)), name, r.ID)
}

func (c *ConsoleReporter) Outcome(surface string, o models.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	style := ui.Style(ui.Success)
	switch o.Kind {
	case models.OutcomeClickFailed, models.OutcomeControlNotFound:
		style = ui.Error
	case models.OutcomeAlreadyEntered:
		style = ui.Info
	}

	line := fmt.Sprintf("%s %s %s", c.Tag(surface), c.Paint(style, string(o.Kind)), o.RecordID)
	if o.Detail != "" {
		line += ": " + o.Detail
	}
	fmt.Fprintln(c.w, line)
}

func (c *ConsoleReporter) SurfaceSkipped(surface string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", c.Tag(surface), c.Paint(ui.Warning, "skipped: "+err.Error()))
}

func (c *ConsoleReporter) StepFinished(surface string, elapsed time.Duration) {}
