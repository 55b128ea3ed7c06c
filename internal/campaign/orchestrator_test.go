package campaign

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/pkg/models"
)

const listURL = "https://card.example/campaigns"

func cardSurface() Surface {
	return Surface{
		Name: "card",
		URL:  listURL,
		Extractor: &AttributeList{
			Container:     browser.ID("ongoingCampaign"),
			ListAttr:      "data-campaign-codes",
			NecessityAttr: "data-entry-necessary",
			AppliedAttr:   "data-applied-flag",
			NameAttr:      "data-campaign-name",
			TargetURL:     "https://card.example/entry?camc={id}",
		},
		EntryChain: entryChain,
	}
}

const threeCampaigns = `
	<section id="ongoingCampaign" data-campaign-codes="c1 c2 c3">
		<article id="c1" data-entry-necessary="true" data-applied-flag="false" data-campaign-name="One"></article>
		<article id="c2" data-entry-necessary="true" data-applied-flag="false" data-campaign-name="Two"></article>
		<article id="c3" data-entry-necessary="true" data-applied-flag="true" data-campaign-name="Three"></article>
	</section>`

const entryPage = `<form id="entryForm"><button id="entryForm:entry">エントリー</button></form>`

type recordingReporter struct {
	records  []models.Verdict
	outcomes []models.Outcome
	skipped  []error
	finished []string
}

func (r *recordingReporter) Record(surface string, rec models.CampaignRecord, v models.Verdict) {
	r.records = append(r.records, v)
}

func (r *recordingReporter) Outcome(surface string, o models.Outcome) {
	r.outcomes = append(r.outcomes, o)
}

func (r *recordingReporter) SurfaceSkipped(surface string, err error) {
	r.skipped = append(r.skipped, err)
}

func (r *recordingReporter) StepFinished(surface string, _ time.Duration) {
	r.finished = append(r.finished, surface)
}

func newOrchestrator(page browser.Page, auth Authenticator, rep Reporter, permute Permutation, surfaces ...Surface) *Orchestrator {
	exec := newExecutor(page)
	steps := make([]Step, len(surfaces))
	for i, s := range surfaces {
		steps[i] = &SurfaceStep{Surface: s, Executor: exec, Permute: permute, Reporter: rep}
	}
	return &Orchestrator{
		Page:          page,
		Authenticator: auth,
		Steps:         steps,
		Delay:         exec.Delay,
		Permute:       permute,
	}
}

func TestRun_EntersOnlyEligibleRecords(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(listURL, wrapHTML(threeCampaigns))
	page.AddPage("https://card.example/entry?camc=c1", wrapHTML(entryPage))
	page.AddPage("https://card.example/entry?camc=c2", wrapHTML(entryPage))
	page.AddPage("https://card.example/entry?camc=c3", wrapHTML(entryPage))

	var console bytes.Buffer
	rec := &recordingReporter{}
	rep := MultiReporter{NewConsoleReporter(&console, false), rec}

	o := newOrchestrator(page, noAuth, rep, RandomPermutation(NewRand(5)), cardSurface())
	require.NoError(t, o.Run(context.Background()))

	assert.Len(t, page.Clicks(), 2)
	assert.Len(t, rec.records, 3)
	assert.ElementsMatch(t, []models.Verdict{models.VerdictMustEnter, models.VerdictMustEnter, models.VerdictSkip}, rec.records)
	require.Len(t, rec.outcomes, 2)
	for _, o := range rec.outcomes {
		assert.Equal(t, models.OutcomeEntered, o.Kind)
		assert.NotEqual(t, "c3", o.RecordID)
	}
	assert.Len(t, nonEmptyLines(&console), 5, "3 status lines and 2 outcome lines")
	assert.True(t, page.Closed())
	assert.NotContains(t, page.Navigations(), "https://card.example/entry?camc=c3")
}

func TestRun_NotNecessaryIsNeverEntered(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(listURL, wrapHTML(`
	<section id="ongoingCampaign" data-campaign-codes="c1">
		<article id="c1" data-entry-necessary="false" data-campaign-name="One"></article>
	</section>`))
	page.AddPage("https://card.example/entry?camc=c1", wrapHTML(entryPage))

	rec := &recordingReporter{}
	o := newOrchestrator(page, noAuth, rec, Identity, cardSurface())
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, []models.Verdict{models.VerdictSkip}, rec.records)
	assert.Empty(t, rec.outcomes)
	assert.Empty(t, page.Clicks())
	assert.Equal(t, []string{listURL}, page.Navigations())
}

func TestRun_ControlNotFoundDoesNotAbort(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(listURL, wrapHTML(threeCampaigns))
	page.AddPage("https://card.example/entry?camc=c1", wrapHTML(`<p>this campaign moved</p>`))
	page.AddPage("https://card.example/entry?camc=c2", wrapHTML(entryPage))

	rec := &recordingReporter{}
	o := newOrchestrator(page, noAuth, rec, Identity, cardSurface())
	require.NoError(t, o.Run(context.Background()))

	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, models.Outcome{RecordID: "c1", Kind: models.OutcomeControlNotFound, Detail: "no entry control matched"}, rec.outcomes[0])
	assert.Equal(t, models.OutcomeEntered, rec.outcomes[1].Kind)
	assert.Equal(t, "c2", rec.outcomes[1].RecordID)
}

func TestRun_RecordOrderFollowsPermutation(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(listURL, wrapHTML(threeCampaigns))
	page.AddPage("https://card.example/entry?camc=c1", wrapHTML(`<form id="entryForm"><button id="entryForm:entry" class="c1">エントリー</button></form>`))
	page.AddPage("https://card.example/entry?camc=c2", wrapHTML(entryPage))

	reverse := func(n int) []int {
		p := make([]int, n)
		for i := range p {
			p[i] = n - 1 - i
		}
		return p
	}

	rec := &recordingReporter{}
	o := newOrchestrator(page, noAuth, rec, reverse, cardSurface())
	require.NoError(t, o.Run(context.Background()))

	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, "c2", rec.outcomes[0].RecordID)
	assert.Equal(t, "c1", rec.outcomes[1].RecordID)
}

func TestRun_AuthenticationFailureIsFatal(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(listURL, wrapHTML(threeCampaigns))

	failing := authFunc(func(ctx context.Context, page browser.Page) error {
		return ErrLoginFormNotFound
	})

	rec := &recordingReporter{}
	o := newOrchestrator(page, failing, rec, Identity, cardSurface())
	err := o.Run(context.Background())

	assert.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorIs(t, err, ErrLoginFormNotFound)
	assert.Empty(t, page.Navigations())
	assert.Empty(t, rec.finished)
	assert.True(t, page.Closed())
}

func TestRun_StepFailureDoesNotStopOthers(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(listURL, wrapHTML(threeCampaigns))
	page.AddPage("https://card.example/entry?camc=c1", wrapHTML(entryPage))
	page.AddPage("https://card.example/entry?camc=c2", wrapHTML(entryPage))

	broken := cardSurface()
	broken.Name = "broken"
	broken.URL = "https://card.example/gone"

	unset := cardSurface()
	unset.Name = "pay"
	unset.URL = ""

	rec := &recordingReporter{}
	o := newOrchestrator(page, noAuth, rec, Identity, broken, unset, cardSurface())
	require.NoError(t, o.Run(context.Background()))

	require.Len(t, rec.skipped, 2)
	var stepErr *StepError
	require.True(t, errors.As(rec.skipped[0], &stepErr))
	assert.Equal(t, ErrCodeNavigation, stepErr.Code)
	assert.ErrorIs(t, rec.skipped[1], ErrNotConfigured)

	assert.Equal(t, []string{"broken", "pay", "card"}, rec.finished)
	assert.Len(t, rec.outcomes, 2)
}

func TestRun_BannersCloseEveryPopup(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage("https://card.example/click-point", wrapHTML(`
		<div class="topArea clearfix">
			<div class="bnrBoxInner"><a href="https://ad.example/1" target="_blank"><img alt="One"></a></div>
			<div class="bnrBoxInner"><a href="https://ad.example/2" target="_blank"><img alt="Two"></a><p class="clicked">済</p></div>
			<div class="bnrBoxInner"><a href="https://ad.example/3" target="_blank"><img alt="Three"></a></div>
		</div>`))

	banners := Surface{
		Name: "click-point",
		URL:  "https://card.example/click-point",
		Extractor: &BannerList{
			Box:       browser.CSS("div.topArea.clearfix div.bnrBoxInner"),
			Image:     browser.CSS("img"),
			Indicator: browser.CSS(".clicked"),
			Link:      browser.CSS("a"),
		},
		EntryChain:   []browser.Lookup{browser.CSS("a")},
		ClosesPopups: true,
	}

	rec := &recordingReporter{}
	o := newOrchestrator(page, noAuth, rec, Identity, banners)
	require.NoError(t, o.Run(context.Background()))

	assert.Len(t, page.Clicks(), 2)
	assert.Len(t, rec.outcomes, 2)
	windows, _ := page.Windows(context.Background())
	assert.Len(t, windows, 1)
}

func TestRun_StopsWhenInterrupted(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(listURL, wrapHTML(threeCampaigns))

	ctx, cancel := context.WithCancel(context.Background())
	auth := authFunc(func(ctx context.Context, page browser.Page) error {
		cancel()
		return nil
	})

	rec := &recordingReporter{}
	o := newOrchestrator(page, auth, rec, Identity, cardSurface())
	assert.ErrorIs(t, o.Run(ctx), context.Canceled)
	assert.Empty(t, rec.finished)
}

func TestRandomPermutation_Uniform(t *testing.T) {
	const (
		n    = 4
		runs = 8000
	)
	permute := RandomPermutation(NewRand(42))

	var counts [n][n]int
	for r := 0; r < runs; r++ {
		p := permute(n)
		require.Len(t, p, n)
		for pos, item := range p {
			counts[item][pos]++
		}
	}

	expected := float64(runs) / n
	for item := 0; item < n; item++ {
		for pos := 0; pos < n; pos++ {
			got := float64(counts[item][pos])
			if got < expected*0.85 || got > expected*1.15 {
				t.Errorf("item %d at position %d: %v times, expected about %v", item, pos, got, expected)
			}
		}
	}
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, Identity(3))
	assert.Empty(t, Identity(0))
}
