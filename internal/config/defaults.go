package config

import (
	"time"

	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/internal/campaign"
)

// Default constants for application configuration
const (
	DefaultLogLevel            = "info"
	DefaultJSONLog             = false
	DefaultUserAgent           = ""
	DefaultTimeout             = 30 * time.Second
	DefaultNavigationRPS       = 0.5
	DefaultNavigationBurst     = 2
	DefaultBrowserHeadless     = false
	DefaultSecretBackend       = BackendKeyring
	DefaultMaxNavigationRPS    = 10.0
	DefaultMetricsFile         = ""
	DefaultSecretsManagerScope = "campaigner/"
)

// Secret backends
const (
	BackendKeyring        = "keyring"
	BackendFile           = "file"
	BackendSecretsManager = "aws"
)

// Surface URLs of the card member site
const (
	CardCampaignIndexURL = "https://www.rakuten-card.co.jp/e-navi/members/campaign/index.xhtml?l-id=enavi_all_glonavi_campaign"
	CardCampaignEntryURL = "https://www.rakuten-card.co.jp/e-navi/members/campaign/entry.xhtml?camc={id}"
	ClickPointURL        = "https://www.rakuten-card.co.jp/e-navi/members/point/click-point/index.xhtml?l-id=enavi_mtop_pointservice_click"
)

// DefaultPaces mirrors the waits of a person reading each page
func DefaultPaces() Paces {
	return Paces{
		LoginPage:  campaign.Pace{Mean: 3 * time.Second, Spread: time.Second, Minimum: 4 * time.Second},
		AfterLogin: campaign.Pace{Mean: 0, Spread: 4 * time.Second, Minimum: 4 * time.Second},
		Page:       campaign.Pace{Mean: 5 * time.Second, Spread: 1500 * time.Millisecond, Minimum: 6500 * time.Millisecond},
		Click:      campaign.Pace{Mean: 5 * time.Second, Spread: time.Second, Minimum: 6 * time.Second},
	}
}

// DefaultMarkers returns the Japanese status markers used by the site
func DefaultMarkers() Markers {
	return Markers{
		AlreadyEntered: append([]string(nil), campaign.DefaultAlreadyEnteredMarkers...),
		NoEntry:        append([]string(nil), campaign.DefaultNoEntryMarkers...),
		DoneGlyph:      campaign.DefaultDoneGlyph,
	}
}

var cardEntryChain = []browser.Lookup{
	browser.ID("entryForm:entry"),
	browser.ID("entryForm:entryTeam"),
	browser.CSS(`form#entryForm input[type="submit"]`),
	browser.CSS(`form#entryForm button[type="submit"]`),
}

// DefaultSurfaces returns the surface table in the site's menu order.
// Surfaces without a URL are skipped until one is configured.
func DefaultSurfaces() []campaign.SurfaceConfig {
	return []campaign.SurfaceConfig{
		{
			Name: "point-plus",
			Extract: campaign.ExtractorConfig{
				Kind: campaign.KindJSONBlob,
				Root: browser.CSS(`input[type="hidden"][name="campaignStatus"]`),
				Path: append([]string(nil), campaign.DefaultJSONPath...),
			},
			EntryChain: []browser.Lookup{browser.CSS("button.entry"), browser.CSS("a.entry")},
		},
		{
			Name: "general",
			Extract: campaign.ExtractorConfig{
				Kind:  campaign.KindCardMarkup,
				Root:  browser.CSS("div.campaign-card"),
				Title: browser.CSS(".campaign-title"),
				Badge: browser.CSS(".campaign-status"),
				Link:  browser.CSS("a"),
			},
			EntryChain: []browser.Lookup{browser.CSS("button.entry"), browser.CSS("a.entry")},
		},
		{
			Name: "card",
			URL:  CardCampaignIndexURL,
			Extract: campaign.ExtractorConfig{
				Kind:          campaign.KindAttributeList,
				Root:          browser.ID("ongoingCampaign"),
				ListAttr:      "data-campaign-codes",
				NecessityAttr: "data-entry-necessary",
				AppliedAttr:   "data-applied-flag",
				NameAttr:      "data-campaign-name",
				TargetURL:     CardCampaignEntryURL,
			},
			EntryChain: append([]browser.Lookup(nil), cardEntryChain...),
		},
		{
			Name: "pay",
			Extract: campaign.ExtractorConfig{
				Kind:  campaign.KindCardMarkup,
				Root:  browser.CSS("li.campaign-item"),
				Title: browser.CSS(".title"),
				Badge: browser.CSS(".status"),
				Link:  browser.CSS("a"),
			},
			EntryChain: []browser.Lookup{browser.CSS("button.entry"), browser.CSS("a.entry")},
		},
		{
			Name: "click-point",
			URL:  ClickPointURL,
			Extract: campaign.ExtractorConfig{
				Kind:      campaign.KindBannerList,
				Root:      browser.CSS("div.topArea.clearfix div.bnrBoxInner"),
				Image:     browser.CSS("img"),
				Indicator: browser.CSS(".clicked"),
				Link:      browser.CSS("a"),
			},
			EntryChain:   []browser.Lookup{browser.CSS("a")},
			ClosesPopups: true,
		},
	}
}
