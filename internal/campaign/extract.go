// internal/campaign/extract.go
package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/browser"
	urlutil "github.com/law-makers/campaigner/internal/utils/url"
	"github.com/law-makers/campaigner/pkg/models"
)

// Extractor reads campaign records off the current page of one surface.
//
// Extract never fails: a missing container or field is logged and yields an
// empty slice, and records whose required fields are absent are dropped.
type Extractor interface {
	Kind() models.SignalKind
	Extract(ctx context.Context, page browser.Page) []models.CampaignRecord
}

// AttributeList reads a container attribute of space-separated ids, then three
// attributes from the element carrying each id.
type AttributeList struct {
	Container     browser.Lookup
	ListAttr      string
	NecessityAttr string
	AppliedAttr   string
	NameAttr      string

	// TargetURL is a template with an {id} placeholder; empty means entry in place
	TargetURL string
}

func (x *AttributeList) Kind() models.SignalKind { return models.SignalBooleanPair }

func (x *AttributeList) Extract(ctx context.Context, page browser.Page) []models.CampaignRecord {
	container, err := page.Find(ctx, x.Container)
	if err != nil {
		log.Warn().Err(err).Str("container", x.Container.String()).Msg("Campaign list container not readable")
		return nil
	}

	list, ok, err := container.Attribute(ctx, x.ListAttr)
	if err != nil || !ok {
		log.Warn().Err(err).Str("attribute", x.ListAttr).Msg("Campaign list attribute not readable")
		return nil
	}

	var records []models.CampaignRecord
	seen := make(map[string]bool)
	for _, id := range strings.Fields(list) {
		if seen[id] {
			continue
		}
		seen[id] = true

		el, err := page.Find(ctx, browser.ID(id))
		if err != nil {
			log.Debug().Err(err).Str("record", id).Msg("Campaign element missing, dropping record")
			continue
		}

		necessary, _, _ := el.Attribute(ctx, x.NecessityAttr)
		applied, _, _ := el.Attribute(ctx, x.AppliedAttr)
		name, _, _ := el.Attribute(ctx, x.NameAttr)

		records = append(records, models.CampaignRecord{
			ID:          id,
			DisplayName: name,
			Signal: models.Signal{
				Kind:           models.SignalBooleanPair,
				EntryNecessary: necessary,
				Applied:        applied,
			},
			TargetURL: urlutil.ExpandTemplate(x.TargetURL, id),
		})
	}
	return records
}

// DefaultJSONPath locates the pre-filtered list of pending campaign ids
var DefaultJSONPath = []string{"items", "campaign_status", "ongoing", "unregistered"}

// JSONBlob reads a hidden field holding serialized data and walks Path to a list of ids
type JSONBlob struct {
	Field     browser.Lookup
	Path      []string
	TargetURL string
}

func (x *JSONBlob) Kind() models.SignalKind { return models.SignalJSONPending }

func (x *JSONBlob) Extract(ctx context.Context, page browser.Page) []models.CampaignRecord {
	field, err := page.Find(ctx, x.Field)
	if err != nil {
		log.Warn().Err(err).Str("field", x.Field.String()).Msg("Campaign data field not readable")
		return nil
	}

	raw, ok, err := field.Attribute(ctx, "value")
	if err != nil || !ok || strings.TrimSpace(raw) == "" {
		log.Warn().Err(err).Str("field", x.Field.String()).Msg("Campaign data field is empty")
		return nil
	}

	path := x.Path
	if len(path) == 0 {
		path = DefaultJSONPath
	}

	ids, err := pendingIDs(raw, path)
	if err != nil {
		log.Warn().Err(err).Str("field", x.Field.String()).Msg("Campaign data not parseable")
		return nil
	}

	records := make([]models.CampaignRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, models.CampaignRecord{
			ID:          id,
			DisplayName: id,
			Signal:      models.Signal{Kind: models.SignalJSONPending},
			TargetURL:   urlutil.ExpandTemplate(x.TargetURL, id),
		})
	}
	return records
}

func pendingIDs(raw string, path []string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("failed to decode campaign data: %w", err)
	}

	for _, key := range path {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object at %q", key)
		}
		if node, ok = obj[key]; !ok {
			return nil, fmt.Errorf("missing key %q", key)
		}
	}

	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list at %s", strings.Join(path, "."))
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, len(list))
	for _, v := range list {
		var id string
		switch v := v.(type) {
		case string:
			id = v
		case json.Number:
			id = v.String()
		default:
			continue
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// CardMarkup reads repeated campaign cards. Eligibility comes only from the badge text.
type CardMarkup struct {
	Card  browser.Lookup
	Title browser.Lookup
	Badge browser.Lookup
	Link  browser.Lookup
}

func (x *CardMarkup) Kind() models.SignalKind { return models.SignalStatusBadge }

func (x *CardMarkup) Extract(ctx context.Context, page browser.Page) []models.CampaignRecord {
	cards, err := page.FindAll(ctx, x.Card)
	if err != nil {
		log.Warn().Err(err).Str("card", x.Card.String()).Msg("Campaign cards not readable")
		return nil
	}

	base, _ := page.Location(ctx)

	var records []models.CampaignRecord
	seen := make(map[string]bool)
	for i, card := range cards {
		link, err := card.Find(ctx, x.Link)
		if err != nil {
			log.Debug().Int("card", i).Msg("Card has no link, dropping record")
			continue
		}
		href, ok, _ := link.Attribute(ctx, "href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			log.Debug().Int("card", i).Msg("Card link has no href, dropping record")
			continue
		}

		target := urlutil.ResolveURL(base, href)
		if seen[target] {
			continue
		}
		seen[target] = true

		record := models.CampaignRecord{
			ID:          target,
			DisplayName: textOf(ctx, card, x.Title),
			Signal:      models.Signal{Kind: models.SignalStatusBadge},
			TargetURL:   target,
		}
		if badge, err := card.Find(ctx, x.Badge); err == nil {
			record.Signal.Badge, _ = badge.Text(ctx)
			record.Signal.BadgePresent = true
		}
		records = append(records, record)
	}
	return records
}

// BannerList reads clickable point banners. Each box is entered in place.
type BannerList struct {
	Box       browser.Lookup
	Image     browser.Lookup
	Indicator browser.Lookup
	Link      browser.Lookup
}

func (x *BannerList) Kind() models.SignalKind { return models.SignalDoneMarker }

func (x *BannerList) Extract(ctx context.Context, page browser.Page) []models.CampaignRecord {
	boxes, err := page.FindAll(ctx, x.Box)
	if err != nil {
		log.Warn().Err(err).Str("box", x.Box.String()).Msg("Banners not readable")
		return nil
	}

	records := make([]models.CampaignRecord, 0, len(boxes))
	seen := make(map[string]bool)
	for i, box := range boxes {
		id := fmt.Sprintf("banner-%d", i)
		if link, err := box.Find(ctx, x.Link); err == nil {
			if href, ok, _ := link.Attribute(ctx, "href"); ok && strings.TrimSpace(href) != "" {
				id = strings.TrimSpace(href)
			}
		}
		if seen[id] {
			id = fmt.Sprintf("%s#%d", id, i)
		}
		seen[id] = true

		record := models.CampaignRecord{
			ID:     id,
			Signal: models.Signal{Kind: models.SignalDoneMarker},
			Scope:  box,
		}
		if img, err := box.Find(ctx, x.Image); err == nil {
			record.DisplayName, _, _ = img.Attribute(ctx, "alt")
		}
		if indicator, err := box.Find(ctx, x.Indicator); err == nil {
			record.Signal.Marker, _ = indicator.Text(ctx)
			record.Signal.MarkerPresent = true
		}
		records = append(records, record)
	}
	return records
}

func textOf(ctx context.Context, scope browser.Finder, l browser.Lookup) string {
	el, err := scope.Find(ctx, l)
	if err != nil {
		return ""
	}
	text, _ := el.Text(ctx)
	return strings.TrimSpace(text)
}
