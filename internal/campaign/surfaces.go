// internal/campaign/surfaces.go
package campaign

import (
	"fmt"

	"github.com/law-makers/campaigner/internal/browser"
)

// ExtractorKind names one of the listing markup shapes
type ExtractorKind string

const (
	KindAttributeList ExtractorKind = "attribute-list"
	KindJSONBlob      ExtractorKind = "json-blob"
	KindCardMarkup    ExtractorKind = "card-markup"
	KindBannerList    ExtractorKind = "banner-list"
)

// ExtractorConfig describes an extractor as data. Root is the list container,
// the hidden data field, the card or the banner box depending on Kind.
type ExtractorConfig struct {
	Kind ExtractorKind  `yaml:"kind"`
	Root browser.Lookup `yaml:"root"`

	// attribute-list
	ListAttr      string `yaml:"list_attr,omitempty"`
	NecessityAttr string `yaml:"necessity_attr,omitempty"`
	AppliedAttr   string `yaml:"applied_attr,omitempty"`
	NameAttr      string `yaml:"name_attr,omitempty"`

	// json-blob
	Path []string `yaml:"path,omitempty"`

	// attribute-list and json-blob, {id} is replaced by the record id
	TargetURL string `yaml:"target_url,omitempty"`

	// card-markup and banner-list
	Title     browser.Lookup `yaml:"title,omitempty"`
	Badge     browser.Lookup `yaml:"badge,omitempty"`
	Link      browser.Lookup `yaml:"link,omitempty"`
	Image     browser.Lookup `yaml:"image,omitempty"`
	Indicator browser.Lookup `yaml:"indicator,omitempty"`
}

// Build creates the extractor described by c
func (c ExtractorConfig) Build() (Extractor, error) {
	if err := c.Root.Validate(); err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}

	switch c.Kind {
	case KindAttributeList:
		if c.ListAttr == "" {
			return nil, fmt.Errorf("%s requires list_attr", c.Kind)
		}
		return &AttributeList{
			Container:     c.Root,
			ListAttr:      c.ListAttr,
			NecessityAttr: c.NecessityAttr,
			AppliedAttr:   c.AppliedAttr,
			NameAttr:      c.NameAttr,
			TargetURL:     c.TargetURL,
		}, nil

	case KindJSONBlob:
		return &JSONBlob{Field: c.Root, Path: c.Path, TargetURL: c.TargetURL}, nil

	case KindCardMarkup:
		if err := validateLookups(map[string]browser.Lookup{"title": c.Title, "badge": c.Badge, "link": c.Link}); err != nil {
			return nil, err
		}
		return &CardMarkup{Card: c.Root, Title: c.Title, Badge: c.Badge, Link: c.Link}, nil

	case KindBannerList:
		if err := validateLookups(map[string]browser.Lookup{"image": c.Image, "indicator": c.Indicator, "link": c.Link}); err != nil {
			return nil, err
		}
		return &BannerList{Box: c.Root, Image: c.Image, Indicator: c.Indicator, Link: c.Link}, nil
	}
	return nil, fmt.Errorf("unknown extractor kind %q", c.Kind)
}

func validateLookups(lookups map[string]browser.Lookup) error {
	for name, l := range lookups {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// SurfaceConfig describes a surface as data
type SurfaceConfig struct {
	Name         string           `yaml:"name"`
	URL          string           `yaml:"url"`
	Extract      ExtractorConfig  `yaml:"extract"`
	EntryChain   []browser.Lookup `yaml:"entry_chain"`
	ClosesPopups bool             `yaml:"closes_popups,omitempty"`
}

// Surface builds the runtime surface
func (c SurfaceConfig) Surface() (Surface, error) {
	if c.Name == "" {
		return Surface{}, fmt.Errorf("surface name is required")
	}
	ext, err := c.Extract.Build()
	if err != nil {
		return Surface{}, fmt.Errorf("surface %s: %w", c.Name, err)
	}
	if len(c.EntryChain) == 0 {
		return Surface{}, fmt.Errorf("surface %s: entry_chain is empty", c.Name)
	}
	for i, l := range c.EntryChain {
		if err := l.Validate(); err != nil {
			return Surface{}, fmt.Errorf("surface %s: entry_chain[%d]: %w", c.Name, i, err)
		}
	}

	return Surface{
		Name:         c.Name,
		URL:          c.URL,
		Extractor:    ext,
		EntryChain:   c.EntryChain,
		ClosesPopups: c.ClosesPopups,
	}, nil
}
