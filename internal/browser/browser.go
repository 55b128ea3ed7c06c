// Package browser defines the page-driving capability the campaign runner consumes
// and provides two implementations: a live Chrome session (chromedp) and an offline
// snapshot page backed by goquery.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common browser errors
var (
	ErrNoSuchElement  = errors.New("no such element")
	ErrBrowserClosed  = errors.New("browser session is closed")
	ErrNoSuchWindow   = errors.New("no such window")
	ErrNotImplemented = errors.New("not supported by this page implementation")
)

// By selects how a Lookup's selector is interpreted
type By string

const (
	ByID  By = "id"
	ByCSS By = "css"
)

// Lookup is a single element lookup strategy
type Lookup struct {
	By       By     `yaml:"by" json:"by"`
	Selector string `yaml:"selector" json:"selector"`
}

// ID builds an id-based lookup
func ID(id string) Lookup {
	return Lookup{By: ByID, Selector: id}
}

// CSS builds a CSS-selector lookup
func CSS(selector string) Lookup {
	return Lookup{By: ByCSS, Selector: selector}
}

// Query returns the lookup as a CSS selector usable by both implementations.
// IDs are turned into attribute selectors so values like "entryForm:entry" need no escaping.
func (l Lookup) Query() string {
	if l.By == ByID {
		return fmt.Sprintf(`[id="%s"]`, strings.ReplaceAll(l.Selector, `"`, `\"`))
	}
	return l.Selector
}

// Validate checks that the lookup can be run
func (l Lookup) Validate() error {
	if l.By != ByID && l.By != ByCSS {
		return fmt.Errorf("invalid lookup kind %q: must be id or css", l.By)
	}
	if strings.TrimSpace(l.Selector) == "" {
		return fmt.Errorf("empty %s selector", l.By)
	}
	return nil
}

func (l Lookup) String() string {
	return string(l.By) + "=" + l.Selector
}

// Finder is a search root: the whole page or a single element
type Finder interface {
	// Find returns the first element matching the lookup, or ErrNoSuchElement
	Find(ctx context.Context, l Lookup) (Element, error)

	// FindAll returns every matching element in document order; empty when none match
	FindAll(ctx context.Context, l Lookup) ([]Element, error)
}

// Element is a handle on one DOM node
type Element interface {
	Finder

	// Attribute returns the attribute value and whether the attribute exists.
	// For "value" on a form field it is the current value, which script may have changed.
	Attribute(ctx context.Context, name string) (string, bool, error)

	// Text returns the rendered text of the element
	Text(ctx context.Context) (string, error)

	// Click performs a programmatic click on the element
	Click(ctx context.Context) error
}

// WindowHandle identifies a browser window or tab
type WindowHandle string

// Page is a driven browser page
type Page interface {
	Finder

	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)

	// Evaluate runs a script in the page and decodes its result into res (which may be nil)
	Evaluate(ctx context.Context, script string, res any) error

	SendKeys(ctx context.Context, l Lookup, text string) error
	Submit(ctx context.Context, l Lookup) error

	Windows(ctx context.Context) ([]WindowHandle, error)
	CurrentWindow(ctx context.Context) (WindowHandle, error)
	SwitchWindow(ctx context.Context, h WindowHandle) error
	CloseWindow(ctx context.Context, h WindowHandle) error

	Close() error
}
