// internal/browser/snapshot.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Click records one click performed on a Snapshot
type Click struct {
	URL  string
	ID   string
	Text string
}

// Snapshot is an offline Page over saved HTML documents.
//
// It never touches the network: Navigate only switches between documents added
// with AddPage. Clicks are recorded instead of executed. Anchors with
// target="_blank" open a new (empty) window, mirroring what a browser would do.
type Snapshot struct {
	mu       sync.Mutex
	pages    map[string]string
	doc      *goquery.Document
	location string

	windows []WindowHandle
	current WindowHandle
	opened  int

	navigations []string
	clicks      []Click
	typed       map[string]string
	submitted   []string
	closed      bool

	// OnClick, when set, runs before a click is recorded; a non-nil error fails the click
	OnClick func(el *SnapshotElement) error
}

const primaryWindow WindowHandle = "main"

// NewSnapshot creates an empty snapshot page
func NewSnapshot() *Snapshot {
	return &Snapshot{
		pages:   make(map[string]string),
		windows: []WindowHandle{primaryWindow},
		current: primaryWindow,
		typed:   make(map[string]string),
	}
}

// AddPage registers the HTML served for url
func (s *Snapshot) AddPage(url, htmlContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = htmlContent
}

// Navigate switches to the document registered for url
func (s *Snapshot) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrBrowserClosed
	}
	content, ok := s.pages[url]
	if !ok {
		return fmt.Errorf("no snapshot for %s", url)
	}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse snapshot for %s: %w", url, err)
	}

	s.doc = goquery.NewDocumentFromNode(root)
	s.location = url
	s.navigations = append(s.navigations, url)
	return nil
}

// Location returns the URL of the current document
func (s *Snapshot) Location(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, nil
}

// Evaluate is not available offline
func (s *Snapshot) Evaluate(ctx context.Context, script string, res any) error {
	return ErrNotImplemented
}

func (s *Snapshot) document() (*goquery.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrBrowserClosed
	}
	if s.doc == nil {
		return nil, fmt.Errorf("%w: no document loaded", ErrNoSuchElement)
	}
	return s.doc, nil
}

func (s *Snapshot) Find(ctx context.Context, l Lookup) (Element, error) {
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	return s.first(doc.Selection, l)
}

func (s *Snapshot) FindAll(ctx context.Context, l Lookup) ([]Element, error) {
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	return s.all(doc.Selection, l), nil
}

func (s *Snapshot) first(root *goquery.Selection, l Lookup) (Element, error) {
	sel := root.Find(l.Query()).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, l)
	}
	return &SnapshotElement{page: s, sel: sel}, nil
}

func (s *Snapshot) all(root *goquery.Selection, l Lookup) []Element {
	var elems []Element
	root.Find(l.Query()).Each(func(i int, sel *goquery.Selection) {
		elems = append(elems, &SnapshotElement{page: s, sel: sel})
	})
	return elems
}

// SendKeys records text typed into the element matching l
func (s *Snapshot) SendKeys(ctx context.Context, l Lookup, text string) error {
	if _, err := s.Find(ctx, l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typed[l.String()] += text
	return nil
}

// Submit records a form submission through the element matching l
func (s *Snapshot) Submit(ctx context.Context, l Lookup) error {
	if _, err := s.Find(ctx, l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, l.String())
	return nil
}

func (s *Snapshot) Windows(ctx context.Context) ([]WindowHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WindowHandle(nil), s.windows...), nil
}

func (s *Snapshot) CurrentWindow(ctx context.Context) (WindowHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *Snapshot) SwitchWindow(ctx context.Context, h WindowHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasWindow(h) {
		return fmt.Errorf("%w: %s", ErrNoSuchWindow, h)
	}
	s.current = h
	return nil
}

func (s *Snapshot) CloseWindow(ctx context.Context, h WindowHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == primaryWindow {
		return fmt.Errorf("refusing to close the primary window")
	}
	if !s.hasWindow(h) {
		return fmt.Errorf("%w: %s", ErrNoSuchWindow, h)
	}
	kept := s.windows[:0]
	for _, w := range s.windows {
		if w != h {
			kept = append(kept, w)
		}
	}
	s.windows = kept
	if s.current == h {
		s.current = primaryWindow
	}
	return nil
}

func (s *Snapshot) hasWindow(h WindowHandle) bool {
	for _, w := range s.windows {
		if w == h {
			return true
		}
	}
	return false
}

// OpenWindow simulates a popup and returns its handle
func (s *Snapshot) OpenWindow() WindowHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openWindowLocked()
}

func (s *Snapshot) openWindowLocked() WindowHandle {
	s.opened++
	h := WindowHandle(fmt.Sprintf("popup-%d", s.opened))
	s.windows = append(s.windows, h)
	return h
}

func (s *Snapshot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called
func (s *Snapshot) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Clicks returns the clicks performed so far
func (s *Snapshot) Clicks() []Click {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Click(nil), s.clicks...)
}

// Navigations returns every URL navigated to, in order
func (s *Snapshot) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

// Typed returns the text typed into the element matching l
func (s *Snapshot) Typed(l Lookup) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typed[l.String()]
}

// Submitted returns the lookups forms were submitted through
func (s *Snapshot) Submitted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.submitted...)
}

// SnapshotElement is an Element of a Snapshot document
type SnapshotElement struct {
	page *Snapshot
	sel  *goquery.Selection
}

func (e *SnapshotElement) Find(ctx context.Context, l Lookup) (Element, error) {
	return e.page.first(e.sel, l)
}

func (e *SnapshotElement) FindAll(ctx context.Context, l Lookup) ([]Element, error) {
	return e.page.all(e.sel, l), nil
}

func (e *SnapshotElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *SnapshotElement) Text(ctx context.Context) (string, error) {
	return e.sel.Text(), nil
}

// ID returns the element's id attribute, if any
func (e *SnapshotElement) ID() string {
	id, _ := e.sel.Attr("id")
	return id
}

func (e *SnapshotElement) Click(ctx context.Context) error {
	if e.page.OnClick != nil {
		if err := e.page.OnClick(e); err != nil {
			return err
		}
	}

	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.page.closed {
		return ErrBrowserClosed
	}

	e.page.clicks = append(e.page.clicks, Click{
		URL:  e.page.location,
		ID:   e.ID(),
		Text: strings.TrimSpace(e.sel.Text()),
	})

	if t, _ := e.sel.Attr("target"); goquery.NodeName(e.sel) == "a" && t == "_blank" {
		e.page.openWindowLocked()
	}
	return nil
}
