// internal/browser/session.go
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/ratelimit"
)

// SessionOptions configures a live Chrome session
type SessionOptions struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Proxy      string
	// Timeout bounds every single browser call
	Timeout   time.Duration
	Limiter   ratelimit.Limiter
	ExtraArgs []chromedp.ExecAllocatorOption
}

// Session is a Page backed by a single Chrome instance driven over CDP.
//
// Elements are held as runtime object handles, which stay valid until the page
// navigates away. Popup windows show up as extra page targets.
type Session struct {
	allocCancel context.CancelFunc
	rootCtx     context.Context
	rootCancel  context.CancelFunc
	primary     WindowHandle

	mu       sync.Mutex
	current  context.Context
	handle   WindowHandle
	attached map[WindowHandle]context.Context
	tabs     map[WindowHandle]context.CancelFunc
	closed   bool

	timeout time.Duration
	limiter ratelimit.Limiter
}

type chromeFlag struct {
	name  string
	value any
}

// chromeFlags are passed to every launched browser. Point banners open in new
// windows, so the popup blocker stays off.
var chromeFlags = []chromeFlag{
	{"disable-popup-blocking", true},
	{"disable-dev-shm-usage", true},
	{"disable-background-networking", true},
	{"disable-breakpad", true},
	{"disable-client-side-phishing-detection", true},
	{"disable-default-apps", true},
	{"disable-hang-monitor", true},
	{"disable-prompt-on-repost", true},
	{"disable-sync", true},
	{"disable-translate", true},
	{"metrics-recording-only", true},
	{"mute-audio", true},
	{"log-level", "3"},
	{"disable-blink-features", "AutomationControlled"},
	{"disable-infobars", true},
}

// NewSession launches Chrome and opens the primary tab
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(1366, 900),
	}
	for _, f := range chromeFlags {
		allocOpts = append(allocOpts, chromedp.Flag(f.name, f.value))
	}

	if chromePath := FindChrome(opts.ChromePath); chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	allocOpts = append(allocOpts, opts.ExtraArgs...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	rootCtx, rootCancel := chromedp.NewContext(allocCtx)

	// Start the browser and the first tab
	if err := chromedp.Run(rootCtx, chromedp.Navigate("about:blank")); err != nil {
		rootCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	primary := WindowHandle(chromedp.FromContext(rootCtx).Target.TargetID)

	log.Debug().
		Str("window", string(primary)).
		Bool("headless", opts.Headless).
		Msg("Browser session started")

	return &Session{
		allocCancel: allocCancel,
		rootCtx:     rootCtx,
		rootCancel:  rootCancel,
		primary:     primary,
		current:     rootCtx,
		handle:      primary,
		attached:    map[WindowHandle]context.Context{primary: rootCtx},
		tabs:        map[WindowHandle]context.CancelFunc{primary: rootCancel},
		timeout:     opts.Timeout,
		limiter:     opts.Limiter,
	}, nil
}

// run executes actions on the current tab, bounded by the session timeout and
// cancelled together with the caller's context
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrBrowserClosed
	}
	tab := s.current
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(tab, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the current window and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx, url); err != nil {
		return fmt.Errorf("navigation to %s rate limited: %w", url, err)
	}
	log.Debug().Str("url", url).Msg("Navigating")
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Location returns the current URL
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Evaluate runs script in the current window
func (s *Session) Evaluate(ctx context.Context, script string, res any) error {
	return s.run(ctx, chromedp.Evaluate(script, res))
}

// Find returns the first element in the document matching l
func (s *Session) Find(ctx context.Context, l Lookup) (Element, error) {
	return s.evalElement(ctx, fmt.Sprintf("document.querySelector(%s)", jsString(l.Query())), l)
}

// FindAll returns all elements in the document matching l
func (s *Session) FindAll(ctx context.Context, l Lookup) ([]Element, error) {
	list := fmt.Sprintf("document.querySelectorAll(%s)", jsString(l.Query()))

	var n int
	if err := s.run(ctx, chromedp.Evaluate(list+".length", &n)); err != nil {
		return nil, err
	}

	elems := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		el, err := s.evalElement(ctx, fmt.Sprintf("%s[%d]", list, i), l)
		if err != nil {
			// The list shrank under us; keep what we have
			log.Debug().Err(err).Str("lookup", l.String()).Int("index", i).Msg("Element vanished during FindAll")
			break
		}
		elems = append(elems, el)
	}
	return elems, nil
}

func (s *Session) evalElement(ctx context.Context, expr string, l Lookup) (Element, error) {
	var obj *runtime.RemoteObject
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, exc, err := runtime.Evaluate(expr).Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exceptionError(exc)
		}
		obj = res
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.ObjectID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, l)
	}
	return &remoteElement{s: s, obj: obj.ObjectID, lookup: l}, nil
}

// SendKeys types text into the element matching l
func (s *Session) SendKeys(ctx context.Context, l Lookup, text string) error {
	if _, err := s.Find(ctx, l); err != nil {
		return err
	}
	return s.run(ctx, chromedp.SendKeys(l.Query(), text, chromedp.ByQuery))
}

// Submit submits the form containing the element matching l
func (s *Session) Submit(ctx context.Context, l Lookup) error {
	if _, err := s.Find(ctx, l); err != nil {
		return err
	}
	return s.run(ctx, chromedp.Submit(l.Query(), chromedp.ByQuery))
}

// Windows lists the open page targets, primary first
func (s *Session) Windows(ctx context.Context) ([]WindowHandle, error) {
	if s.isClosed() {
		return nil, ErrBrowserClosed
	}

	infos, err := chromedp.Targets(s.rootCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}

	handles := []WindowHandle{s.primary}
	for _, info := range infos {
		if info.Type != "page" || WindowHandle(info.TargetID) == s.primary {
			continue
		}
		handles = append(handles, WindowHandle(info.TargetID))
	}
	return handles, nil
}

// CurrentWindow returns the handle commands are currently sent to
func (s *Session) CurrentWindow(ctx context.Context) (WindowHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrBrowserClosed
	}
	return s.handle, nil
}

// SwitchWindow directs subsequent commands to h and brings it to the front
func (s *Session) SwitchWindow(ctx context.Context, h WindowHandle) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrBrowserClosed
	}

	tabCtx, ok := s.attached[h]
	if !ok {
		var cancel context.CancelFunc
		tabCtx, cancel = chromedp.NewContext(s.rootCtx, chromedp.WithTargetID(target.ID(h)))
		s.attached[h] = tabCtx
		s.tabs[h] = cancel
	}
	s.current = tabCtx
	s.handle = h
	s.mu.Unlock()

	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return target.ActivateTarget(target.ID(h)).Do(ctx)
	}))
}

// CloseWindow closes a non-primary window.
// If it was the current window, commands go back to the primary one.
func (s *Session) CloseWindow(ctx context.Context, h WindowHandle) error {
	if h == s.primary {
		return fmt.Errorf("refusing to close the primary window")
	}

	err := s.runRoot(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return target.CloseTarget(target.ID(h)).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoSuchWindow, h, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.tabs[h]; ok {
		cancel()
		delete(s.tabs, h)
	}
	if tabCtx, ok := s.attached[h]; ok {
		if s.current == tabCtx {
			s.current = s.rootCtx
			s.handle = s.primary
		}
		delete(s.attached, h)
	}
	return nil
}

// runRoot executes actions on the primary tab regardless of the current window
func (s *Session) runRoot(ctx context.Context, actions ...chromedp.Action) error {
	if s.isClosed() {
		return ErrBrowserClosed
	}
	runCtx, cancel := context.WithTimeout(s.rootCtx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Close shuts down every tab, the browser and the allocator. Safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for h, cancel := range s.tabs {
		if h != s.primary {
			cancel()
		}
	}
	s.rootCancel()
	s.allocCancel()

	log.Debug().Msg("Browser session closed")
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// remoteElement is an Element held as a runtime object handle
type remoteElement struct {
	s      *Session
	obj    runtime.RemoteObjectID
	lookup Lookup
}

// callParams binds fn to obj
func callParams(obj runtime.RemoteObjectID, fn string, byValue bool) *runtime.CallFunctionOnParams {
	return runtime.CallFunctionOn(fn).
		WithObjectID(obj).
		WithReturnByValue(byValue)
}

// clickParams clicks obj as if the user did, so links opening a new window
// get past the popup blocker
func clickParams(obj runtime.RemoteObjectID) *runtime.CallFunctionOnParams {
	return callParams(obj, "function(){this.click()}", true).WithUserGesture(true)
}

// call runs fn with this bound to the element
func (e *remoteElement) call(ctx context.Context, fn string, byValue bool) (*runtime.RemoteObject, error) {
	return e.invoke(ctx, callParams(e.obj, fn, byValue))
}

func (e *remoteElement) invoke(ctx context.Context, p *runtime.CallFunctionOnParams) (*runtime.RemoteObject, error) {
	var obj *runtime.RemoteObject
	err := e.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, exc, err := p.Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exceptionError(exc)
		}
		obj = res
		return nil
	}))
	return obj, err
}

func (e *remoteElement) callValue(ctx context.Context, fn string, out any) error {
	res, err := e.call(ctx, fn, true)
	if err != nil {
		return err
	}
	if res == nil || len(res.Value) == 0 {
		return nil
	}
	return json.Unmarshal(res.Value, out)
}

func (e *remoteElement) Find(ctx context.Context, l Lookup) (Element, error) {
	res, err := e.call(ctx, fmt.Sprintf("function(){return this.querySelector(%s)}", jsString(l.Query())), false)
	if err != nil {
		return nil, err
	}
	if res == nil || res.ObjectID == "" {
		return nil, fmt.Errorf("%w: %s within %s", ErrNoSuchElement, l, e.lookup)
	}
	return &remoteElement{s: e.s, obj: res.ObjectID, lookup: l}, nil
}

func (e *remoteElement) FindAll(ctx context.Context, l Lookup) ([]Element, error) {
	sel := jsString(l.Query())

	var n int
	if err := e.callValue(ctx, fmt.Sprintf("function(){return this.querySelectorAll(%s).length}", sel), &n); err != nil {
		return nil, err
	}

	elems := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		res, err := e.call(ctx, fmt.Sprintf("function(){return this.querySelectorAll(%s)[%d] || null}", sel, i), false)
		if err != nil || res == nil || res.ObjectID == "" {
			break
		}
		elems = append(elems, &remoteElement{s: e.s, obj: res.ObjectID, lookup: l})
	}
	return elems, nil
}

// attributeScript reads name from the markup, except "value", which reads the
// live property of form fields so script-set values are seen
func attributeScript(name string) string {
	if name == "value" {
		return `function(){if ('value' in this && (this instanceof HTMLInputElement || this instanceof HTMLTextAreaElement || this instanceof HTMLSelectElement)) {return String(this.value)} return this.hasAttribute('value') ? this.getAttribute('value') : null}`
	}
	return fmt.Sprintf("function(){return this.hasAttribute(%[1]s) ? this.getAttribute(%[1]s) : null}", jsString(name))
}

func (e *remoteElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	var v *string
	if err := e.callValue(ctx, attributeScript(name), &v); err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *remoteElement) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.callValue(ctx, "function(){return this.innerText || this.textContent || ''}", &text); err != nil {
		return "", err
	}
	return text, nil
}

// Click dispatches a DOM click, which works for occluded or off-screen elements
func (e *remoteElement) Click(ctx context.Context) error {
	_, err := e.invoke(ctx, clickParams(e.obj))
	return err
}

func exceptionError(exc *runtime.ExceptionDetails) error {
	if exc.Exception != nil && exc.Exception.Description != "" {
		return fmt.Errorf("script exception: %s", exc.Exception.Description)
	}
	return fmt.Errorf("script exception: %s", exc.Text)
}

// jsString renders s as a JavaScript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
