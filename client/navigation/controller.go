// Package navigation is the portal's section navigation core: it owns the current section,
// drives the fragment cache and section lifecycles, and keeps history and the view in sync.
package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/nacos/client/gateway"
	"github.com/trezcool/nacos/client/notify"
	"github.com/trezcool/nacos/client/session"
	"github.com/trezcool/nacos/core"
)

const (
	DefaultLoadingTimeout = 30 * time.Second
	LoginPage             = "index.html"
	SidebarFragment       = "sidebar"

	sessionExpiredMessage = "Your session has expired, please log in again."
	loadingTimeoutMessage = "Loading is taking longer than expected. Please check your connection."
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Fetcher loads a section's markup from the server.
type Fetcher interface {
	Fragment(ctx context.Context, name string) (string, error)
}

type Notifier interface {
	ErrorReporter
	Notify(kind notify.Kind, msg string)
	Warn(msg string)
}

// View is the UI the controller paints into.
// The controller may call it from any goroutine and sometimes while holding its own lock,
// so implementations must not call back into the Controller synchronously.
type View interface {
	SetSidebar(markup string)
	SetContent(section, markup string)
	SetActive(section string)
	SetTitle(title string)
	SetBreadcrumbs(crumbs []Crumb)
	SetSidebarOpen(open bool)
	SetLoading(loading bool, msg string)
	ScrollTop()
	// BindSectionControls attaches the section scoped controls, eg. its refresh control.
	BindSectionControls(section string, refresh func(ctx context.Context))
	// Width of the viewport, <= 0 when unknown.
	Width() int
}

type History interface {
	Push(section string)
	Replace(section string)
}

type Redirector interface {
	Redirect(page string)
}

type Options struct {
	Fallback         string
	LoadingTimeout   time.Duration
	NarrowBreakpoint int
}

func (o *Options) setDefaults() {
	if o.Fallback == "" {
		o.Fallback = RootSection
	}
	if o.LoadingTimeout <= 0 {
		o.LoadingTimeout = DefaultLoadingTimeout
	}
	if o.NarrowBreakpoint <= 0 {
		o.NarrowBreakpoint = NarrowBreakpoint
	}
}

type Deps struct {
	Fetcher    Fetcher
	Cache      *Cache
	Registry   *Registry
	Notifier   Notifier
	View       View
	History    History
	Session    session.Store
	Redirector Redirector
	Clock      Clock
	Logger     core.Logger
}

// State is a snapshot of the navigation state.
type State struct {
	Current     string // "" until the first navigation
	SidebarOpen bool
	Loading     bool
}

type Controller struct {
	fetcher    Fetcher
	cache      *Cache
	registry   *Registry
	notifier   Notifier
	view       View
	history    History
	session    session.Store
	redirector Redirector
	clock      Clock
	logger     core.Logger
	opts       Options

	mu           sync.Mutex
	current      string
	sidebarOpen  bool
	loading      bool
	seq          int // id of the latest transition, the only one that drives the loading flag
	loadingTimer Timer
}

func New(deps Deps, opts Options) *Controller {
	opts.setDefaults()
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	return &Controller{
		fetcher:     deps.Fetcher,
		cache:       deps.Cache,
		registry:    deps.Registry,
		notifier:    deps.Notifier,
		view:        deps.View,
		history:     deps.History,
		session:     deps.Session,
		redirector:  deps.Redirector,
		clock:       deps.Clock,
		logger:      deps.Logger,
		opts:        opts,
		sidebarOpen: true,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Current:     c.current,
		SidebarOpen: c.sidebarOpen,
		Loading:     c.loading,
	}
}

func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Start redirects to the login page when the session lacks a token or a role.
// Otherwise it installs the sidebar and navigates to `initial` (the fallback section when empty).
func (c *Controller) Start(ctx context.Context, initial string) error {
	creds, err := c.session.Load()
	if err != nil {
		c.logger.Error("navigation: loading session", err)
	}
	if err != nil || !creds.Authenticated() {
		c.redirector.Redirect(LoginPage)
		return ErrNotAuthenticated
	}

	sidebar, err := c.fetcher.Fragment(ctx, SidebarFragment)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			c.ExpireSession(ctx)
			return ErrNotAuthenticated
		}
		c.notifier.ReportError("loading the sidebar", err)
	} else {
		c.view.SetSidebar(sidebar)
	}

	if initial == "" {
		initial = c.opts.Fallback
	}
	c.history.Replace(initial)
	c.NavigateTo(ctx, initial, false)
	return nil
}

// NavigateTo runs a whole transition to `target`. It never fails:
// errors are reported and the controller falls back to the fallback section.
func (c *Controller) NavigateTo(ctx context.Context, target string, addToHistory bool) {
	c.Begin(ctx, target, addToHistory).Complete(ctx)
}

// PopState replays a history entry.
func (c *Controller) PopState(ctx context.Context, section string) {
	c.NavigateTo(ctx, section, false)
}

// RefreshCurrent reloads the current section from the server.
func (c *Controller) RefreshCurrent(ctx context.Context) {
	if tr := c.BeginReload(ctx); tr != nil {
		tr.Complete(ctx)
	}
}

// BeginReload invalidates the current section and begins a transition to it.
// It returns nil before the first navigation.
func (c *Controller) BeginReload(ctx context.Context) *Transition {
	current := c.Current()
	if current == "" {
		return nil
	}
	c.cache.Invalidate(current)
	return c.Begin(ctx, current, false)
}

// RefreshSection invalidates the cached fragment of `section` and runs its Refresh hook.
func (c *Controller) RefreshSection(ctx context.Context, section string) {
	c.cache.Invalidate(section)
	c.registry.Refresh(ctx, section)
}

func (c *Controller) ToggleSidebar() {
	c.mu.Lock()
	c.sidebarOpen = !c.sidebarOpen
	open := c.sidebarOpen
	c.mu.Unlock()
	c.view.SetSidebarOpen(open)
}

// Logout clears the session and every cached fragment, then redirects to the login page.
func (c *Controller) Logout(ctx context.Context) {
	c.reset(ctx)
	c.redirector.Redirect(LoginPage)
}

// Transition is a navigation that has begun but whose content is not installed yet.
type Transition struct {
	c            *Controller
	target       string
	addToHistory bool
	seq          int
	err          error
}

func (t *Transition) Target() string { return t.target }

// Begin runs the synchronous part of a navigation: it raises the loading flag,
// cleans up the outgoing section, records `target` as current, updates the chrome and history.
// Complete must be called exactly once on the returned Transition.
func (c *Controller) Begin(ctx context.Context, target string, addToHistory bool) *Transition {
	tr := &Transition{c: c, target: target, addToHistory: addToHistory}
	tr.seq = c.startLoading("Loading " + SectionTitle(target) + "...")

	defer func() {
		if rec := recover(); rec != nil {
			tr.err = notify.PanicError(rec)
		}
	}()

	c.mu.Lock()
	prev := c.current
	c.mu.Unlock()
	if prev != "" && prev != target {
		c.registry.Cleanup(ctx, prev)
	}

	c.mu.Lock()
	c.current = target
	collapse := c.sidebarOpen && IsNarrow(c.view.Width(), c.opts.NarrowBreakpoint)
	if collapse {
		c.sidebarOpen = false
	}
	c.mu.Unlock()

	c.view.SetActive(target)
	c.view.SetTitle(PageTitle(target))
	c.view.SetBreadcrumbs(Breadcrumbs(target, c.opts.Fallback))
	if collapse {
		c.view.SetSidebarOpen(false)
	}

	if addToHistory {
		c.history.Push(target)
	}
	return tr
}

// Complete resolves the content of the transition, installs it and initialises the section.
// Overlapping transitions are not cancelled: the last one to resolve writes the view.
// A superseded transition still writes its content but skips the Init hook, since
// its section was already cleaned up by the newer Begin. Only the latest transition
// clears the loading flag.
func (t *Transition) Complete(ctx context.Context) {
	c := t.c
	err := t.err
	if err == nil {
		err = c.install(ctx, t.target)
	}
	c.stopLoading(t.seq)

	if err != nil {
		c.fail(ctx, t.target, err)
		return
	}
	c.view.ScrollTop()
	c.logger.Info("navigation: page view", map[string]interface{}{"section": t.target})
}

func (c *Controller) install(ctx context.Context, target string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = notify.PanicError(rec)
		}
	}()

	markup, err := c.resolve(ctx, target)
	if err != nil {
		return err
	}
	c.view.SetContent(target, markup)
	if target != c.Current() {
		return nil
	}
	c.registry.Init(ctx, target)
	c.view.BindSectionControls(target, func(ctx context.Context) {
		c.RefreshSection(ctx, target)
	})
	return nil
}

// resolve returns the cached fragment when still valid, else fetches and caches it.
func (c *Controller) resolve(ctx context.Context, target string) (string, error) {
	if c.cache.IsValid(target) {
		if markup, ok := c.cache.Get(target); ok {
			return markup, nil
		}
	}
	markup, err := c.fetcher.Fragment(ctx, target)
	if err != nil {
		return "", errors.Wrapf(err, "fetching %s", target)
	}
	c.cache.Put(target, markup)
	return markup, nil
}

func (c *Controller) fail(ctx context.Context, target string, err error) {
	if gateway.IsUnauthorized(err) {
		c.ExpireSession(ctx)
		return
	}
	c.notifier.ReportError("loading "+SectionTitle(target), err)
	if target != c.opts.Fallback {
		c.NavigateTo(ctx, c.opts.Fallback, true)
	}
}

// ExpireSession purges the credentials after the server rejected them, then redirects to the login page.
func (c *Controller) ExpireSession(ctx context.Context) {
	c.reset(ctx)
	c.notifier.Notify(notify.KindError, sessionExpiredMessage)
	c.redirector.Redirect(LoginPage)
}

func (c *Controller) reset(ctx context.Context) {
	if err := c.session.Clear(); err != nil {
		c.logger.Error("navigation: clearing session", err)
	}
	c.cache.InvalidateAll()

	c.mu.Lock()
	prev := c.current
	c.current = ""
	c.mu.Unlock()
	if prev != "" {
		c.registry.Cleanup(ctx, prev)
	}
}

func (c *Controller) startLoading(msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	seq := c.seq
	c.loading = true
	// the superseded transition no longer owns the flag, so its deadline goes with it
	if c.loadingTimer != nil {
		c.loadingTimer.Stop()
	}
	c.loadingTimer = c.clock.AfterFunc(c.opts.LoadingTimeout, func() { c.loadingTimedOut(seq) })
	c.view.SetLoading(true, msg)
	return seq
}

func (c *Controller) stopLoading(seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return
	}
	if c.loadingTimer != nil {
		c.loadingTimer.Stop()
		c.loadingTimer = nil
	}
	if c.loading {
		c.loading = false
		c.view.SetLoading(false, "")
	}
}

// loadingTimedOut forcibly clears the loading flag. The hung fetch keeps running.
func (c *Controller) loadingTimedOut(seq int) {
	c.mu.Lock()
	if seq != c.seq || !c.loading {
		c.mu.Unlock()
		return
	}
	c.loading = false
	c.loadingTimer = nil
	c.view.SetLoading(false, "")
	c.mu.Unlock()

	c.notifier.Warn(loadingTimeoutMessage)
}
