package tui

import (
	"context"
	"sync"

	"github.com/trezcool/nacos/client/navigation"
)

// cellWidthPx approximates a terminal cell in CSS pixels, so the narrow viewport breakpoint keeps its meaning.
const cellWidthPx = 8

// Screen is the portal's view region, history and redirector.
// The navigation controller writes to it from any goroutine; the Bubble Tea model renders snapshots of it.
type Screen struct {
	mu          sync.Mutex
	cols, rows  int
	sidebar     []NavItem
	section     string
	content     string
	panels      map[string]string
	active      string
	title       string
	crumbs      []navigation.Crumb
	sidebarOpen bool
	loading     bool
	loadingMsg  string
	offset      int
	refresh     func(ctx context.Context)
	entries     []string
	pos         int
	redirect    string

	changes chan struct{}
}

var (
	_ navigation.View       = (*Screen)(nil)
	_ navigation.History    = (*Screen)(nil)
	_ navigation.Redirector = (*Screen)(nil)
)

func NewScreen() *Screen {
	return &Screen{
		sidebarOpen: true,
		panels:      make(map[string]string),
		pos:         -1,
		changes:     make(chan struct{}, 1),
	}
}

// Changes receives a value after any update. Updates are coalesced.
func (s *Screen) Changes() <-chan struct{} { return s.changes }

func (s *Screen) changed() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Screen) update(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.changed()
}

func (s *Screen) SetSize(cols, rows int) {
	s.update(func() { s.cols, s.rows = cols, rows })
}

func (s *Screen) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols * cellWidthPx
}

func (s *Screen) SetSidebar(markup string) {
	items := SidebarItems(markup)
	s.update(func() { s.sidebar = items })
}

func (s *Screen) SetContent(section, markup string) {
	text := RenderMarkup(markup)
	s.update(func() {
		s.section, s.content = section, text
	})
}

func (s *Screen) SetActive(section string) {
	s.update(func() { s.active = section })
}

func (s *Screen) SetTitle(title string) {
	s.update(func() { s.title = title })
}

func (s *Screen) SetBreadcrumbs(crumbs []navigation.Crumb) {
	s.update(func() { s.crumbs = crumbs })
}

func (s *Screen) SetSidebarOpen(open bool) {
	s.update(func() { s.sidebarOpen = open })
}

func (s *Screen) SetLoading(loading bool, msg string) {
	s.update(func() { s.loading, s.loadingMsg = loading, msg })
}

func (s *Screen) ScrollTop() {
	s.update(func() { s.offset = 0 })
}

func (s *Screen) Scroll(delta int) {
	s.update(func() {
		s.offset += delta
		if s.offset < 0 {
			s.offset = 0
		}
	})
}

func (s *Screen) BindSectionControls(section string, refresh func(ctx context.Context)) {
	s.update(func() { s.refresh = refresh })
}

// Refresh triggers the refresh control of the installed section. It reports false when none is bound.
func (s *Screen) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()
	if refresh == nil {
		return false
	}
	refresh(ctx)
	return true
}

// SetPanel sets the data a section controller rendered for `section`.
func (s *Screen) SetPanel(section, text string) {
	s.update(func() { s.panels[section] = text })
}

func (s *Screen) ClearPanel(section string) {
	s.update(func() { delete(s.panels, section) })
}

// Push records a navigation, dropping any forward entries.
func (s *Screen) Push(section string) {
	s.update(func() {
		s.entries = append(s.entries[:s.pos+1], section)
		s.pos = len(s.entries) - 1
	})
}

func (s *Screen) Replace(section string) {
	s.update(func() {
		if s.pos < 0 {
			s.entries = []string{section}
			s.pos = 0
			return
		}
		s.entries[s.pos] = section
	})
}

// Back moves one entry back in history and returns the section to replay.
func (s *Screen) Back() (string, bool) {
	return s.move(-1)
}

func (s *Screen) Forward() (string, bool) {
	return s.move(1)
}

func (s *Screen) move(delta int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.pos + delta
	if pos < 0 || pos >= len(s.entries) {
		return "", false
	}
	s.pos = pos
	return s.entries[pos], true
}

// Redirect leaves the portal for `page`; the model picks it up with TakeRedirect.
func (s *Screen) Redirect(page string) {
	s.update(func() {
		s.redirect = page
		s.entries, s.pos = nil, -1
	})
}

func (s *Screen) TakeRedirect() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := s.redirect
	s.redirect = ""
	return page, page != ""
}

// snapshot is a consistent copy of the screen for rendering.
type snapshot struct {
	cols, rows  int
	sidebar     []NavItem
	section     string
	content     string
	panel       string
	active      string
	title       string
	crumbs      []navigation.Crumb
	sidebarOpen bool
	loading     bool
	loadingMsg  string
	offset      int
	history     []string
}

func (s *Screen) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		cols:        s.cols,
		rows:        s.rows,
		sidebar:     append([]NavItem(nil), s.sidebar...),
		section:     s.section,
		content:     s.content,
		panel:       s.panels[s.section],
		active:      s.active,
		title:       s.title,
		crumbs:      append([]navigation.Crumb(nil), s.crumbs...),
		sidebarOpen: s.sidebarOpen,
		loading:     s.loading,
		loadingMsg:  s.loadingMsg,
		offset:      s.offset,
		history:     append([]string(nil), s.entries...),
	}
}
