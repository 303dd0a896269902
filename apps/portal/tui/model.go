// Package tui is the terminal portal: a Bubble Tea program driving the navigation controller.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/trezcool/nacos/client/gateway"
	"github.com/trezcool/nacos/client/navigation"
	"github.com/trezcool/nacos/client/notify"
	"github.com/trezcool/nacos/client/session"
)

const (
	toastTick          = time.Second
	studentHomeSection = "complaintform"
)

type mode int

const (
	modeStarting mode = iota
	modeLogin
	modePortal
)

// Authenticator logs users in. Satisfied by *gateway.Client.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (gateway.LoginResult, error)
}

type Deps struct {
	Controller *navigation.Controller
	Screen     *Screen
	Notifier   *notify.Surface
	Session    session.Store
	Auth       Authenticator
	Initial    string // first section, "" for the default
}

// Messages

type (
	screenChangedMsg struct{}
	toastTickMsg     struct{}
	startedMsg       struct{ err error }
	transitionMsg    struct{ section string }
	loginMsg         struct {
		creds session.Credentials
		err   error
	}
)

// Model is the Bubble Tea model of the portal.
type Model struct {
	ctx      context.Context
	ctrl     *navigation.Controller
	screen   *Screen
	notifier *notify.Surface
	store    session.Store
	auth     Authenticator
	initial  string

	mode      mode
	username  textinput.Model
	password  textinput.Model
	loginErr  string
	loggingIn bool
	spinner   spinner.Model
	cursor    int
	showHelp  bool
	quitting  bool
}

func NewModel(ctx context.Context, deps Deps) Model {
	uname := textinput.New()
	uname.Placeholder = "Username or email"
	uname.CharLimit = 150

	pwd := textinput.New()
	pwd.Placeholder = "Password"
	pwd.EchoMode = textinput.EchoPassword
	pwd.EchoCharacter = '•'

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		ctrl:     deps.Controller,
		screen:   deps.Screen,
		notifier: deps.Notifier,
		store:    deps.Session,
		auth:     deps.Auth,
		initial:  deps.Initial,
		username: uname,
		password: pwd,
		spinner:  s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForChange(), m.start(), tickToasts())
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.screen.Changes()
	return func() tea.Msg {
		<-changes
		return screenChangedMsg{}
	}
}

func tickToasts() tea.Cmd {
	return tea.Tick(toastTick, func(time.Time) tea.Msg { return toastTickMsg{} })
}

// start boots the navigation controller: it redirects to login when the session is missing.
func (m Model) start() tea.Cmd {
	ctrl, ctx, initial, store := m.ctrl, m.ctx, m.initial, m.store
	return func() tea.Msg {
		if initial == "" {
			if creds, err := store.Load(); err == nil && creds.Role != "" && creds.Role != "admin" {
				initial = studentHomeSection
			}
		}
		return startedMsg{err: ctrl.Start(ctx, initial)}
	}
}

func (m Model) login() tea.Cmd {
	auth, store, ctx := m.auth, m.store, m.ctx
	uname, pwd := strings.TrimSpace(m.username.Value()), m.password.Value()
	return func() tea.Msg {
		res, err := auth.Login(ctx, uname, pwd)
		if err != nil {
			return loginMsg{err: err}
		}
		creds := session.Credentials{Role: res.Role, Username: res.Username, Token: res.Token}
		if err := store.Save(creds); err != nil {
			return loginMsg{err: errors.Wrap(err, "saving session")}
		}
		return loginMsg{creds: creds}
	}
}

// navigate begins the transition on the event loop, so the cleanup of the outgoing section
// happens before any later navigation begins, and completes it in a command.
func (m Model) navigate(section string, addToHistory bool) tea.Cmd {
	tr := m.ctrl.Begin(m.ctx, section, addToHistory)
	return m.complete(tr)
}

func (m Model) complete(tr *navigation.Transition) tea.Cmd {
	if tr == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		tr.Complete(ctx)
		return transitionMsg{section: tr.Target()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.screen.SetSize(msg.Width, msg.Height)
		return m, nil

	case screenChangedMsg:
		if _, ok := m.screen.TakeRedirect(); ok {
			m = m.toLogin()
			focus := m.username.Focus()
			return m, tea.Batch(m.waitForChange(), focus)
		}
		return m, m.waitForChange()

	case toastTickMsg:
		return m, tickToasts()

	case startedMsg:
		if msg.err != nil {
			m = m.toLogin()
			focus := m.username.Focus()
			return m, focus
		}
		if creds, err := m.store.Load(); err != nil || !creds.Authenticated() {
			m = m.toLogin() // the session expired while starting
			focus := m.username.Focus()
			return m, focus
		}
		m.mode = modePortal
		return m, nil

	case loginMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.loginErr = loginErrorMessage(msg.err)
			return m, nil
		}
		m.loginErr = ""
		m.password.SetValue("")
		m.mode = modeStarting
		m.notifier.Notify(notify.KindSuccess, "Welcome back, "+msg.creds.Username+"!")
		return m, m.start()

	case transitionMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeLogin:
			return m.updateLogin(msg)
		case modePortal:
			return m.updatePortal(msg)
		}
	}
	return m, nil
}

func (m Model) toLogin() Model {
	m.mode = modeLogin
	m.showHelp = false
	m.password.SetValue("")
	m.password.Blur()
	return m
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return m.switchField()

	case "enter":
		if m.username.Focused() {
			return m.switchField()
		}
		if m.loggingIn {
			return m, nil
		}
		if strings.TrimSpace(m.username.Value()) == "" || m.password.Value() == "" {
			m.loginErr = "Username and password are required."
			return m, nil
		}
		m.loggingIn = true
		return m, m.login()

	case "esc":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updatePortal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if sc, ok := navigation.ResolveShortcut(key); ok {
		switch sc.Action {
		case navigation.ActionNavigate:
			m.showHelp = false
			return m, m.navigate(sc.Section, true)
		case navigation.ActionHelp:
			m.showHelp = !m.showHelp
			return m, nil
		case navigation.ActionReload:
			return m, m.complete(m.ctrl.BeginReload(m.ctx))
		}
	}

	if m.showHelp {
		if key == "esc" || key == "?" || key == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	items := m.screen.snapshot().sidebar
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "tab", "ctrl+b":
		m.ctrl.ToggleSidebar()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(items) {
			return m, m.navigate(items[m.cursor].Section, true)
		}
	case "pgdown", "ctrl+d":
		m.screen.Scroll(10)
	case "pgup", "ctrl+u":
		m.screen.Scroll(-10)
	case "alt+left", "backspace":
		if section, ok := m.screen.Back(); ok {
			return m, m.navigate(section, false)
		}
	case "alt+right":
		if section, ok := m.screen.Forward(); ok {
			return m, m.navigate(section, false)
		}
	case "r":
		ctx, screen := m.ctx, m.screen
		return m, func() tea.Msg {
			screen.Refresh(ctx)
			return nil
		}
	case "L":
		ctrl, ctx := m.ctrl, m.ctx
		return m, func() tea.Msg {
			ctrl.Logout(ctx)
			return nil
		}
	}
	return m, nil
}

func (m Model) switchField() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.username.Focused() {
		m.username.Blur()
		cmd = m.password.Focus()
	} else {
		m.password.Blur()
		cmd = m.username.Focus()
	}
	return m, cmd
}

func loginErrorMessage(err error) string {
	var httpErr *gateway.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Message
	case gateway.IsNetworkError(err):
		return "Cannot reach the server. Please check your connection."
	default:
		return gateway.GenericErrorMessage
	}
}

// View

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var body string
	switch m.mode {
	case modeLogin:
		body = m.viewLogin()
	case modePortal:
		body = m.viewPortal()
	default:
		body = m.spinner.View() + " Starting..."
	}
	if toasts := m.viewToasts(); toasts != "" {
		body += "\n\n" + toasts
	}
	return body
}

func (m Model) viewLogin() string {
	lines := []string{
		titleStyle.Render(navigation.AppName),
		"",
		m.username.View(),
		m.password.View(),
		"",
	}
	switch {
	case m.loggingIn:
		lines = append(lines, m.spinner.View()+" Logging in...")
	case m.loginErr != "":
		lines = append(lines, toastStyles["error"].Render(m.loginErr))
	default:
		lines = append(lines, mutedStyle.Render("tab: switch field • enter: login • esc: quit"))
	}
	return loginStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewPortal() string {
	snap := m.screen.snapshot()

	header := titleStyle.Render(snap.title)
	crumbs := crumbStyle.Render(navigation.FormatBreadcrumbs(snap.crumbs))
	status := " "
	if snap.loading {
		status = loadingStyle.Render(m.spinner.View() + " " + snap.loadingMsg)
	}

	content := snap.content
	if snap.panel != "" {
		content += "\n\n" + snap.panel
	}
	content = scroll(content, snap.offset)
	if m.showHelp {
		content = viewHelp()
	}

	main := contentStyle.Render(content)
	if snap.sidebarOpen {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(snap), main)
	}

	footer := mutedStyle.Render("↑/↓ enter: open • tab: sidebar • r: refresh • alt+←/→: back/forward • ctrl+/: help • L: logout • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, crumbs, status, main, "", footer)
}

func (m Model) viewSidebar(snap snapshot) string {
	lines := make([]string, 0, len(snap.sidebar))
	for i, item := range snap.sidebar {
		style := navItemStyle
		if item.Section == snap.active {
			style = activeNavItemStyle
		}
		label := style.Render(item.Label)
		if i == m.cursor {
			label = cursorStyle.Render(item.Label)
		}
		lines = append(lines, label)
	}
	if len(lines) == 0 {
		lines = append(lines, mutedStyle.Render("(no menu)"))
	}
	return sidebarStyle.Render(strings.Join(lines, "\n"))
}

func viewHelp() string {
	lines := []string{headingStyle.Render("Keyboard shortcuts"), ""}
	for _, h := range navigation.ShortcutsHelp() {
		lines = append(lines, fmt.Sprintf("%-16s %s", h.Keys, h.Description))
	}
	lines = append(lines, "", mutedStyle.Render("esc: close"))
	return helpStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewToasts() string {
	if m.notifier == nil {
		return ""
	}
	toasts := m.notifier.Active()
	lines := make([]string, len(toasts))
	for i, t := range toasts {
		style, ok := toastStyles[string(t.Kind)]
		if !ok {
			style = toastStyles["info"]
		}
		lines[i] = style.Render("● " + t.Message)
	}
	return strings.Join(lines, "\n")
}

func scroll(text string, offset int) string {
	if offset <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	if offset >= len(lines) {
		offset = len(lines) - 1
	}
	return strings.Join(lines[offset:], "\n")
}
