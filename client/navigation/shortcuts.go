package navigation

import (
	"strconv"
	"strings"
)

type Action int

const (
	ActionNone Action = iota
	ActionNavigate
	ActionHelp
	ActionReload
)

// ShortcutSections are reached with Ctrl/Cmd+1..5.
var ShortcutSections = [5]string{"dashboard", "complaints", "analytics", "reports", "settings"}

type Shortcut struct {
	Action  Action
	Section string // set for ActionNavigate
}

type ShortcutHelp struct {
	Keys        string
	Description string
}

// terminals report Cmd as meta or alt, and Ctrl+/ as ctrl+_
var shortcutModifiers = []string{"ctrl+", "cmd+", "meta+", "alt+", "super+"}

// ResolveShortcut maps a key (as reported by the terminal, eg. "ctrl+2", "f5") to its Shortcut.
func ResolveShortcut(key string) (Shortcut, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "f5" {
		return Shortcut{Action: ActionReload}, true
	}
	for _, mod := range shortcutModifiers {
		if !strings.HasPrefix(key, mod) {
			continue
		}
		switch rest := strings.TrimPrefix(key, mod); rest {
		case "/", "_":
			return Shortcut{Action: ActionHelp}, true
		case "r":
			return Shortcut{Action: ActionReload}, true
		default:
			n, err := strconv.Atoi(rest)
			if err != nil || n < 1 || n > len(ShortcutSections) {
				return Shortcut{}, false
			}
			return Shortcut{Action: ActionNavigate, Section: ShortcutSections[n-1]}, true
		}
	}
	return Shortcut{}, false
}

// ShortcutsHelp lists the shortcuts for the help dialog.
func ShortcutsHelp() []ShortcutHelp {
	help := make([]ShortcutHelp, 0, len(ShortcutSections)+2)
	for i, s := range ShortcutSections {
		help = append(help, ShortcutHelp{
			Keys:        "Ctrl/Cmd+" + strconv.Itoa(i+1),
			Description: "Go to " + SectionTitle(s),
		})
	}
	help = append(help,
		ShortcutHelp{Keys: "Ctrl/Cmd+/", Description: "Show keyboard shortcuts"},
		ShortcutHelp{Keys: "F5, Ctrl/Cmd+R", Description: "Reload the current section"},
	)
	return help
}
