package navigation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	AppName          = "NACOS Complaint System"
	RootSection      = "dashboard"
	NarrowBreakpoint = 768
	crumbSeparator   = " › "
)

var sectionTitles = map[string]string{
	"dashboard":     "Dashboard",
	"complaints":    "Complaints",
	"analytics":     "Analytics",
	"reports":       "Reports",
	"settings":      "Settings",
	"help":          "Help",
	"complaintform": "Submit a Complaint",
}

// SectionTitle is the human readable name of a section.
func SectionTitle(section string) string {
	if title, ok := sectionTitles[section]; ok {
		return title
	}
	words := strings.FieldsFunc(section, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// PageTitle is the document title shown while `section` is current.
func PageTitle(section string) string {
	return SectionTitle(section) + " - " + AppName
}

type Crumb struct {
	Label   string
	Section string
	Link    bool // false for the active crumb
}

// Breadcrumbs returns a single non-link crumb for the root section,
// and the root crumb followed by the active crumb otherwise.
func Breadcrumbs(section, root string) []Crumb {
	active := Crumb{Label: SectionTitle(section), Section: section}
	if section == root {
		return []Crumb{active}
	}
	return []Crumb{
		{Label: SectionTitle(root), Section: root, Link: true},
		active,
	}
}

// FormatBreadcrumbs joins crumbs with a chevron.
func FormatBreadcrumbs(crumbs []Crumb) string {
	labels := make([]string, len(crumbs))
	for i, c := range crumbs {
		labels[i] = c.Label
	}
	return strings.Join(labels, crumbSeparator)
}

// IsNarrow reports whether a viewport of `width` collapses the sidebar on navigation.
// A width <= 0 means unknown and is never narrow.
func IsNarrow(width, breakpoint int) bool {
	if breakpoint <= 0 {
		breakpoint = NarrowBreakpoint
	}
	return width > 0 && width < breakpoint
}
