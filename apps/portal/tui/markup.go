package tui

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NavItem is a sidebar menu entry, read from the `data-section` attribute of the sidebar markup.
type NavItem struct {
	Section string
	Label   string
}

var blockAtoms = map[atom.Atom]bool{
	atom.Section: true, atom.Header: true, atom.Div: true, atom.P: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.Ul: true, atom.Ol: true,
	atom.Li: true, atom.Tr: true, atom.Table: true, atom.Label: true, atom.Figure: true,
	atom.Nav: true, atom.Main: true, atom.Pre: true, atom.Blockquote: true, atom.Br: true,
}

var headingAtoms = map[atom.Atom]bool{atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true}

// RenderMarkup turns a section fragment into terminal text.
// Headings are styled, table cells are separated with a bar, form controls become placeholders.
func RenderMarkup(markup string) string {
	var (
		out     strings.Builder
		line    strings.Builder
		heading bool
		skip    int // depth inside elements whose text is not shown
		cells   int
	)
	flush := func() {
		text := strings.Join(strings.Fields(line.String()), " ")
		line.Reset()
		cells = 0
		if text == "" {
			return
		}
		if heading {
			text = headingStyle.Render(text)
		}
		out.WriteString(text)
		out.WriteByte('\n')
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return strings.TrimRight(out.String(), "\n")

		case html.TextToken:
			if skip == 0 {
				line.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style, atom.Head, atom.Option:
				if tok.Type == html.StartTagToken {
					skip++
				}
				continue
			case atom.Td, atom.Th:
				if cells > 0 {
					line.WriteString(" │ ")
				}
				cells++
			case atom.Input, atom.Textarea:
				line.WriteString(" " + placeholder(tok) + " ")
			case atom.Select:
				line.WriteString(" [ ▾ ] ")
			case atom.Button:
				line.WriteString(" [")
			}
			if blockAtoms[tok.DataAtom] {
				flush()
				heading = headingAtoms[tok.DataAtom]
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style, atom.Head, atom.Option:
				if skip > 0 {
					skip--
				}
				continue
			case atom.Button:
				line.WriteString("] ")
			}
			if blockAtoms[tok.DataAtom] {
				flush()
				heading = false
			}
		}
	}
}

func placeholder(tok html.Token) string {
	for _, attr := range tok.Attr {
		if attr.Key == "placeholder" && attr.Val != "" {
			return "[" + attr.Val + "]"
		}
	}
	return "[______]"
}

// SidebarItems lists the menu entries of the sidebar markup, in order.
func SidebarItems(markup string) []NavItem {
	var items []NavItem
	current := -1
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return items

		case html.StartTagToken:
			tok := z.Token()
			for _, attr := range tok.Attr {
				if attr.Key == "data-section" && attr.Val != "" {
					items = append(items, NavItem{Section: attr.Val})
					current = len(items) - 1
				}
			}

		case html.TextToken:
			if current >= 0 {
				items[current].Label += string(z.Text())
			}

		case html.EndTagToken:
			if current >= 0 && z.Token().DataAtom == atom.Li {
				items[current].Label = strings.TrimSpace(items[current].Label)
				current = -1
			}
		}
	}
}
