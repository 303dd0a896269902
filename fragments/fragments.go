// Package fragments serves the HTML fragments the portal loads into its content region.
// Fragments are authored as HTML or markdown, rendered once, minified and memoized.
package fragments

import (
	"bytes"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
)

const mimeHTML = "text/html"

var (
	ErrNotFound = errors.New("fragment not found")

	nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

type Store struct {
	fsys fs.FS
	dir  string
	md   goldmark.Markdown
	min  *minify.M

	mu       sync.RWMutex
	rendered map[string][]byte
}

// New returns a Store reading sources from `dir` within fsys.
func New(fsys fs.FS, dir string) *Store {
	m := minify.New()
	m.AddFunc(mimeHTML, html.Minify)

	return &Store{
		fsys: fsys,
		dir:  dir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(mdhtml.WithUnsafe()),
		),
		min:      m,
		rendered: make(map[string][]byte),
	}
}

// Get returns the minified markup of the named fragment (without extension).
// `<name>.html` wins over `<name>.md` when both exist.
func (s *Store) Get(name string) ([]byte, error) {
	if !nameRegex.MatchString(name) {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	out, ok := s.rendered[name]
	s.mu.RUnlock()
	if ok {
		return out, nil
	}

	out, err := s.render(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.rendered[name] = out
	s.mu.Unlock()
	return out, nil
}

// Names lists every available fragment, sorted.
func (s *Store) Names() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading fragments dir")
	}
	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || !(ext == ".html" || ext == ".md") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) render(name string) ([]byte, error) {
	src, err := fs.ReadFile(s.fsys, path.Join(s.dir, name+".html"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "reading %s.html", name)
		}
		src, err = s.renderMarkdown(name)
		if err != nil {
			return nil, err
		}
	}

	out, err := s.min.Bytes(mimeHTML, src)
	if err != nil {
		return nil, errors.Wrapf(err, "minifying %s", name)
	}
	return out, nil
}

func (s *Store) renderMarkdown(name string) ([]byte, error) {
	src, err := fs.ReadFile(s.fsys, path.Join(s.dir, name+".md"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "reading %s.md", name)
	}

	var buf bytes.Buffer
	buf.WriteString(`<section class="section" id="` + name + `-section">`)
	if err := s.md.Convert(src, &buf); err != nil {
		return nil, errors.Wrapf(err, "rendering %s.md", name)
	}
	buf.WriteString(`</section>`)
	return buf.Bytes(), nil
}
