package fragments

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/nacos/fs"
)

func newTestStore() *Store {
	return New(fstest.MapFS{
		"sections/dashboard.html": {Data: []byte("<section>\n    <h2>Dashboard</h2>\n\n    <p>hi</p>\n</section>\n")},
		"sections/help.md":        {Data: []byte("# Help\n\nPress **F5**.\n")},
		"sections/both.html":      {Data: []byte("<p>html</p>")},
		"sections/both.md":        {Data: []byte("markdown")},
		"sections/notes.txt":      {Data: []byte("ignored")},
	}, "sections")
}

func TestStore_Get(t *testing.T) {
	s := newTestStore()

	tests := []struct {
		name     string
		fragment string
		contains []string
		wantErr  error
	}{
		{name: "html is minified", fragment: "dashboard", contains: []string{"<h2>Dashboard</h2><p>hi"}},
		{name: "markdown is rendered", fragment: "help", contains: []string{`id=help-section`, "<h1", "<strong>F5</strong>"}},
		{name: "html wins over markdown", fragment: "both", contains: []string{"<p>html"}},
		{name: "unknown", fragment: "reports", wantErr: ErrNotFound},
		{name: "traversal", fragment: "../secrets", wantErr: ErrNotFound},
		{name: "uppercase", fragment: "Dashboard", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Get(tt.fragment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, string(out), c)
			}
		})
	}
}

func TestStore_Get_Memoized(t *testing.T) {
	s := newTestStore()

	first, err := s.Get("dashboard")
	require.NoError(t, err)
	s.fsys = fstest.MapFS{} // sources gone, rendered copy still served
	second, err := s.Get("dashboard")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStore_Names(t *testing.T) {
	names, err := newTestStore().Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"both", "dashboard", "help"}, names)
}

func TestEmbeddedSections(t *testing.T) {
	s := New(appfs.FS, "sections")
	for _, name := range []string{"sidebar", "dashboard", "complaints", "analytics", "reports", "settings", "help", "complaintform"} {
		out, err := s.Get(name)
		if assert.NoError(t, err, name) {
			assert.False(t, strings.TrimSpace(string(out)) == "", name)
		}
	}
}
