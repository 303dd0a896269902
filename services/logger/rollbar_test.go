package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/user"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), &core.Config{Env: "TEST"})

	err := errors.New("boom")
	extras := map[string]interface{}{"section": "dashboard"}
	args := l.prepare("failed", []interface{}{err, user.User{ID: "1"}, extras, user.User{ID: "2"}})

	// users are set as the rollbar person, never forwarded
	assert.Equal(t, []interface{}{"failed", err, extras}, args)
}

func TestRollbarLogger_print(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST"})

	l.Warn("loading took too long", map[string]interface{}{"section": "analytics"})
	assert.Contains(t, buf.String(), "loading took too long")
	assert.Contains(t, buf.String(), "analytics")
}

func TestRollbarLogger_printExtras(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST"})

	err := errors.New("boom")
	l.Info("navigation: page view", map[string]interface{}{"section": "complaints", "kind": "view"})
	l.Error("notify: loading Reports", err, map[string]interface{}{"stack": "a\nb", "location": "reports"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "navigation: page view kind=view section=complaints", lines[0])
	assert.Equal(t, `notify: loading Reports location=reports stack="a\nb"`, lines[1])
	assert.Equal(t, "boom", lines[2])
}
