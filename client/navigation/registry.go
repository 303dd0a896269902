package navigation

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/nacos/client/notify"
	"github.com/trezcool/nacos/core"
)

// Hook is a section lifecycle callback.
type Hook func(ctx context.Context) error

// Lifecycle holds a section controller's optional hooks. A nil hook is a no-op.
type Lifecycle struct {
	Init    Hook
	Cleanup Hook
	Refresh Hook
}

// RenderError is reported when a section's Init or Refresh hook fails.
type RenderError struct {
	Section string
	Hook    string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Section, e.Hook, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the hook's own error.
func (e *RenderError) Cause() error { return e.Err }

type ErrorReporter interface {
	ReportError(context string, err error)
}

// Registry maps section names to their Lifecycle.
// Every hook runs inside its own failure boundary and never propagates an error to the caller.
type Registry struct {
	reporter ErrorReporter
	logger   core.Logger

	mu    sync.RWMutex
	hooks map[string]Lifecycle
}

func NewRegistry(reporter ErrorReporter, logger core.Logger) *Registry {
	return &Registry{
		reporter: reporter,
		logger:   logger,
		hooks:    make(map[string]Lifecycle),
	}
}

// Register replaces any previous Lifecycle of `section`.
func (r *Registry) Register(section string, lc Lifecycle) {
	r.mu.Lock()
	r.hooks[section] = lc
	r.mu.Unlock()
}

func (r *Registry) lookup(section string) Lifecycle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hooks[section]
}

// Init runs the section's Init hook. Failures are reported to the user.
func (r *Registry) Init(ctx context.Context, section string) {
	if err := run(ctx, r.lookup(section).Init); err != nil {
		r.reporter.ReportError("initialising "+section, &RenderError{Section: section, Hook: "init", Err: err})
	}
}

// Refresh runs the section's Refresh hook. Failures are reported to the user.
func (r *Registry) Refresh(ctx context.Context, section string) {
	if err := run(ctx, r.lookup(section).Refresh); err != nil {
		r.reporter.ReportError("refreshing "+section, &RenderError{Section: section, Hook: "refresh", Err: err})
	}
}

// Cleanup runs the section's Cleanup hook. Failures are only logged.
func (r *Registry) Cleanup(ctx context.Context, section string) {
	if err := run(ctx, r.lookup(section).Cleanup); err != nil {
		r.logger.Warn("navigation: cleaning up "+section, err)
	}
}

func run(ctx context.Context, hook Hook) (err error) {
	if hook == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = notify.PanicError(rec)
		}
	}()
	return errors.WithStack(hook(ctx))
}
