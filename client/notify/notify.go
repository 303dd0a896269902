// Package notify is the portal's notification and error surface:
// transient toasts for the user and structured error records for a logging sink.
package notify

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/nacos/core"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

const DefaultToastDuration = 5 * time.Second

// Toast is a message shown to the user until ExpiresAt.
type Toast struct {
	ID        int
	Kind      Kind
	Message   string
	ExpiresAt time.Time
}

// Record is what a reported error forwards to the logging sink.
type Record struct {
	Kind      string
	Message   string
	Stack     string
	Location  string
	Timestamp time.Time
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type Surface struct {
	logger   core.Logger
	duration time.Duration
	nowFunc  func() time.Time

	mu       sync.Mutex
	toasts   []Toast
	lastID   int
	onChange func()
}

// New returns a Surface logging to `logger`. A zero duration means DefaultToastDuration.
func New(logger core.Logger, duration time.Duration, nowFunc ...func() time.Time) *Surface {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	now := time.Now
	if len(nowFunc) > 0 && nowFunc[0] != nil {
		now = nowFunc[0]
	}
	return &Surface{
		logger:   logger,
		duration: duration,
		nowFunc:  now,
	}
}

// OnChange registers fn to be called after every new toast. fn must not call back into the Surface.
func (s *Surface) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Notify shows a toast that dismisses itself after the surface's toast duration.
func (s *Surface) Notify(kind Kind, msg string) {
	s.mu.Lock()
	s.lastID++
	s.toasts = append(s.toasts, Toast{
		ID:        s.lastID,
		Kind:      kind,
		Message:   msg,
		ExpiresAt: s.nowFunc().Add(s.duration),
	})
	s.prune()
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Active returns the toasts that have not expired yet, oldest first.
func (s *Surface) Active() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

func (s *Surface) Dismiss(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

func (s *Surface) prune() {
	now := s.nowFunc()
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
}

// ReportError shows a message derived from `context` (never the raw error)
// and forwards a Record to the logging sink.
func (s *Surface) ReportError(context string, err error) {
	if err == nil {
		return
	}
	rec := s.newRecord(context, err)
	s.logger.Error("notify: "+context, err, map[string]interface{}{
		"kind":      rec.Kind,
		"message":   rec.Message,
		"stack":     rec.Stack,
		"location":  rec.Location,
		"timestamp": rec.Timestamp,
	})
	s.Notify(KindError, UserMessage(context))
}

// Warn shows a warning toast and logs it. Used for advisory conditions such as the loading failsafe.
func (s *Surface) Warn(msg string) {
	s.logger.Warn("notify: " + msg)
	s.Notify(KindWarning, msg)
}

// Recover reports a panic as an error. Must be deferred directly:
//
//	defer surface.Recover("loading dashboard")
func (s *Surface) Recover(context string) {
	if r := recover(); r != nil {
		s.ReportError(context, PanicError(r))
	}
}

// PanicError turns a recovered value into an error carrying a stack trace.
func PanicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return errors.WithStack(err)
	}
	return errors.Errorf("panic: %v", r)
}

// UserMessage is the toast shown for an error reported with `context`.
func UserMessage(context string) string {
	context = strings.TrimSpace(context)
	if context == "" {
		return "An unexpected error occurred. Please try again."
	}
	return fmt.Sprintf("Error %s. Please try again.", context)
}

func (s *Surface) newRecord(context string, err error) Record {
	rec := Record{
		Kind:      kindOf(err),
		Message:   err.Error(),
		Location:  context,
		Timestamp: s.nowFunc().UTC(),
	}
	var st stackTracer
	if errors.As(err, &st) {
		rec.Stack = fmt.Sprintf("%+v", st.StackTrace())
		if frames := st.StackTrace(); len(frames) > 0 {
			rec.Location = fmt.Sprintf("%s (%v)", context, frames[0])
		}
	} else {
		buf := make([]byte, 4096)
		rec.Stack = string(buf[:runtime.Stack(buf, false)])
	}
	return rec
}

// kindOf names the concrete type at the root of err's chain, eg. "*gateway.HTTPError".
func kindOf(err error) string {
	return fmt.Sprintf("%T", errors.Cause(err))
}
