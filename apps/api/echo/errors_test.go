package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/complaint"
	"github.com/trezcool/nacos/core/user"
	"github.com/trezcool/nacos/fragments"
)

type loggedError struct {
	msg  string
	args []interface{}
}

type errorLogger struct {
	errors []loggedError
}

func (l *errorLogger) Debug(string, ...interface{}) {}
func (l *errorLogger) Info(string, ...interface{})  {}
func (l *errorLogger) Warn(string, ...interface{})  {}
func (l *errorLogger) Error(msg string, args ...interface{}) {
	l.errors = append(l.errors, loggedError{msg: msg, args: args})
}
func (l *errorLogger) Fatal(string, ...interface{}) {}

func Test_appHTTPErrorHandler(t *testing.T) {
	_, translator := core.NewValidator()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
		wantLog  bool
	}{
		{
			name:     "complaint not found",
			err:      errors.Wrap(complaint.ErrNotFound, "updating complaint status"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"complaint not found"}`,
		},
		{
			name:     "user not found",
			err:      errors.Wrap(user.ErrNotFound, "finding user"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"user not found"}`,
		},
		{
			name:     "fragment not found",
			err:      fragments.ErrNotFound,
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"fragment not found"}`,
		},
		{
			name:     "http error",
			err:      errHTTPForbidden,
			wantCode: http.StatusForbidden,
			wantBody: `{"error":"permission denied"}`,
		},
		{
			name:     "field errors",
			err:      core.NewValidationError(nil, core.FieldError{Field: "subject", Error: "this field is required"}),
			wantCode: http.StatusBadRequest,
			wantBody: `{"subject":"this field is required"}`,
		},
		{
			name:     "server error",
			err:      errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Internal Server Error"}`,
			wantLog:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := new(errorLogger)
			var shutdown bool
			handler := newAppHTTPErrorHandler(logger, translator, func() { shutdown = true })

			e := echo.New()
			req := httptest.NewRequest(http.MethodPatch, "/api/complaints/42", nil)
			rec := httptest.NewRecorder()
			ctx := e.NewContext(req, rec)
			ctx.SetPath("/api/complaints/:id")

			handler(tt.err, ctx)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.False(t, shutdown)
			if !tt.wantLog {
				assert.Empty(t, logger.errors)
				return
			}
			if assert.Len(t, logger.errors, 1) {
				assert.Contains(t, logger.errors[0].args, map[string]interface{}{
					"method": http.MethodPatch,
					"path":   "/api/complaints/:id",
					"uri":    "/api/complaints/42",
				})
			}
		})
	}
}
