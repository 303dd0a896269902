package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/complaint"
	"github.com/trezcool/nacos/core/user"
	"github.com/trezcool/nacos/fragments"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHTTPForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHTTPNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// notFoundErrors are domain lookups that answer 404 wherever they surface.
var notFoundErrors = []error{complaint.ErrNotFound, user.ErrNotFound, fragments.ErrNotFound}

func isNotFound(err error) bool {
	cause := errors.Cause(err)
	for _, nf := range notFoundErrors {
		if cause == nf {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Bodies are either `{"error": msg}` or a `{field: msg}` map, the two shapes the portal gateway decodes.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message := http.StatusInternalServerError, interface{}(nil)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code, message = http.StatusUnauthorized, origErr.Message
				break
			}
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
			code, message = origErr.Code, origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code, message = http.StatusBadRequest, fldErrs
		case *core.ValidationError:
			code, message = http.StatusBadRequest, origErr.Error()
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			}
		default:
			if isNotFound(origErr) {
				code, message = http.StatusNotFound, origErr.Error()
				break
			}
			// any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), requestUser(ctx), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Path(),
				"uri":    ctx.Request().RequestURI,
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// requestUser identifies the caller for error reports. Anonymous complaint submissions yield a zero User.
func requestUser(ctx echo.Context) user.User {
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID = claims.Subject
		usr.Username = claims.Username
		usr.Email = claims.Email
	}
	return usr
}
