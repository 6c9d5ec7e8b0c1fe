package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")

	msgInvalidRequest = "invalid request"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details interface{}       `json:"details,omitempty"`
	Issues  map[string]string `json:"issues,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Server-side failures are logged and emitted on events.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(
	logger core.Logger,
	events *core.ErrorEvents,
	translator ut.Translator,
	signalShutdown func(),
) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := errorBody{Error: http.StatusText(http.StatusInternalServerError)}
		var kind core.ErrorKind

		if issues := core.ValidationIssues(err, translator); issues != nil {
			code = http.StatusBadRequest
			body = errorBody{Error: msgInvalidRequest, Issues: issues}
		} else {
			switch origErr := errors.Cause(err).(type) {
			case *echo.HTTPError:
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				body.Error = fmt.Sprint(origErr.Message)
			case *core.ValidationError:
				code = http.StatusBadRequest
				body.Error = origErr.Error()
			case *core.Error:
				kind = origErr.Kind
				code = origErr.HTTPStatus()
				body.Error = origErr.Message
				body.Details = origErr.Details
				if kind == core.InternalError {
					body.Error = origErr.Error()
				}
			default: // any other error is a server error
				kind = core.InternalError
				if ctx.Echo().Debug {
					body.Error = err.Error()
				}
				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if code >= http.StatusInternalServerError || kind == core.UpstreamFailure {
			usr, _ := getContextUser(ctx)
			logger.Error(fmt.Sprintf("%s %s: %v", ctx.Request().Method, ctx.Path(), err), errors.Wrap(err, body.Error), usr)
			events.Emit(core.ErrorEvent{
				Kind:    kind,
				Op:      ctx.Request().Method + " " + ctx.Path(),
				Message: body.Error,
				Status:  code,
				UserID:  usr.ID,
				Err:     err,
			})
		}

		// Send response
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
