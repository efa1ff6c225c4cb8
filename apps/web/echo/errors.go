package echoweb

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/catalog"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/identity"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/payment"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// paymentErrorCodes maps payment failures a client can act on.
var paymentErrorCodes = map[error]int{
	payment.ErrCheckoutFailed: http.StatusBadGateway,
	payment.ErrNotFound:       http.StatusNotFound,
	payment.ErrNotOwner:       http.StatusForbidden,
	payment.ErrNotPaid:        http.StatusPaymentRequired,
	payment.ErrBadSignature:   http.StatusBadRequest,
}

func fieldErrorsMap(flds []core.FieldError) interface{} {
	if len(flds) == 1 && flds[0].Field == "" {
		return flds[0].Error
	}
	fldErrs := make(map[string]string, len(flds))
	for _, fErr := range flds {
		fldErrs[fErr.Field] = fErr.Error
	}
	return fldErrs
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// API calls get JSON, pages get the error template.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors, *core.ValidationError:
			flds, _ := core.FieldMessages(origErr, translator)
			code = http.StatusBadRequest
			message = fieldErrorsMap(flds)
		case *identity.Error:
			code = http.StatusBadRequest
			message = origErr.Message
		case *catalog.DomainNotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		default:
			if pCode, ok := paymentErrorCodes[cause]; ok {
				code = pCode
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			if sess, ok := contextSession(ctx); ok {
				logger.Error(msg, errors.Wrap(err, msg), sess)
			} else {
				logger.Error(msg, errors.Wrap(err, msg))
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		switch {
		case ctx.Request().Method == http.MethodHead: // Issue #608
			err = ctx.NoContent(code)
		case isAPIRequest(ctx):
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		default:
			err = ctx.Render(code, "error", newPage(ctx, http.StatusText(code), errorPage{Code: code, Message: message}))
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

type errorPage struct {
	Code    int
	Message interface{}
}
