package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/service"
)

// Success envelope: {statusCode, data, message, success:true}.
type successEnvelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// Error envelope: {statusCode, message, success:false}.
type errorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, successEnvelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// ErrorHandler is the single catch-all that turns every failure leaving a
// handler — returned domain errors, echo framework errors, and panics
// surfaced by the Recover middleware — into the uniform error envelope.
// Install it as echo's HTTPErrorHandler; handlers themselves never build
// error responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var de *service.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &de):
		status = statusFor(de.Kind)
		message = de.Message
	case errors.As(err, &he):
		status = he.Code
		if s, ok := he.Message.(string); ok {
			message = s
		} else {
			message = http.StatusText(he.Code)
		}
	}

	if err := c.JSON(status, errorEnvelope{StatusCode: status, Message: message, Success: false}); err != nil {
		c.Logger().Error(err)
	}
}

// statusFor maps domain error kinds onto HTTP statuses.  The mapping lives
// here because only the transport layer speaks HTTP.
func statusFor(k service.Kind) int {
	switch k {
	case service.KindBadRequest:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
