package credstore

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	session "github.com/goliatone/go-session"
)

const (
	textCodeUserNotFound       = "USER_NOT_FOUND"
	textCodeEmailTaken         = "EMAIL_TAKEN"
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
	textCodeMissingToken       = "MISSING_TOKEN"
)

// ErrUserNotFound is returned when no user matches the lookup
var ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailTaken is returned on signup with a registered email
var ErrEmailTaken = goerrors.New("User already exists", goerrors.CategoryConflict).
	WithTextCode(textCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = goerrors.New("Invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for an expired bearer token
var ErrTokenExpired = goerrors.New("Token expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for a bearer token that does not validate
var ErrTokenMalformed = goerrors.New("Invalid token", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingToken is returned when the Authorization header is absent
var ErrMissingToken = goerrors.New("No token, authorization denied", goerrors.CategoryAuth).
	WithTextCode(textCodeMissingToken).
	WithCode(goerrors.CodeUnauthorized)

func invalidPayload(err error) error {
	e := goerrors.New(err.Error(), goerrors.CategoryValidation).
		WithTextCode(session.TextCodeValidationFailed).
		WithCode(goerrors.CodeBadRequest)
	e.Source = err
	return e
}

// ErrorHandler renders every error as {message} with a status derived from
// the rich error code, or its category when no code is set.
func ErrorHandler(logger session.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := httpError(err)

		if status >= http.StatusInternalServerError {
			logger.Error("credential store request failed",
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		} else {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) && len(richErr.Metadata) > 0 {
				logger.Debug("credential store request rejected",
					"path", c.Path(),
					"status", status,
					"details", print.MaybePrettyJSON(richErr.Metadata),
				)
			}
		}

		return c.Status(status).JSON(fiber.Map{"message": message})
	}
}

func httpError(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError, "Internal server error"
	}

	status := richErr.Code
	if status < 400 || status > 599 {
		switch richErr.Category {
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			status = http.StatusBadRequest
		case goerrors.CategoryAuth:
			status = http.StatusUnauthorized
		case goerrors.CategoryNotFound:
			status = http.StatusNotFound
		case goerrors.CategoryConflict:
			status = http.StatusConflict
		case goerrors.CategoryRateLimit:
			status = http.StatusTooManyRequests
		default:
			status = http.StatusInternalServerError
		}
	}

	message := richErr.Message
	if status >= http.StatusInternalServerError || message == "" {
		message = "Internal server error"
	}
	return status, message
}
