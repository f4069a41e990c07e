package session

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	TextCodeValidationFailed     = "VALIDATION_FAILED"
	TextCodeProfileUpdateFailed  = "PROFILE_UPDATE_FAILED"
	TextCodeNotAuthenticated     = "NOT_AUTHENTICATED"
	TextCodeNetworkError         = "NETWORK_ERROR"
	TextCodeMalformedResponse    = "MALFORMED_RESPONSE"
	TextCodeOperationSuperseded  = "OPERATION_SUPERSEDED"
	TextCodeInvalidTransition    = "INVALID_SESSION_TRANSITION"
)

const (
	msgLoginFailed  = "Login failed"
	msgSignupFailed = "Signup failed"
	msgFallback     = "Something went wrong"
)

// ErrAuthentication is returned for bad credentials and invalid or expired tokens.
var ErrAuthentication = goerrors.New("Authentication failed", goerrors.CategoryAuth).
	WithTextCode(TextCodeAuthenticationFailed).
	WithCode(goerrors.CodeUnauthorized)

// ErrValidation is returned for malformed signup, login or update payloads.
var ErrValidation = goerrors.New("Invalid request", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(goerrors.CodeBadRequest)

// ErrProfileUpdate is returned when the credential store rejects a profile update.
var ErrProfileUpdate = goerrors.New("Failed to update profile", goerrors.CategoryOperation).
	WithTextCode(TextCodeProfileUpdateFailed).
	WithCode(goerrors.CodeBadRequest)

// ErrNotAuthenticated is returned when an operation requires a session that does not exist.
var ErrNotAuthenticated = goerrors.New("Not authenticated", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrNetwork is returned when the transport fails and no response can be interpreted.
var ErrNetwork = goerrors.New("Network request failed", goerrors.CategoryOperation).
	WithTextCode(TextCodeNetworkError).
	WithCode(http.StatusServiceUnavailable)

// ErrMalformedResponse is returned when a success response cannot be decoded.
var ErrMalformedResponse = goerrors.New("Malformed server response", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMalformedResponse).
	WithCode(http.StatusBadGateway)

// ErrOperationSuperseded is returned by a call whose result arrived after a
// newer session operation started. Its result is dropped.
var ErrOperationSuperseded = goerrors.New("Operation superseded by a newer request", goerrors.CategoryOperation).
	WithTextCode(TextCodeOperationSuperseded).
	WithCode(goerrors.CodeConflict)

// ErrInvalidTransition is returned when the session machine is asked for a transition it does not allow.
var ErrInvalidTransition = goerrors.New("invalid session state transition", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// newError clones base so the package sentinels are never mutated.
// An empty message keeps the base message, which is what guarantees
// Message never returns an empty string for our errors.
func newError(base *goerrors.Error, message string, source error, meta map[string]any) *goerrors.Error {
	clone := base.Clone()
	if clone == nil {
		clone = base
	}

	if msg := strings.TrimSpace(message); msg != "" {
		clone.Message = msg
	}

	if source != nil {
		clone.Source = source
	}

	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}

	return clone
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsAuthenticationError reports bad credentials or a rejected token
func IsAuthenticationError(err error) bool {
	return hasTextCode(err, TextCodeAuthenticationFailed)
}

// IsValidationError reports a malformed payload
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidationFailed)
}

// IsProfileUpdateError reports a profile update rejected by the server
func IsProfileUpdateError(err error) bool {
	return hasTextCode(err, TextCodeProfileUpdateFailed)
}

// IsNotAuthenticatedError reports a missing session
func IsNotAuthenticatedError(err error) bool {
	return hasTextCode(err, TextCodeNotAuthenticated)
}

// IsNetworkError reports a transport failure
func IsNetworkError(err error) bool {
	return hasTextCode(err, TextCodeNetworkError)
}

// IsMalformedResponseError reports an undecodable success body
func IsMalformedResponseError(err error) bool {
	return hasTextCode(err, TextCodeMalformedResponse)
}

// IsSupersededError reports a call whose result was dropped
func IsSupersededError(err error) bool {
	return hasTextCode(err, TextCodeOperationSuperseded)
}

// Message returns a human readable message for err that is never empty
// for a non nil error.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && strings.TrimSpace(richErr.Message) != "" {
		return richErr.Message
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}

	return msgFallback
}
