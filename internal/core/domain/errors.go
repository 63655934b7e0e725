package domain

import (
	"errors"
	"fmt"
)

var ErrRFQNotFound = errors.New("rfq not found")
var ErrBidNotFound = errors.New("bid not found")
var ErrTransactionNotFound = errors.New("transaction not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrPartialSession = errors.New("partial session state")
var ErrValidationFailed = errors.New("validation failed")
var ErrSubmitInFlight = errors.New("submission already in flight")
var ErrAlreadyAwarded = errors.New("rfq already has an awarded bid")

// ErrorMap carries field-scoped validation messages, keyed by field name.
// An empty map means the checked form is valid.
type ErrorMap map[string]string

// Merge copies all entries from other into m, overwriting on key collision.
func (m ErrorMap) Merge(other ErrorMap) {
	for k, v := range other {
		m[k] = v
	}
}

// APIError is the normalized shape of any transport or remote-API failure.
// Every error coming back from the marketplace API is reduced to this form
// before it reaches a form session or a view.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return "api error: " + e.Message
}
