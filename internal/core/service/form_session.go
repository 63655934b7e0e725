// Package service implements the client-side use cases: form sessions, the
// validation gate, the submission pipeline and the role/session context.
package service

import (
	"fmt"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
)

// FormState is the lifecycle state of an open form session.
type FormState string

const (
	StateIdle            FormState = "idle"
	StateLoading         FormState = "loading"
	StateEditing         FormState = "editing"
	StateSubmitting      FormState = "submitting"
	StateSubmitSucceeded FormState = "submit_succeeded"
	StateSubmitFailed    FormState = "submit_failed"
)

// formTransitions defines the allowed form state machine transitions.
var formTransitions = map[FormState][]FormState{
	StateIdle:    {StateLoading, StateEditing},
	StateLoading: {StateEditing},
	StateEditing: {StateEditing, StateSubmitting},
	// A failed submission returns the user to editing with all data intact;
	// an immediate resubmit is also allowed.
	StateSubmitting:   {StateSubmitSucceeded, StateSubmitFailed},
	StateSubmitFailed: {StateEditing, StateSubmitting},
}

// CanTransitionTo reports whether moving from the current state to next is a
// legal form transition.
func (s FormState) CanTransitionTo(next FormState) bool {
	for _, allowed := range formTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FormMode distinguishes a fresh form from one pre-populated by a fetch.
type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEdit
)

// SubmitPolicy is the per-form decision of what the view does after a
// successful submission.
type SubmitPolicy int

const (
	// LeaveForm navigates to the relevant list view after success.
	LeaveForm SubmitPolicy = iota
	// StayOnForm keeps the form open after success.
	StayOnForm
)

// noPendingRemoval marks the absence of a removal awaiting confirmation.
const noPendingRemoval = -1

// formCore holds the state shared by every form session: the machine state,
// field-scoped errors and the last normalized API failure.
type formCore struct {
	state     FormState
	errors    domain.ErrorMap
	lastError *domain.APIError
	policy    SubmitPolicy
	mode      FormMode
}

func newFormCore(mode FormMode, policy SubmitPolicy) formCore {
	state := StateEditing
	if mode == ModeEdit {
		state = StateLoading
	}
	return formCore{
		state:  state,
		errors: domain.ErrorMap{},
		policy: policy,
		mode:   mode,
	}
}

// State returns the current form state.
func (f *formCore) State() FormState { return f.state }

// Mode returns whether the form creates a new record or edits a fetched one.
func (f *formCore) Mode() FormMode { return f.mode }

// Policy returns the navigate-or-stay decision for this form.
func (f *formCore) Policy() SubmitPolicy { return f.policy }

// Errors returns the current field-scoped validation errors.
func (f *formCore) Errors() domain.ErrorMap { return f.errors }

// LastError returns the normalized failure of the most recent submission,
// or nil when none failed.
func (f *formCore) LastError() *domain.APIError { return f.lastError }

func (f *formCore) transition(next FormState) error {
	if !f.state.CanTransitionTo(next) {
		return fmt.Errorf("form transition %s -> %s: %w", f.state, next, domain.ErrInvalidTransition)
	}
	f.state = next
	return nil
}

// touch records a user mutation: a failed submission flips back to editing,
// any other non-editing state rejects the mutation.
func (f *formCore) touch() error {
	switch f.state {
	case StateEditing:
		return nil
	case StateSubmitFailed:
		return f.transition(StateEditing)
	default:
		return fmt.Errorf("form is %s: %w", f.state, domain.ErrInvalidTransition)
	}
}

// FocusDisplay implements the focus-on-zero convenience: a numeric field
// committed at zero is transiently shown blank when it gains focus, so the
// user can overwrite without deleting first. The committed value is not
// touched; only a re-commit through a field mutation changes it.
func FocusDisplay(committed string) string {
	if domain.ParseAmount(committed) == 0 {
		return ""
	}
	return committed
}
