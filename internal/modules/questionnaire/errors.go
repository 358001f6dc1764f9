package questionnaire

import "errors"

var (
	ErrNoOwner            = errors.New("questionnaire: owner id is required")
	ErrNotInitialized     = errors.New("questionnaire: session not initialized")
	ErrStepIncomplete     = errors.New("questionnaire: current step is incomplete")
	ErrTransitionInFlight = errors.New("questionnaire: a transition is already in progress")
	ErrInvalidTransition  = errors.New("questionnaire: transition not allowed from current state")
	ErrInvalidCommand     = errors.New("questionnaire: invalid answer command")
	// ErrCompletionNotSaved means the completion write failed and the attempt
	// must not be presented as complete.
	ErrCompletionNotSaved = errors.New("questionnaire: completion could not be saved")

	ErrAttemptConflict = errors.New("questionnaire: owner already has an incomplete attempt")
	ErrAttemptNotFound = errors.New("questionnaire: attempt not found")

	ErrTimeout          = errors.New("questionnaire: operation timed out")
	ErrEmptyPayload     = errors.New("questionnaire: scorer returned an empty payload")
	ErrMalformedPayload = errors.New("questionnaire: scorer returned a malformed payload")
)
