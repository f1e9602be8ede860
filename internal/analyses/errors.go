package analyses

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidInput marks missing or malformed user input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtraction marks an upload that yielded no usable text.
	ErrExtraction = errors.New("text extraction failed")
	// ErrCompletion marks a failed call to the completion provider.
	ErrCompletion = errors.New("completion failed")
	// ErrPersistence marks a record append failure under the fail policy.
	ErrPersistence = errors.New("record not saved")
	// ErrAnalysisRequired is returned when phase 2 is requested before phase 1.
	ErrAnalysisRequired = errors.New("analysis required")
)

// Issue describes one rejected input field.
type Issue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError lists every rejected field of a request.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, i.Field+": "+i.Issue)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Warning is a non-fatal problem reported alongside a successful result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const warnRecordNotSaved = "record_not_saved"
