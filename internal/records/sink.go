package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sink appends records to a durable log. Implementations never update or
// delete; duplicate appends produce duplicate rows.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// FailurePolicy decides what a failed append means for the caller.
type FailurePolicy string

const (
	// PolicyWarn logs the failure and lets the request succeed with a warning.
	PolicyWarn FailurePolicy = "warn"
	// PolicyFail surfaces the failure as a request error.
	PolicyFail FailurePolicy = "fail"
)

// ErrInvalidRecord is returned for records missing required fields.
var ErrInvalidRecord = errors.New("invalid record")

// ParsePolicy converts a config value into a FailurePolicy.
func ParsePolicy(raw string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyWarn:
		return PolicyWarn, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("unknown record failure policy %q", raw)
	}
}

func validate(rec Record) error {
	if strings.TrimSpace(rec.SessionID) == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidRecord)
	}
	switch rec.Phase {
	case PhaseAnalysis, PhaseOptimization:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidRecord, rec.Phase)
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidRecord)
	}
	return nil
}
