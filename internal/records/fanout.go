package records

import (
	"context"
	"errors"
	"fmt"
)

// NamedSink labels a sink for error reporting.
type NamedSink struct {
	Name string
	Sink Sink
}

// Fanout appends each record to every sink in order. A failing sink does not
// stop the others; all failures are joined into the returned error.
type Fanout struct {
	Sinks []NamedSink
}

func NewFanout(sinks ...NamedSink) *Fanout {
	return &Fanout{Sinks: sinks}
}

func (f *Fanout) Append(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range f.Sinks {
		if err := s.Sink.Append(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

var _ Sink = (*Fanout)(nil)
