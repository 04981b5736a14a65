// Package stream projects DynamoDB Streams change events into the search index.
package stream

import (
	"errors"
	"fmt"

	"github.com/jacentio/tasks/store"
)

// ErrPartialProjection is returned by Report.Err when some events failed.
var ErrPartialProjection = errors.New("tasks: partial projection failure")

// Kind classifies a change event.
type Kind int

const (
	KindUnknown Kind = iota
	Inserted
	Modified
	Removed
)

func (k Kind) String() string {
	switch k {
	case Inserted:
		return "INSERT"
	case Modified:
		return "MODIFY"
	case Removed:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// ParseKind maps a DynamoDB Streams event name to a Kind.
func ParseKind(eventName string) Kind {
	switch eventName {
	case "INSERT":
		return Inserted
	case "MODIFY":
		return Modified
	case "REMOVE":
		return Removed
	default:
		return KindUnknown
	}
}

// Key identifies the item an event is about.
type Key struct {
	Owner  string
	ItemID string
}

// Valid reports whether both key fields are present.
func (k Key) Valid() bool {
	return k.Owner != "" && k.ItemID != ""
}

// ChangeEvent is one committed mutation of the items table.
type ChangeEvent struct {
	// ID is the feed's event id, used only for reporting.
	ID   string
	Kind Kind
	Key  Key

	// NewState is the item after the mutation. Nil for Removed.
	NewState *store.Item
}

// Status is the result of projecting one event.
type Status int

const (
	Applied Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome is the per-event result of Process.
type Outcome struct {
	EventID string
	Key     Key
	Status  Status

	// Reason explains a Skipped outcome.
	Reason string

	// Err is set for a Failed outcome.
	Err error
}

// Report holds one Outcome per event, in batch order.
type Report struct {
	Outcomes []Outcome
}

// Count returns the number of outcomes with status s.
func (r Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed outcomes, in batch order.
func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == Failed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err returns nil when no event failed. Otherwise it wraps ErrPartialProjection
// together with every per-event error.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, o := range failed {
		errs = append(errs, o.Err)
	}
	return fmt.Errorf("%w: %d of %d events: %w", ErrPartialProjection, len(failed), len(r.Outcomes), errors.Join(errs...))
}
