package config

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/multierr"
)

// State is the result of reconciling one holder against disk.
type State int

const (
	// StateFailed means the holder kept its previous document.
	StateFailed State = iota
	// StateFresh means the file was missing and defaults were written.
	StateFresh
	// StateLoaded means the existing file was used unchanged.
	StateLoaded
	// StateMigrated means an outdated or unreadable file was archived and
	// replaced with defaults.
	StateMigrated
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateLoaded:
		return "loaded"
	case StateMigrated:
		return "migrated"
	default:
		return "failed"
	}
}

// Outcome describes what happened to one holder during a run.
type Outcome struct {
	Holder  *Holder
	State   State
	Archive string // where the previous file was moved, if it was
	Err     error
}

// OK reports whether the holder received a new document.
func (o Outcome) OK() bool { return o.Err == nil }

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s: %s: %v", o.Holder.Path(), o.State, o.Err)
	case o.Archive != "":
		return fmt.Sprintf("%s: %s (archived to %s)", o.Holder.Path(), o.State, o.Archive)
	default:
		return fmt.Sprintf("%s: %s", o.Holder.Path(), o.State)
	}
}

// Report collects the outcome of every holder reconciled by one LoadAll run,
// keyed by Holder.Key.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Outcomes map[string]Outcome
}

// Get returns the outcome for h.
func (r *Report) Get(h *Holder) (Outcome, bool) {
	o, ok := r.Outcomes[h.Key()]
	return o, ok
}

// Sorted returns outcomes ordered by holder key.
func (r *Report) Sorted() []Outcome {
	keys := make([]string, 0, len(r.Outcomes))
	for k := range r.Outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Outcome, len(keys))
	for i, k := range keys {
		out[i] = r.Outcomes[k]
	}
	return out
}

// Failed returns the outcomes that carry an error, ordered by holder key.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Sorted() {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err combines every per-holder error, or returns nil if all succeeded.
func (r *Report) Err() error {
	var errs error
	for _, o := range r.Failed() {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", o.Holder.Path(), o.Err))
	}
	return errs
}
