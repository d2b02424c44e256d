// Package harness drives external benchmark executables: it materializes
// sweep configurations into command lines, runs them strictly one at a time,
// resets the accelerator around hardware runs, and wraps the build tooling.
package harness

import (
	"fmt"
	"time"

	"github.com/weiihann/aeadbench/sweep"
)

// Failure is one configuration that did not complete.
type Failure struct {
	Config sweep.Config
	Err    error
}

// Summary describes a finished or aborted sweep.
type Summary struct {
	SweepID   string
	Backend   sweep.Backend
	Mode      Mode
	Planned   int
	Completed int
	Failures  []Failure
	Elapsed   time.Duration
}

// SweepError is returned under the continue policy when at least one
// configuration failed. Every configuration was still attempted.
type SweepError struct {
	Planned  int
	Failures []Failure
}

func (e *SweepError) Error() string {
	msg := fmt.Sprintf("%d of %d runs failed", len(e.Failures), e.Planned)
	if len(e.Failures) > 0 {
		msg += fmt.Sprintf(" (first: %s: %v)", e.Failures[0].Config, e.Failures[0].Err)
	}

	return msg
}

// Unwrap exposes the individual run errors.
func (e *SweepError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}

	return errs
}
