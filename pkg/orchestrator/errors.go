package orchestrator

import (
	"errors"
	"fmt"

	"github.com/amosWeiskopf/wpaudit/pkg/client"
)

// ErrEmptyTarget is returned when a run is started without a target URL
var ErrEmptyTarget = errors.New("target URL is required")

// StageError wraps the failure of one stage
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.Title(), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Status returns the HTTP status behind the failure, or 0 when the failure
// did not come from a backend response.
func (e *StageError) Status() int {
	var te *client.TransportError
	if errors.As(e.Err, &te) {
		return te.Status
	}
	return 0
}

// SoftAnalysisError is reported when the backend answers 200 with an
// embedded error field.
type SoftAnalysisError struct {
	Stage   Stage
	Message string
}

func (e *SoftAnalysisError) Error() string {
	return fmt.Sprintf("%s analysis failed: %s", e.Stage, e.Message)
}

// DependencyUnmetError is reported for a stage whose required input stage
// did not produce a result during the current run.
type DependencyUnmetError struct {
	Stage    Stage
	Requires Stage
}

func (e *DependencyUnmetError) Error() string {
	return fmt.Sprintf("skipped: requires %s results, which are unavailable", e.Requires.Title())
}
