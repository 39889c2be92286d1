package analysis

import (
	"errors"
	"fmt"
)

// ErrWorkflowNotFound indicates an unknown workflow id, or one that does not
// apply to the resource's type. Terminal, returned to the caller as-is.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrWorkflowUnsupported indicates a workflow that requires the pattern
// analyzer while no provider is configured. There is no deterministic
// fallback for such workflows.
var ErrWorkflowUnsupported = errors.New("workflow requires a pattern analyzer and none is configured")

// ErrRunNotFound indicates an unknown bulk run id.
var ErrRunNotFound = errors.New("bulk run not found")

// OrchestratorError wraps a stage failure with request context.
type OrchestratorError struct {
	Stage      string
	ResourceID string
	WorkflowID string
	Err        error
}

func (e *OrchestratorError) Error() string {
	return fmt.Sprintf("analysis %s stage failed (resource=%s workflow=%s): %v",
		e.Stage, e.ResourceID, e.WorkflowID, e.Err)
}

func (e *OrchestratorError) Unwrap() error { return e.Err }
