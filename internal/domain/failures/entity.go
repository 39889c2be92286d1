package failures

import "time"

// Failure records a terminal analysis error for operator review.
type Failure struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	Stage      string    `json:"stage"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
