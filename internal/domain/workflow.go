package domain

// WorkflowState tracks the progress of one compression workflow run.
// Transitions only move forward; complete and failed are terminal.
type WorkflowState string

const (
	StateIdle                WorkflowState = "idle"
	StateUploadingOriginal   WorkflowState = "uploading-original"
	StateDerivingLocator     WorkflowState = "deriving-locator"
	StateFetchingTransformed WorkflowState = "fetching-transformed"
	StateComplete            WorkflowState = "complete"
	StateFailed              WorkflowState = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s WorkflowState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}
