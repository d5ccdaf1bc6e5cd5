package conversation

import "fmt"

// Pipeline stages, used for error attribution and state logging.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageGeneration    Stage = "generation"
	StageSynthesis     Stage = "synthesis"
	StageStorage       Stage = "storage"
)

// UpstreamServiceError marks a failure in one of the external contracts
// (transcription, generation, synthesis, storage). Recoverable per turn.
type UpstreamServiceError struct {
	Stage Stage
	Err   error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Stage, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// SystemError is the catch-all for unexpected collaborator failures. Caught
// at the turn boundary, logged, spoken as a generic apology.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string { return fmt.Sprintf("system error: %v", e.Err) }

func (e *SystemError) Unwrap() error { return e.Err }
