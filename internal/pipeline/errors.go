package pipeline

import "fmt"

// Pipeline stage names, recorded on failures so callers can tell where a
// document died.
const (
	StageChecksum = "checksum"
	StageDedup    = "dedup"
	StageLoad     = "load"
	StageSplit    = "split"
	StageChunk    = "chunk"
	StageEmbed    = "embed"
	StageIndex    = "index"
)

// StageError wraps a failure with the document and pipeline stage it
// occurred in.
type StageError struct {
	DocumentID string
	Stage      string
	Err        error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(documentID, stage string, err error) *StageError {
	return &StageError{DocumentID: documentID, Stage: stage, Err: err}
}
