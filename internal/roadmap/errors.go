package roadmap

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned when the request text is blank. No upstream
// call is made for such requests.
var ErrEmptyMessage = errors.New("learning request must not be empty")

// Stage names a step of the pipeline.
type Stage string

const (
	StageGoalExtraction    Stage = "goal extraction"
	StageRoadmapGeneration Stage = "roadmap generation"
)

// PipelineError is the single wrapped failure returned by Pipeline. It keeps
// the original error reachable through errors.Is and errors.As.
type PipelineError struct {
	RunID string
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("roadmap generation failed during %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
