package pipeline

import (
	"strings"

	"bikereport/internal/analytics"
	"bikereport/internal/auth"
)

// RunState is the data handed from one stage to the next
type RunState struct {
	ID      string
	Session auth.Session

	// InputPath is the dataset workbook; set beforehand to skip the download
	InputPath  string
	Table      *analytics.Table
	Result     *analytics.Result
	ReportPath string
	Exported   []string

	stages []*StageState
}

// NewRunState creates the state for one run
func NewRunState(id string, session auth.Session, inputPath string) *RunState {
	return &RunState{
		ID:        id,
		Session:   session,
		InputPath: inputPath,
	}
}

// Stage returns the record of the stage with the given id, or nil
func (s *RunState) Stage(id string) *StageState {
	for _, st := range s.stages {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// Stages returns the stage records in execution order
func (s *RunState) Stages() []*StageState {
	out := make([]*StageState, len(s.stages))
	copy(out, s.stages)
	return out
}

func (s *RunState) track(stage Stage) *StageState {
	st := NewStageState(stage.ID(), stage.Name())
	s.stages = append(s.stages, st)
	return st
}

// String renders a one-line summary of the stage outcomes
func (s *RunState) String() string {
	var b strings.Builder
	for i, st := range s.stages {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(st.ID)
		b.WriteByte('=')
		b.WriteString(string(st.GetStatus()))
	}
	return b.String()
}
