package build

import (
	"time"

	"git.home.luguber.info/inful/pxtdocs/internal/metrics"
)

// StageRecord is the outcome of one stage.
type StageRecord struct {
	Name     StageName
	Result   metrics.ResultLabel
	Duration time.Duration
	Err      *StageError
}

// Report summarizes a build.
type Report struct {
	RunID  string
	Start  time.Time
	End    time.Time
	Stages []StageRecord

	Warnings []*StageError
	Errors   []*StageError
	// Findings are validation findings, whether or not they failed the build.
	Findings []string

	FilesCopied  int
	Notebooks    int
	Releases     int
	Contributors int
	SDKPages     int
	Unresolved   []string
}

func newReport(runID string) *Report {
	return &Report{RunID: runID, Start: time.Now()}
}

func (r *Report) record(name StageName, res metrics.ResultLabel, d time.Duration, se *StageError) {
	r.Stages = append(r.Stages, StageRecord{Name: name, Result: res, Duration: d, Err: se})
	if se == nil {
		return
	}
	if se.Kind == StageErrorWarning {
		r.Warnings = append(r.Warnings, se)
		return
	}
	r.Errors = append(r.Errors, se)
}

func (r *Report) finish() { r.End = time.Now() }

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Outcome classifies the build for metrics and summaries.
func (r *Report) Outcome() metrics.OutcomeLabel {
	switch {
	case len(r.Errors) > 0:
		return metrics.OutcomeFailed
	case len(r.Warnings) > 0:
		return metrics.OutcomeWarning
	default:
		return metrics.OutcomeSuccess
	}
}

// Stage returns the record of name, if the stage ran.
func (r *Report) Stage(name StageName) (StageRecord, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageRecord{}, false
}
