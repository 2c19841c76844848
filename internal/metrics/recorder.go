package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel is the final status of a build or deploy run.
type OutcomeLabel string

const (
	OutcomeSuccess   OutcomeLabel = "success"
	OutcomeWarning   OutcomeLabel = "warning"
	OutcomeFailed    OutcomeLabel = "failed"
	OutcomeUnchanged OutcomeLabel = "unchanged"
)

// Recorder defines the hooks the build pipeline and deployers report to.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	// ObserveRunDuration and IncRunOutcome are keyed by run kind:
	// build, deploy-dev, deploy-stage or deploy-prod.
	ObserveRunDuration(kind string, d time.Duration)
	IncRunOutcome(kind string, outcome OutcomeLabel)
	SetPagesGenerated(n int)
	ObserveCloneDuration(repo string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) IncStageResult(string, ResultLabel)               {}
func (NoopRecorder) ObserveRunDuration(string, time.Duration)         {}
func (NoopRecorder) IncRunOutcome(string, OutcomeLabel)               {}
func (NoopRecorder) SetPagesGenerated(int)                            {}
func (NoopRecorder) ObserveCloneDuration(string, time.Duration, bool) {}
