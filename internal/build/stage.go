package build

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/metrics"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StagePrepareOutput    StageName = "prepare_output"
	StageCopySource       StageName = "copy_source"
	StageConvertNotebooks StageName = "convert_notebooks"
	StageChangelog        StageName = "changelog"
	StageContributors     StageName = "contributors"
	StageGenerateSDK      StageName = "generate_sdk"
	StageValidate         StageName = "validate"
)

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the stage and its kind.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// errSkipped is returned by a stage that was disabled for this run.
var errSkipped = stdErrors.New("stage skipped")

// Stage is a discrete unit of work in the build.
type Stage func(ctx context.Context, bs *buildState) error

type stageDef struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error.
func runStages(ctx context.Context, bs *buildState, stages []stageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(st.name, err)
			bs.report.record(st.name, metrics.ResultCanceled, 0, se)
			bs.recorder.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.recorder.ObserveStageDuration(string(st.name), dur)
		attrs := []any{logfields.Stage(string(st.name)), logfields.DurationMS(float64(dur.Milliseconds()))}

		res, se := classify(st.name, err)
		bs.report.record(st.name, res, dur, se)
		bs.recorder.IncStageResult(string(st.name), res)

		switch res {
		case metrics.ResultSuccess:
			bs.logger.Info("Stage complete", attrs...)
		case metrics.ResultSkipped:
			bs.logger.Info("Stage skipped", attrs...)
		case metrics.ResultWarning:
			bs.logger.Warn("Stage completed with warnings", append(attrs, logfields.Error(se.Err))...)
		default:
			bs.logger.Error("Stage failed", append(attrs, logfields.Error(se.Err), slog.String("kind", string(se.Kind)))...)
			return se
		}
	}
	return nil
}

func classify(stage StageName, err error) (metrics.ResultLabel, *StageError) {
	if err == nil {
		return metrics.ResultSuccess, nil
	}
	if stdErrors.Is(err, errSkipped) {
		return metrics.ResultSkipped, nil
	}
	var se *StageError
	if !stdErrors.As(err, &se) {
		if stdErrors.Is(err, context.Canceled) {
			se = newCanceledStageError(stage, err)
		} else {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(stage, err)
		}
	}
	switch se.Kind {
	case StageErrorWarning:
		return metrics.ResultWarning, se
	case StageErrorCanceled:
		return metrics.ResultCanceled, se
	default:
		return metrics.ResultFatal, se
	}
}
