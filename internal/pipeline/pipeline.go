// Package pipeline runs an ordered sequence of named stages. Execution is
// strictly sequential and halts on the first failure, so a later stage can
// rely on every earlier stage having completed: no artifact is ever
// published after a failed build, and no archive is ever packaged from a
// half-generated doc tree.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rusocsci/relkit/internal/history"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/metrics"
	"github.com/rusocsci/relkit/internal/pkgmeta"
)

// State carries shared mutable state across stages of one run.
type State struct {
	Meta        *pkgmeta.Metadata
	WorkingTree string
	StagingTree string
	DistDir     string // dist directory inside the staging tree
	DocDir      string // generated HTML tree inside the staging tree

	// Artifacts accumulates what the run produced, for history recording.
	Artifacts []history.Artifact
	// Timings holds per-stage durations after Run returns.
	Timings map[string]time.Duration
}

// Stage is a discrete unit of work in a pipeline run.
type Stage struct {
	Name string
	Run  func(ctx context.Context, st *State) error
}

// StageError wraps a stage failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Pipeline is an ordered sequence of stages for one target.
type Pipeline struct {
	Target   string
	Stages   []Stage
	Recorder metrics.Recorder
}

// New creates a pipeline. A nil recorder means no metrics.
func New(target string, recorder metrics.Recorder, stages ...Stage) *Pipeline {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Pipeline{Target: target, Stages: stages, Recorder: recorder}
}

// Run executes the stages in order, recording timing, and stops on the
// first failure or context cancellation.
func (p *Pipeline) Run(ctx context.Context, st *State) error {
	if st.Timings == nil {
		st.Timings = make(map[string]time.Duration)
	}
	runStart := time.Now()

	for _, stage := range p.Stages {
		select {
		case <-ctx.Done():
			p.Recorder.IncStageResult(stage.Name, metrics.ResultCanceled)
			p.Recorder.IncRunOutcome(p.Target, "canceled")
			return &StageError{Stage: stage.Name, Err: ctx.Err()}
		default:
		}

		slog.Debug("Running stage", logfields.Target(p.Target), logfields.Stage(stage.Name))
		start := time.Now()
		err := stage.Run(ctx, st)
		elapsed := time.Since(start)

		st.Timings[stage.Name] = elapsed
		p.Recorder.ObserveStageDuration(stage.Name, elapsed)

		if err != nil {
			p.Recorder.IncStageResult(stage.Name, metrics.ResultFatal)
			p.Recorder.IncRunOutcome(p.Target, "failed")
			slog.Error("Stage failed",
				logfields.Target(p.Target),
				logfields.Stage(stage.Name),
				logfields.DurationMS(float64(elapsed.Milliseconds())),
				logfields.Error(err))
			return &StageError{Stage: stage.Name, Err: err}
		}

		p.Recorder.IncStageResult(stage.Name, metrics.ResultSuccess)
		slog.Info("Stage completed",
			logfields.Target(p.Target),
			logfields.Stage(stage.Name),
			logfields.DurationMS(float64(elapsed.Milliseconds())))
	}

	p.Recorder.ObserveRunDuration(p.Target, time.Since(runStart))
	p.Recorder.IncRunOutcome(p.Target, "success")
	return nil
}
