package engine

import (
	"log/slog"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/stage"
)

type Option func(*Engine)

// WithPipeline sets the ordered record transforms applied between the
// source and the sink.
func WithPipeline(pipeline stage.Pipeline) Option {
	return func(e *Engine) {
		e.pipeline = pipeline
	}
}

// WithFaultPolicy sets the retry/skip budgets of the run.
func WithFaultPolicy(policy *core.FaultPolicy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// WithChunkSize sets the number of surviving records per committed chunk.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.chunkSize = n
		}
	}
}

// WithTracker attaches a progress observer to the run.
func WithTracker(tracker Tracker) Option {
	return func(e *Engine) {
		if tracker != nil {
			e.tracker = tracker
		}
	}
}

// WithLogger sets the logger used by the run.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}
