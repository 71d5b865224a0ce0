package engine

import (
	"log/slog"

	"github.com/molnia/dbatch/core"
)

// Tracker observes run progress for the orchestration layer. It is passive:
// no retries or policy decisions happen here.
type Tracker interface {
	OnChunkCommitted(seq, recordsWritten int64)
	OnSkip(reason error)
	OnTerminal(state core.RunState)
}

var _ Tracker = (NopTracker{})

type NopTracker struct{}

func (NopTracker) OnChunkCommitted(int64, int64) {}
func (NopTracker) OnSkip(error)                  {}
func (NopTracker) OnTerminal(core.RunState)      {}

var _ Tracker = (*LogTracker)(nil)

// LogTracker reports progress through a structured logger.
type LogTracker struct {
	log *slog.Logger
}

func NewLogTracker(log *slog.Logger) *LogTracker {
	return &LogTracker{log: log}
}

func (t *LogTracker) OnChunkCommitted(seq, recordsWritten int64) {
	t.log.Info("chunk committed", slog.Int64("seq", seq), slog.Int64("written", recordsWritten))
}

func (t *LogTracker) OnSkip(reason error) {
	t.log.Warn("record skipped", slog.Any("reason", reason))
}

func (t *LogTracker) OnTerminal(state core.RunState) {
	t.log.Info("run finished", slog.String("state", state.String()))
}

var _ Tracker = (MultiTracker)(nil)

// MultiTracker fans events out to several trackers.
type MultiTracker []Tracker

func (m MultiTracker) OnChunkCommitted(seq, recordsWritten int64) {
	for _, t := range m {
		t.OnChunkCommitted(seq, recordsWritten)
	}
}

func (m MultiTracker) OnSkip(reason error) {
	for _, t := range m {
		t.OnSkip(reason)
	}
}

func (m MultiTracker) OnTerminal(state core.RunState) {
	for _, t := range m {
		t.OnTerminal(state)
	}
}
