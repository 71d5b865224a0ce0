package core

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type RunID string

// ExecutionState holds the live progress of a single run. Counters are only
// advanced by the engine; once a terminal state is set the state is frozen
// and further mutations are ignored.
type ExecutionState struct {
	id        RunID
	startedAt time.Time

	read         atomic.Int64
	written      atomic.Int64
	skipped      atomic.Int64
	lastChunkSeq atomic.Int64

	mu         sync.Mutex
	state      RunState
	finishedAt time.Time
}

func NewExecutionState() *ExecutionState {
	s := &ExecutionState{
		id:        RunID(uuid.New().String()),
		startedAt: time.Now(),
		state:     RunStateRunning,
	}
	s.lastChunkSeq.Store(-1)
	return s
}

func (s *ExecutionState) ID() RunID { return s.id }

func (s *ExecutionState) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ExecutionState) RecordsRead() int64    { return s.read.Load() }
func (s *ExecutionState) RecordsWritten() int64 { return s.written.Load() }
func (s *ExecutionState) RecordsSkipped() int64 { return s.skipped.Load() }
func (s *ExecutionState) LastChunkSeq() int64   { return s.lastChunkSeq.Load() }

func (s *ExecutionState) AddRead(n int64)    { s.read.Add(n) }
func (s *ExecutionState) AddWritten(n int64) { s.written.Add(n) }
func (s *ExecutionState) AddSkipped(n int64) { s.skipped.Add(n) }

func (s *ExecutionState) SetLastChunkSeq(seq int64) { s.lastChunkSeq.Store(seq) }

// Finish moves the state to a terminal value. Only the first call takes
// effect.
func (s *ExecutionState) Finish(state RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = state
	s.finishedAt = time.Now()
}

// Result takes a snapshot of the state.
func (s *ExecutionState) Result() *ExecutionResult {
	s.mu.Lock()
	state := s.state
	finishedAt := s.finishedAt
	s.mu.Unlock()

	elapsed := time.Since(s.startedAt)
	if !finishedAt.IsZero() {
		elapsed = finishedAt.Sub(s.startedAt)
	}

	return &ExecutionResult{
		ID:             s.id,
		State:          state,
		RecordsRead:    s.read.Load(),
		RecordsWritten: s.written.Load(),
		RecordsSkipped: s.skipped.Load(),
		LastChunkSeq:   s.lastChunkSeq.Load(),
		Elapsed:        elapsed,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s *ExecutionState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", string(s.id)),
		slog.String("state", s.State().String()),
		slog.Int64("read", s.RecordsRead()),
		slog.Int64("written", s.RecordsWritten()),
		slog.Int64("skipped", s.RecordsSkipped()),
		slog.Int64("last_chunk_seq", s.LastChunkSeq()),
	)
}

// ExecutionResult is the terminal report of a run, handed to the
// orchestration layer.
type ExecutionResult struct {
	ID             RunID
	State          RunState
	RecordsRead    int64
	RecordsWritten int64
	RecordsSkipped int64
	LastChunkSeq   int64
	Elapsed        time.Duration
}
