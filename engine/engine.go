// Package engine turns a record stream into chunk-atomic, fault-tolerant
// progress toward a framed output artifact.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/sink"
	"github.com/molnia/dbatch/stage"
)

// Engine drives a single run: source -> stage pipeline -> chunks -> sink.
// One sequential control flow per run; the sink is a single ordered byte
// stream, so there is no intra-run parallelism by construction.
type Engine struct {
	source    core.Source
	query     *core.Query
	sink      *sink.Sink
	pipeline  stage.Pipeline
	policy    *core.FaultPolicy
	chunkSize int
	tracker   Tracker
	log       *slog.Logger
}

func New(source core.Source, query *core.Query, snk *sink.Sink, opts ...Option) *Engine {
	e := &Engine{
		source:    source,
		query:     query,
		sink:      snk,
		policy:    core.DefaultFaultPolicy(),
		chunkSize: 100,
		tracker:   NopTracker{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.policy = e.policy.Normalize()
	return e
}

// chunkTally is the outcome of assembling one chunk. Its counts are applied
// to the execution state only after the chunk commits, so a replayed
// attempt can never double-count.
type chunkTally struct {
	records []core.Record
	read    int64
	skipped []error
}

// Run executes the migration. It returns the terminal execution result
// along with the error that ended the run, if any.
func (e *Engine) Run(ctx context.Context) (*core.ExecutionResult, error) {
	state := core.NewExecutionState()
	log := e.log.With(slog.String("run_id", string(state.ID())))

	fail := func(err error) (*core.ExecutionResult, error) {
		e.sink.Abort()
		state.Finish(core.RunStateFailed)
		e.tracker.OnTerminal(core.RunStateFailed)
		log.Error("run failed", slog.Any("error", err), slog.Any("state", state))
		return state.Result(), err
	}

	stream, err := e.openSource(ctx, log)
	if err != nil {
		return fail(err)
	}
	defer stream.Close()

	if err := e.sink.Open(); err != nil {
		return fail(err)
	}

	log.Info("run started", slog.String("table", e.query.Table), slog.Int("chunk_size", e.chunkSize))

	var seq int64
	for {
		// cancellation is honored at chunk boundaries only
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("run canceled: %w", err))
		}

		tally, exhausted, err := e.assembleChunk(ctx, stream, state.RecordsSkipped())
		if err != nil {
			return fail(err)
		}

		if len(tally.records) > 0 {
			written, err := e.sink.WriteChunk(tally.records)
			if err != nil {
				return fail(err)
			}
			state.AddWritten(written)
		}

		// the chunk is committed - fold its tally into the run state
		state.AddRead(tally.read)
		state.AddSkipped(int64(len(tally.skipped)))
		for _, skipErr := range tally.skipped {
			e.tracker.OnSkip(skipErr)
			log.Warn("record skipped", slog.Any("error", skipErr))
		}
		if len(tally.records) > 0 {
			state.SetLastChunkSeq(seq)
			e.tracker.OnChunkCommitted(seq, int64(len(tally.records)))
			log.Debug("chunk committed", slog.Int64("seq", seq), slog.Int("records", len(tally.records)))
			seq++
		}

		if exhausted {
			break
		}
	}

	path, err := e.sink.Finalize()
	if err != nil {
		return fail(err)
	}

	state.Finish(core.RunStateCompleted)
	e.tracker.OnTerminal(core.RunStateCompleted)
	log.Info("run completed", slog.String("artifact", path), slog.Any("state", state))

	return state.Result(), nil
}

// openSource opens the source stream, retrying transient open failures
// within the retry budget.
func (e *Engine) openSource(ctx context.Context, log *slog.Logger) (core.RecordStream, error) {
	for attempt := 0; ; attempt++ {
		stream, err := e.source.Open(ctx, e.query)
		if err == nil {
			return stream, nil
		}
		if !e.policy.Retryable(err) {
			return nil, err
		}
		if attempt >= e.policy.RetryLimit {
			return nil, fmt.Errorf("retry limit %d exceeded opening source: %w", e.policy.RetryLimit, err)
		}
		log.Warn("source open failed, retrying", slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
}

// assembleChunk collects up to chunkSize surviving records. Skippable
// failures drop the affected record against the run-wide skip budget.
// A retryable failure discards the partial chunk and replays it from the
// marked stream position; bytes only reach the sink once the whole chunk
// is assembled, which keeps retries invisible in the artifact.
func (e *Engine) assembleChunk(ctx context.Context, stream core.RecordStream, skippedSoFar int64) (*chunkTally, bool, error) {
	replayable, canReplay := stream.(core.Replayable)
	if canReplay {
		replayable.MarkChunk()
	}

	for attempt := 0; ; attempt++ {
		tally, exhausted, err := e.tryAssemble(ctx, stream, skippedSoFar)
		if err == nil {
			return tally, exhausted, nil
		}

		if !e.policy.Retryable(err) {
			return nil, false, err
		}
		if !canReplay {
			return nil, false, fmt.Errorf("source cannot replay the chunk after a transient failure: %w", err)
		}
		if attempt >= e.policy.RetryLimit {
			return nil, false, fmt.Errorf("retry limit %d exceeded: %w", e.policy.RetryLimit, err)
		}

		e.log.Warn("chunk assembly failed, replaying", slog.Int("attempt", attempt+1), slog.Any("error", err))
		if rerr := replayable.Rewind(); rerr != nil {
			return nil, false, fmt.Errorf("stream rewind: %w", rerr)
		}
	}
}

// tryAssemble performs one assembly attempt. Transient errors are returned
// to the caller untouched so it can decide on a replay.
func (e *Engine) tryAssemble(ctx context.Context, stream core.RecordStream, skippedSoFar int64) (*chunkTally, bool, error) {
	tally := &chunkTally{}

	skip := func(err error) error {
		tally.skipped = append(tally.skipped, err)
		if skippedSoFar+int64(len(tally.skipped)) > int64(e.policy.SkipLimit) {
			return fmt.Errorf("skip limit %d exceeded: %w", e.policy.SkipLimit, err)
		}
		return nil
	}

	for len(tally.records) < e.chunkSize {
		if !stream.HasNext() {
			return tally, true, nil
		}

		row, err := stream.Next()
		if err != nil {
			if e.policy.Skippable(err) {
				tally.read++
				if lerr := skip(err); lerr != nil {
					return nil, false, lerr
				}
				continue
			}
			return nil, false, err
		}
		tally.read++

		record, err := e.pipeline.Apply(core.NewRecord(stream.Header(), row))
		if err != nil {
			if e.policy.Skippable(err) {
				if lerr := skip(err); lerr != nil {
					return nil, false, lerr
				}
				continue
			}
			return nil, false, err
		}
		if record == nil {
			// filtered, not an error and not a skip
			continue
		}

		tally.records = append(tally.records, *record)
	}

	return tally, false, nil
}
