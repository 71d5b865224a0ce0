package core

import "context"

type (
	// Row and Header are attributes of RecordStream iterator
	Row    []any
	Header []string

	// RecordStream is an ordered stream of rows pulled from a source and has
	// a form of an iterator
	RecordStream interface {
		Header() Header
		Next() (Row, error)
		HasNext() bool
		Close()
	}

	// Replayable is an optional interface for record streams that can
	// stably re-read the records of the chunk currently being assembled.
	// Streams draining a long-lived cursor cannot implement it.
	Replayable interface {
		// MarkChunk remembers the current stream position as a chunk start.
		MarkChunk()
		// Rewind moves the stream back to the last marked position.
		Rewind() error
	}
)

// Source pulls an ordered sequence of records from a backing store, hiding
// whether retrieval happens over a single open cursor or successive bounded
// pages.
type Source interface {
	Open(ctx context.Context, query *Query) (RecordStream, error)
	Close()
}

// Query describes what to pull from the source. OrderBy must be a stable and
// unique key when the paging source is used, otherwise rows can be skipped or
// duplicated across page boundaries.
type Query struct {
	Table    string
	Columns  []string
	Where    string
	OrderBy  string
	PageSize int
}
