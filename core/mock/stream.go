package mock

import (
	"errors"
	"time"

	"github.com/molnia/dbatch/core"
)

var _ core.RecordStream = (*Stream)(nil)

// Stream is a mocked record stream with optional fault injection. Injected
// errors fire exactly once per position, so a rewound replay succeeds -
// this models a transient blip that resolves on retry.
type Stream struct {
	header core.Header
	rows   []core.Row
	config *streamConfig

	index int
	mark  int
	fired map[int]bool
}

func NewStream(header core.Header, rows []core.Row, opts ...StreamOption) *Stream {
	config := &streamConfig{
		errAt: make(map[int]error),
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Stream{
		header: header,
		rows:   rows,
		config: config,
		fired:  make(map[int]bool),
	}
}

func (s *Stream) Header() core.Header {
	return s.header
}

func (s *Stream) HasNext() bool {
	return s.index < len(s.rows)
}

func (s *Stream) Next() (core.Row, error) {
	if !s.HasNext() {
		return nil, errors.New("no next row")
	}

	if s.config.nextSleep > 0 {
		time.Sleep(s.config.nextSleep)
	}

	i := s.index
	s.index++

	if err, ok := s.config.errAt[i]; ok && !s.fired[i] {
		s.fired[i] = true
		return nil, err
	}

	return s.rows[i], nil
}

func (s *Stream) Close() {}

// MarkChunk and Rewind make the stream replayable when enabled.

func (s *Stream) MarkChunk() {
	if s.config.replayable {
		s.mark = s.index
	}
}

func (s *Stream) Rewind() error {
	if !s.config.replayable {
		return errors.New("stream is not replayable")
	}
	s.index = s.mark
	return nil
}
