package builders

import (
	"github.com/molnia/dbatch/core"
)

// Stream fills the core.RecordStream interface for all sql sources.
type Stream struct {
	next    func() (core.Row, error)
	hasNext func() bool
	close   func()
	header  core.Header
}

func (s *Stream) Header() core.Header {
	return s.header
}

func (s *Stream) HasNext() bool {
	return s.hasNext()
}

func (s *Stream) Next() (core.Row, error) {
	row, err := s.next()
	if err != nil || row == nil {
		return nil, err
	}
	return row, nil
}

func (s *Stream) Close() {
	s.close()
	s.hasNext = func() bool {
		return false
	}
}

// StreamBuilder builds the record stream
type StreamBuilder struct {
	next    func() (core.Row, error)
	hasNext func() bool
	header  core.Header
	close   func()
}

func NewStreamBuilder() *StreamBuilder {
	next, hasNext := NextNil()
	return &StreamBuilder{
		next:    next,
		hasNext: hasNext,
		header:  core.Header{},
		close:   func() {},
	}
}

func (b *StreamBuilder) WithNextFunc(fn func() (core.Row, error), has func() bool) *StreamBuilder {
	b.next = fn
	b.hasNext = has
	return b
}

func (b *StreamBuilder) WithHeader(header core.Header) *StreamBuilder {
	b.header = header
	return b
}

func (b *StreamBuilder) WithCloseFunc(fn func()) *StreamBuilder {
	b.close = fn
	return b
}

func (b *StreamBuilder) Build() *Stream {
	return &Stream{
		next:    b.next,
		hasNext: b.hasNext,
		header:  b.header,
		close:   b.close,
	}
}
