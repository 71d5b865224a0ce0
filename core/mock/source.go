package mock

import (
	"context"
	"fmt"

	"github.com/molnia/dbatch/core"
)

var _ core.Source = (*Source)(nil)

// Source is an in-memory core.Source for tests.
type Source struct {
	header core.Header
	rows   []core.Row
	config *sourceConfig

	opensLeft int
}

func NewSource(header core.Header, rows []core.Row, opts ...SourceOption) *Source {
	config := &sourceConfig{
		streamOptions: []StreamOption{},
	}
	for _, opt := range opts {
		opt(config)
	}

	return &Source{
		header:    header,
		rows:      rows,
		config:    config,
		opensLeft: config.failOpens,
	}
}

func (s *Source) Open(_ context.Context, _ *core.Query) (core.RecordStream, error) {
	if s.opensLeft > 0 {
		s.opensLeft--
		return nil, core.Transient(fmt.Errorf("open failed (%d more to go)", s.opensLeft))
	}

	return NewStream(s.header, s.rows, s.config.streamOptions...), nil
}

func (s *Source) Close() {}

// NewRows generates rows with an id and a name column for the given range.
func NewRows(from, to int) []core.Row {
	var rows []core.Row
	for i := from; i < to; i++ {
		rows = append(rows, core.Row{i, fmt.Sprintf("name_%d", i)})
	}
	return rows
}
