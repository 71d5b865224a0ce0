package sources

import (
	"context"
	"errors"
	"strings"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/core/builders"
)

func init() {
	registerMode("paging", func(client *builders.Client, connector Connector) core.Source {
		return &pagingSource{client: client, connector: connector}
	})
}

var _ core.Source = (*pagingSource)(nil)

// pagingSource reads the result set as repeated bounded queries ordered by
// a stable key, advancing the last seen key between pages. Because a page
// can always be re-issued from a remembered key, its streams support chunk
// replay.
type pagingSource struct {
	client    *builders.Client
	connector Connector
}

func (s *pagingSource) Open(ctx context.Context, query *core.Query) (core.RecordStream, error) {
	if query.OrderBy == "" {
		return nil, core.Configf("paging source requires a stable ordering key")
	}
	if query.PageSize < 1 {
		return nil, core.Configf("paging source requires a positive page size")
	}

	stream := &pagingStream{
		ctx:       ctx,
		client:    s.client,
		connector: s.connector,
		query:     query,
		keyIndex:  -1,
	}

	// fetch the first page eagerly so the header is known and connection
	// problems surface at open time
	stream.ensurePage()
	if stream.err != nil {
		err := stream.err
		stream.err = nil
		return nil, err
	}

	return stream, nil
}

func (s *pagingSource) Close() {
	s.client.Close()
}

var (
	_ core.RecordStream = (*pagingStream)(nil)
	_ core.Replayable   = (*pagingStream)(nil)
)

type pagingStream struct {
	ctx       context.Context
	client    *builders.Client
	connector Connector
	query     *core.Query

	header   core.Header
	keyIndex int

	page      *builders.Stream
	pageCount int
	lastKey   any
	markKey   any
	exhausted bool

	// the inner stream advances its cursor on HasNext, so a row it reported
	// must be consumed by exactly one Next. ready records that the cursor
	// already sits on an unconsumed row.
	ready bool

	// pending page fetch error, surfaced on the following Next call
	err error
}

func (s *pagingStream) Header() core.Header {
	return s.header
}

func (s *pagingStream) HasNext() bool {
	if s.err != nil {
		return true
	}
	s.ensurePage()
	if s.err != nil {
		return true
	}
	return !s.exhausted
}

func (s *pagingStream) Next() (core.Row, error) {
	if s.err != nil {
		err := s.err
		s.err = nil
		return nil, err
	}

	s.ensurePage()
	if s.err != nil {
		err := s.err
		s.err = nil
		return nil, err
	}
	if s.exhausted {
		return nil, errors.New("no next row")
	}

	s.ready = false
	row, err := s.page.Next()
	s.pageCount++
	if err != nil {
		// a row that fails to scan is skipped; the ordering key stays at
		// the previous readable row
		return nil, err
	}

	if s.keyIndex >= 0 && s.keyIndex < len(row) {
		s.lastKey = row[s.keyIndex]
	}

	return row, nil
}

func (s *pagingStream) Close() {
	if s.page != nil {
		s.page.Close()
		s.page = nil
	}
	s.ready = false
	s.exhausted = true
}

func (s *pagingStream) MarkChunk() {
	s.markKey = s.lastKey
}

// Rewind re-positions the stream at the last marked chunk start by
// re-issuing the page query from the remembered ordering key.
func (s *pagingStream) Rewind() error {
	if s.page != nil {
		s.page.Close()
		s.page = nil
	}
	s.pageCount = 0
	s.ready = false
	s.exhausted = false
	s.err = nil
	s.lastKey = s.markKey
	return nil
}

// ensurePage makes sure the inner cursor sits on an unconsumed row,
// fetching the next page whenever the current one is drained. A drained
// page shorter than the page size means the source is exhausted. Idempotent
// until the ready row is consumed, so HasNext followed by Next peeks the
// inner stream exactly once.
func (s *pagingStream) ensurePage() {
	if s.exhausted || s.ready {
		return
	}

	for {
		if s.page == nil {
			afterKey := s.lastKey != nil
			statement := buildPageSelect(s.query, s.connector, afterKey)

			var args []any
			if afterKey {
				args = append(args, s.lastKey)
			}

			page, err := s.client.Query(s.ctx, statement, args...)
			if err != nil {
				s.err = err
				return
			}

			s.page = page
			s.pageCount = 0

			if s.header == nil {
				s.header = page.Header()
				s.keyIndex = indexOfField(s.header, s.query.OrderBy)
				if s.keyIndex < 0 {
					s.err = core.Configf("ordering key %q is not part of the result header", s.query.OrderBy)
					return
				}
			}
		}

		if s.page.HasNext() {
			s.ready = true
			return
		}

		// page drained
		full := s.pageCount >= s.query.PageSize
		s.page.Close()
		s.page = nil
		if !full {
			s.exhausted = true
			return
		}
	}
}

func indexOfField(header core.Header, field string) int {
	for i, name := range header {
		if strings.EqualFold(name, field) {
			return i
		}
	}
	return -1
}
