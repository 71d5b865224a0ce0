package sources

import (
	"context"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/core/builders"
)

func init() {
	registerMode("cursor", func(client *builders.Client, _ Connector) core.Source {
		return &cursorSource{client: client}
	})
}

var _ core.Source = (*cursorSource)(nil)

// cursorSource reads the whole result set through one long-lived open
// query handle. The stream it returns cannot replay a chunk - a transient
// failure mid-read invalidates the cursor position, so the engine treats
// it as fatal.
type cursorSource struct {
	client *builders.Client
}

func (s *cursorSource) Open(ctx context.Context, query *core.Query) (core.RecordStream, error) {
	return s.client.Query(ctx, buildSelect(query))
}

func (s *cursorSource) Close() {
	s.client.Close()
}
