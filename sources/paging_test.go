package sources

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/core/builders"
	"github.com/molnia/dbatch/engine"
	"github.com/molnia/dbatch/sink"
)

type mockConnector struct{}

func (c *mockConnector) Connect(string) (*builders.Client, error) { return nil, nil }
func (c *mockConnector) Placeholder(_ int) string                 { return "?" }

func newPagingSource(t *testing.T) (*pagingSource, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	return &pagingSource{
		client:    builders.NewClient(db),
		connector: &mockConnector{},
	}, mock
}

func pagingQuery(pageSize int) *core.Query {
	return &core.Query{
		Table:    "users",
		Columns:  []string{"id", "name"},
		OrderBy:  "id",
		PageSize: pageSize,
	}
}

func drain(t *testing.T, stream core.RecordStream) []core.Row {
	t.Helper()

	var rows []core.Row
	for stream.HasNext() {
		row, err := stream.Next()
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestPagingStream_KeysetPages(t *testing.T) {
	r := require.New(t)

	source, mock := newPagingSource(t)
	defer source.Close()

	mock.ExpectQuery("SELECT id, name FROM users ORDER BY id LIMIT 2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "a").
			AddRow(int64(2), "b"))
	mock.ExpectQuery("SELECT id, name FROM users WHERE id > ? ORDER BY id LIMIT 2").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(3), "c"))

	stream, err := source.Open(context.Background(), pagingQuery(2))
	r.NoError(err)
	defer stream.Close()

	r.Equal(core.Header{"id", "name"}, stream.Header())

	rows := drain(t, stream)
	r.Len(rows, 3)
	r.Equal(core.Row{int64(1), "a"}, rows[0])
	r.Equal(core.Row{int64(3), "c"}, rows[2])
	r.NoError(mock.ExpectationsWereMet())
}

func TestPagingStream_HasNextIsIdempotent(t *testing.T) {
	r := require.New(t)

	source, mock := newPagingSource(t)
	defer source.Close()

	// the inner sql stream advances its cursor on HasNext, so repeated
	// peeks must not consume rows
	mock.ExpectQuery("SELECT id, name FROM users ORDER BY id LIMIT 2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "a").
			AddRow(int64(2), "b"))
	mock.ExpectQuery("SELECT id, name FROM users WHERE id > ? ORDER BY id LIMIT 2").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	stream, err := source.Open(context.Background(), pagingQuery(2))
	r.NoError(err)
	defer stream.Close()

	var rows []core.Row
	for stream.HasNext() {
		r.True(stream.HasNext())
		r.True(stream.HasNext())
		row, err := stream.Next()
		r.NoError(err)
		rows = append(rows, row)
	}

	r.Equal([]core.Row{{int64(1), "a"}, {int64(2), "b"}}, rows)
	r.NoError(mock.ExpectationsWereMet())
}

func TestEngine_DeliversEveryPagedRow(t *testing.T) {
	r := require.New(t)

	source, mock := newPagingSource(t)
	defer source.Close()

	mock.ExpectQuery("SELECT id, name FROM users ORDER BY id LIMIT 3").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "a").
			AddRow(int64(2), "b").
			AddRow(int64(3), "c"))
	nextPage := "SELECT id, name FROM users WHERE id > ? ORDER BY id LIMIT 3"
	mock.ExpectQuery(nextPage).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(4), "d").
			AddRow(int64(5), "e").
			AddRow(int64(6), "f"))
	mock.ExpectQuery(nextPage).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	path := filepath.Join(t.TempDir(), "out.txt")
	snk := sink.New(path, sink.WithFields([]string{"id", "name"}))

	// chunk size deliberately misaligned with the page size
	e := engine.New(source, pagingQuery(3), snk,
		engine.WithChunkSize(2),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	result, err := e.Run(context.Background())
	r.NoError(err)
	r.Equal(core.RunStateCompleted, result.State)
	r.Equal(int64(6), result.RecordsRead)
	r.Equal(int64(6), result.RecordsWritten)

	content, err := os.ReadFile(path)
	r.NoError(err)
	r.Equal("id,name\n1,a\n2,b\n3,c\n4,d\n5,e\n6,f\nTotal Records: 6\n", string(content))
	r.NoError(mock.ExpectationsWereMet())
}

func TestPagingStream_FullLastPage(t *testing.T) {
	r := require.New(t)

	source, mock := newPagingSource(t)
	defer source.Close()

	// a full page forces one more query that comes back empty
	mock.ExpectQuery("SELECT id, name FROM users ORDER BY id LIMIT 2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "a").
			AddRow(int64(2), "b"))
	mock.ExpectQuery("SELECT id, name FROM users WHERE id > ? ORDER BY id LIMIT 2").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	stream, err := source.Open(context.Background(), pagingQuery(2))
	r.NoError(err)
	defer stream.Close()

	rows := drain(t, stream)
	r.Len(rows, 2)
	r.NoError(mock.ExpectationsWereMet())
}

func TestPagingStream_Rewind(t *testing.T) {
	r := require.New(t)

	source, mock := newPagingSource(t)
	defer source.Close()

	firstPage := "SELECT id, name FROM users ORDER BY id LIMIT 2"
	nextPage := "SELECT id, name FROM users WHERE id > ? ORDER BY id LIMIT 2"
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "a").
			AddRow(int64(2), "b")
	}
	empty := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name"})
	}

	// each pass over the full first page probes one empty page after it
	mock.ExpectQuery(firstPage).WillReturnRows(rows())
	mock.ExpectQuery(nextPage).WithArgs(int64(2)).WillReturnRows(empty())
	mock.ExpectQuery(firstPage).WillReturnRows(rows())
	mock.ExpectQuery(nextPage).WithArgs(int64(2)).WillReturnRows(empty())

	stream, err := source.Open(context.Background(), pagingQuery(2))
	r.NoError(err)
	defer stream.Close()

	replayable, ok := stream.(core.Replayable)
	r.True(ok)

	replayable.MarkChunk()

	first := drain(t, stream)
	r.Len(first, 2)

	// rewinding re-issues the page from the marked ordering key
	r.NoError(replayable.Rewind())

	second := drain(t, stream)
	r.Equal(first, second)
	r.NoError(mock.ExpectationsWereMet())
}

func TestPagingStream_RewindMidStream(t *testing.T) {
	r := require.New(t)

	source, mock := newPagingSource(t)
	defer source.Close()

	mock.ExpectQuery("SELECT id, name FROM users ORDER BY id LIMIT 2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "a").
			AddRow(int64(2), "b"))
	afterFirst := "SELECT id, name FROM users WHERE id > ? ORDER BY id LIMIT 2"
	mock.ExpectQuery(afterFirst).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "b").
			AddRow(int64(3), "c"))
	mock.ExpectQuery(afterFirst).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	stream, err := source.Open(context.Background(), pagingQuery(2))
	r.NoError(err)
	defer stream.Close()

	replayable := stream.(core.Replayable)

	row, err := stream.Next()
	r.NoError(err)
	r.Equal(core.Row{int64(1), "a"}, row)

	// mark after the first row, then rewind from inside the page
	replayable.MarkChunk()
	_, err = stream.Next()
	r.NoError(err)
	r.NoError(replayable.Rewind())

	rows := drain(t, stream)
	r.Len(rows, 2)
	r.Equal(core.Row{int64(2), "b"}, rows[0])
	r.Equal(core.Row{int64(3), "c"}, rows[1])
	r.NoError(mock.ExpectationsWereMet())
}

func TestPagingSource_RequiresOrderAndPageSize(t *testing.T) {
	r := require.New(t)

	source, _ := newPagingSource(t)
	defer source.Close()

	_, err := source.Open(context.Background(), &core.Query{Table: "users", PageSize: 10})
	r.Error(err)
	r.True(core.IsConfig(err))

	_, err = source.Open(context.Background(), &core.Query{Table: "users", OrderBy: "id"})
	r.Error(err)
	r.True(core.IsConfig(err))
}

func TestPagingSource_OrderKeyMustBeSelected(t *testing.T) {
	r := require.New(t)

	source, mock := newPagingSource(t)
	defer source.Close()

	mock.ExpectQuery("SELECT name FROM users ORDER BY id LIMIT 2").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a"))

	_, err := source.Open(context.Background(), &core.Query{
		Table:    "users",
		Columns:  []string{"name"},
		OrderBy:  "id",
		PageSize: 2,
	})
	r.Error(err)
	r.True(core.IsConfig(err))
}
