package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/molnia/dbatch/core"
)

func TestRecord_Get(t *testing.T) {
	r := require.New(t)

	record := core.NewRecord(core.Header{"id", "name"}, core.Row{1, "first"})

	v, ok := record.Get("id")
	r.True(ok)
	r.Equal(1, v)

	v, ok = record.Get("name")
	r.True(ok)
	r.Equal("first", v)

	_, ok = record.Get("missing")
	r.False(ok)
}

func TestRecord_WithDoesNotMutate(t *testing.T) {
	r := require.New(t)

	original := core.NewRecord(core.Header{"id", "status"}, core.Row{1, "ACTIVE"})

	updated := original.With("status", "INACTIVE")
	enriched := original.With("source", "crm")

	v, _ := original.Get("status")
	r.Equal("ACTIVE", v)

	v, _ = updated.Get("status")
	r.Equal("INACTIVE", v)

	_, ok := original.Get("source")
	r.False(ok)

	v, ok = enriched.Get("source")
	r.True(ok)
	r.Equal("crm", v)
	r.Equal(3, enriched.Len())
}

func TestRecord_Without(t *testing.T) {
	r := require.New(t)

	original := core.NewRecord(core.Header{"id", "secret", "name"}, core.Row{1, "x", "first"})

	stripped := original.Without("secret")
	r.Equal(core.Header{"id", "name"}, stripped.Header())
	r.Equal(2, stripped.Len())

	// unknown field is a no-op
	same := original.Without("missing")
	r.Equal(3, same.Len())
}

func TestRecord_ValuesIsCopy(t *testing.T) {
	r := require.New(t)

	record := core.NewRecord(core.Header{"id"}, core.Row{1})

	values := record.Values()
	values[0] = 99

	v, _ := record.Get("id")
	r.Equal(1, v)
}
