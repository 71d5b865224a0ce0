package stage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/stage"
)

func record(pairs ...any) core.Record {
	header := make(core.Header, 0, len(pairs)/2)
	values := make(core.Row, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		header = append(header, pairs[i].(string))
		values = append(values, pairs[i+1])
	}
	return core.NewRecord(header, values)
}

func TestPipeline_Order(t *testing.T) {
	r := require.New(t)

	pipeline := stage.Pipeline{
		stage.Set("status", "new"),
		stage.Uppercase("status"),
	}

	out, err := pipeline.Apply(record("id", 1))
	r.NoError(err)
	r.NotNil(out)

	v, _ := out.Get("status")
	r.Equal("NEW", v)
}

func TestPipeline_NilShortCircuits(t *testing.T) {
	r := require.New(t)

	called := false
	pipeline := stage.Pipeline{
		stage.Filter(func(core.Record) bool { return false }),
		func(rec core.Record) (*core.Record, error) {
			called = true
			return &rec, nil
		},
	}

	out, err := pipeline.Apply(record("id", 1))
	r.NoError(err)
	r.Nil(out)
	r.False(called)
}

func TestPipeline_StageErrorIsSkippable(t *testing.T) {
	r := require.New(t)

	pipeline := stage.Pipeline{
		func(core.Record) (*core.Record, error) {
			return nil, errors.New("bad value")
		},
	}

	_, err := pipeline.Apply(record("id", 1))
	r.Error(err)
	r.True(core.IsSkippable(err))
}

func TestPipeline_ClassifiedErrorKeptAsIs(t *testing.T) {
	r := require.New(t)

	pipeline := stage.Pipeline{
		func(core.Record) (*core.Record, error) {
			return nil, core.Transient(errors.New("lookup timeout"))
		},
	}

	_, err := pipeline.Apply(record("id", 1))
	r.Error(err)
	r.True(core.IsTransient(err))
	r.False(core.IsSkippable(err))
}

func TestFilterField(t *testing.T) {
	tests := []struct {
		name  string
		op    string
		value any
		keep  bool
	}{
		{name: "eq match", op: "eq", value: "ACTIVE", keep: true},
		{name: "eq miss", op: "eq", value: "INACTIVE", keep: false},
		{name: "neq", op: "neq", value: "INACTIVE", keep: true},
		{name: "contains", op: "contains", value: "ACT", keep: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)

			fn := stage.FilterField("status", tt.op, tt.value)
			out, err := fn(record("status", "ACTIVE"))
			r.NoError(err)
			if tt.keep {
				r.NotNil(out)
			} else {
				r.Nil(out)
			}
		})
	}
}

func TestFilterField_Numeric(t *testing.T) {
	r := require.New(t)

	gt := stage.FilterField("amount", "gt", 10)
	out, err := gt(record("amount", 15))
	r.NoError(err)
	r.NotNil(out)

	out, err = gt(record("amount", 5))
	r.NoError(err)
	r.Nil(out)

	lt := stage.FilterField("amount", "lt", "10.5")
	out, err = lt(record("amount", 10.0))
	r.NoError(err)
	r.NotNil(out)
}

func TestFilterField_UnknownFieldAndOperator(t *testing.T) {
	r := require.New(t)

	_, err := stage.FilterField("missing", "eq", "x")(record("id", 1))
	r.Error(err)

	_, err = stage.FilterField("id", "between", "x")(record("id", 1))
	r.Error(err)
}

func TestRename(t *testing.T) {
	r := require.New(t)

	fn := stage.Rename(map[string]string{"usr_nm": "username", "missing": "other"})
	out, err := fn(record("usr_nm", "admin", "id", 1))
	r.NoError(err)

	v, ok := out.Get("username")
	r.True(ok)
	r.Equal("admin", v)

	_, ok = out.Get("usr_nm")
	r.False(ok)
	_, ok = out.Get("other")
	r.False(ok)
}

func TestMap(t *testing.T) {
	r := require.New(t)

	fn := stage.Map("id", func(v any) (any, error) {
		return v.(int) * 10, nil
	})
	out, err := fn(record("id", 4))
	r.NoError(err)

	v, _ := out.Get("id")
	r.Equal(40, v)
}

func TestFromSpecs(t *testing.T) {
	r := require.New(t)

	pipeline, err := stage.FromSpecs([]stage.Spec{
		{Kind: "filter", Field: "status", Op: "eq", Value: "ACTIVE"},
		{Kind: "uppercase", Field: "name"},
		{Kind: "set", Field: "source", Value: "legacy"},
	})
	r.NoError(err)
	r.Len(pipeline, 3)

	out, err := pipeline.Apply(record("status", "ACTIVE", "name", "first"))
	r.NoError(err)
	r.NotNil(out)

	v, _ := out.Get("name")
	r.Equal("FIRST", v)
	v, _ = out.Get("source")
	r.Equal("legacy", v)

	out, err = pipeline.Apply(record("status", "INACTIVE", "name", "second"))
	r.NoError(err)
	r.Nil(out)
}

func TestFromSpec_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec stage.Spec
	}{
		{name: "unknown kind", spec: stage.Spec{Kind: "explode"}},
		{name: "filter without op", spec: stage.Spec{Kind: "filter", Field: "x"}},
		{name: "rename without mapping", spec: stage.Spec{Kind: "rename"}},
		{name: "uppercase without field", spec: stage.Spec{Kind: "uppercase"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)

			_, err := stage.FromSpec(tt.spec)
			r.Error(err)
			r.True(core.IsConfig(err))
		})
	}
}
