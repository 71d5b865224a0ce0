package stage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/molnia/dbatch/core"
)

// Filter drops records the predicate rejects.
func Filter(pred func(core.Record) bool) Func {
	return func(r core.Record) (*core.Record, error) {
		if !pred(r) {
			return nil, nil
		}
		return &r, nil
	}
}

// FilterField drops records where the named field does not satisfy the
// operator. Supported operators: eq, neq, gt, lt, contains.
func FilterField(field, op string, value any) Func {
	return func(r core.Record) (*core.Record, error) {
		v, ok := r.Get(field)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", field)
		}

		keep := false
		switch op {
		case "eq":
			keep = fmt.Sprint(v) == fmt.Sprint(value)
		case "neq":
			keep = fmt.Sprint(v) != fmt.Sprint(value)
		case "contains":
			keep = strings.Contains(fmt.Sprint(v), fmt.Sprint(value))
		case "gt":
			keep = toFloat(v) > toFloat(value)
		case "lt":
			keep = toFloat(v) < toFloat(value)
		default:
			return nil, fmt.Errorf("unknown filter operator %q", op)
		}

		if !keep {
			return nil, nil
		}
		return &r, nil
	}
}

// Map replaces the value of a field with fn(value).
func Map(field string, fn func(any) (any, error)) Func {
	return func(r core.Record) (*core.Record, error) {
		v, ok := r.Get(field)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", field)
		}
		mapped, err := fn(v)
		if err != nil {
			return nil, err
		}
		out := r.With(field, mapped)
		return &out, nil
	}
}

// Rename renames fields according to the mapping. Unknown fields are left
// alone.
func Rename(mapping map[string]string) Func {
	return func(r core.Record) (*core.Record, error) {
		out := r
		for from, to := range mapping {
			v, ok := out.Get(from)
			if !ok {
				continue
			}
			out = out.Without(from).With(to, v)
		}
		return &out, nil
	}
}

// Uppercase maps a string field to upper case.
func Uppercase(field string) Func {
	return Map(field, func(v any) (any, error) {
		return strings.ToUpper(fmt.Sprint(v)), nil
	})
}

// Lowercase maps a string field to lower case.
func Lowercase(field string) Func {
	return Map(field, func(v any) (any, error) {
		return strings.ToLower(fmt.Sprint(v)), nil
	})
}

// Set adds a constant field to every record.
func Set(field string, value any) Func {
	return func(r core.Record) (*core.Record, error) {
		out := r.With(field, value)
		return &out, nil
	}
}

// Timestamp adds the processing time to every record.
func Timestamp(field string) Func {
	return func(r core.Record) (*core.Record, error) {
		out := r.With(field, time.Now().UTC().Format(time.RFC3339))
		return &out, nil
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		f, _ := strconv.ParseFloat(fmt.Sprint(v), 64)
		return f
	}
}
