package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/sink"
)

// Partition is one independent slice of a larger migration: its own source
// connection, a query restricted to a disjoint key range, and its own
// artifact. Partitions compose whole single-threaded runs - there is no
// parallelism inside a run.
type Partition struct {
	Source core.Source
	Query  *core.Query
	Sink   *sink.Sink
}

// RunPartitions executes the partitions concurrently, one engine each.
// The first failing partition cancels the rest; every partition's terminal
// result is returned regardless.
func RunPartitions(ctx context.Context, partitions []Partition, opts ...Option) ([]*core.ExecutionResult, error) {
	results := make([]*core.ExecutionResult, len(partitions))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range partitions {
		i, p := i, p
		g.Go(func() error {
			result, err := New(p.Source, p.Query, p.Sink, opts...).Run(ctx)
			results[i] = result
			return err
		})
	}

	err := g.Wait()
	return results, err
}

// SplitQuery derives up to n disjoint sub-queries from one query by slicing
// the ordering key range [lo, hi] into contiguous bands. The key must be
// numeric; each sub-query keeps the original columns, filter and ordering.
func SplitQuery(q *core.Query, lo, hi int64, n int) []*core.Query {
	if q.OrderBy == "" || n < 1 || hi < lo {
		return nil
	}

	span := hi - lo + 1
	if int64(n) > span {
		n = int(span)
	}

	out := make([]*core.Query, 0, n)
	for i := 0; i < n; i++ {
		start := lo + span*int64(i)/int64(n)
		end := lo + span*int64(i+1)/int64(n) - 1

		cond := fmt.Sprintf("%s >= %d AND %s <= %d", q.OrderBy, start, q.OrderBy, end)
		if q.Where != "" {
			cond = fmt.Sprintf("(%s) AND %s", q.Where, cond)
		}

		sub := *q
		sub.Where = cond
		out = append(out, &sub)
	}

	return out
}
