// Package stage holds the record transforms applied between the source and
// the sink. A stage is a plain function value - composition is function
// chaining, order is the only thing that determines the output.
package stage

import (
	"github.com/molnia/dbatch/core"
)

// Func is a single transform. It returns a new record, or nil to drop the
// input. Stages must not keep state between calls - they can be reordered
// and tested in isolation.
type Func func(core.Record) (*core.Record, error)

// Pipeline applies stages left to right. A nil record from any stage
// short-circuits the rest.
type Pipeline []Func

func (p Pipeline) Apply(record core.Record) (*core.Record, error) {
	current := record
	for _, fn := range p {
		next, err := fn(current)
		if err != nil {
			if core.IsSkippable(err) || core.IsTransient(err) {
				return nil, err
			}
			// a stage failure makes that one record skippable
			return nil, core.Skippable(err)
		}
		if next == nil {
			return nil, nil
		}
		current = *next
	}
	return &current, nil
}
