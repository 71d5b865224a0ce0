package stage

import (
	"github.com/molnia/dbatch/core"
)

// Spec is the declarative form of a stage, as it appears in job
// configuration.
type Spec struct {
	Kind    string            `yaml:"kind"`
	Field   string            `yaml:"field,omitempty"`
	Op      string            `yaml:"op,omitempty"`
	Value   string            `yaml:"value,omitempty"`
	Mapping map[string]string `yaml:"mapping,omitempty"`
}

// FromSpec builds a single stage from its declarative form.
func FromSpec(spec Spec) (Func, error) {
	switch spec.Kind {
	case "filter":
		if spec.Field == "" || spec.Op == "" {
			return nil, core.Configf("filter stage requires field and op")
		}
		return FilterField(spec.Field, spec.Op, spec.Value), nil
	case "rename":
		if len(spec.Mapping) == 0 {
			return nil, core.Configf("rename stage requires a mapping")
		}
		return Rename(spec.Mapping), nil
	case "uppercase":
		if spec.Field == "" {
			return nil, core.Configf("uppercase stage requires a field")
		}
		return Uppercase(spec.Field), nil
	case "lowercase":
		if spec.Field == "" {
			return nil, core.Configf("lowercase stage requires a field")
		}
		return Lowercase(spec.Field), nil
	case "set":
		if spec.Field == "" {
			return nil, core.Configf("set stage requires a field")
		}
		return Set(spec.Field, spec.Value), nil
	case "timestamp":
		if spec.Field == "" {
			return nil, core.Configf("timestamp stage requires a field")
		}
		return Timestamp(spec.Field), nil
	default:
		return nil, core.Configf("unknown stage kind %q", spec.Kind)
	}
}

// FromSpecs builds an ordered pipeline from declarative stage specs.
func FromSpecs(specs []Spec) (Pipeline, error) {
	pipeline := make(Pipeline, 0, len(specs))
	for _, spec := range specs {
		fn, err := FromSpec(spec)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, fn)
	}
	return pipeline, nil
}
