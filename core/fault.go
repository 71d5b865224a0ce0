package core

// FaultPolicy bounds how a run reacts to classified failures.
//
// RetryLimit is the number of re-attempts of a single chunk after a
// retryable failure; exhausting it fails the run. SkipLimit bounds the
// cumulative number of records dropped over the whole run; exceeding it
// fails the run. A SkipLimit of zero means no record may be skipped.
type FaultPolicy struct {
	RetryLimit int
	SkipLimit  int

	// Retryable and Skippable classify errors. When nil, the default
	// classifiers based on the core error taxonomy are used.
	Retryable func(error) bool
	Skippable func(error) bool
}

func DefaultFaultPolicy() *FaultPolicy {
	return &FaultPolicy{
		RetryLimit: 3,
		SkipLimit:  0,
	}
}

// Normalize returns a copy with nil classifiers replaced by the defaults.
func (p *FaultPolicy) Normalize() *FaultPolicy {
	out := *p
	if out.Retryable == nil {
		out.Retryable = IsTransient
	}
	if out.Skippable == nil {
		out.Skippable = IsSkippable
	}
	return &out
}
