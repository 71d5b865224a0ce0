package core

type RunState int

const (
	RunStateUnknown RunState = iota
	RunStateRunning
	RunStateCompleted
	RunStateFailed
)

func RunStateFromString(s string) RunState {
	switch s {
	case RunStateRunning.String():
		return RunStateRunning
	case RunStateCompleted.String():
		return RunStateCompleted
	case RunStateFailed.String():
		return RunStateFailed
	default:
		return RunStateUnknown
	}
}

func (s RunState) String() string {
	switch s {
	case RunStateRunning:
		return "running"
	case RunStateCompleted:
		return "completed"
	case RunStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s RunState) Terminal() bool {
	return s == RunStateCompleted || s == RunStateFailed
}
