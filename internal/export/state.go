package export

// State is the stage an export invocation is in
type State int32

const (
	StateIdle State = iota
	StateCapturing
	StateSlicing
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateSlicing:
		return "slicing"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends an invocation
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
