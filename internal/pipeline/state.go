package pipeline

import "fmt"

// State is the lifecycle position of one run.
type State int

const (
	StateCreated State = iota
	StateStaging
	StateScanning
	StateRemapping
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStaging:
		return "staging"
	case StateScanning:
		return "scanning"
	case StateRemapping:
		return "remapping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// next lists the legal transitions out of each state.
var next = map[State][]State{
	StateCreated:   {StateStaging},
	StateStaging:   {StateScanning, StateFailed},
	StateScanning:  {StateRemapping, StateFailed},
	StateRemapping: {StateDone, StateFailed},
}

// CanTransition reports whether a run in s may move to to.
func (s State) CanTransition(to State) bool {
	for _, n := range next[s] {
		if n == to {
			return true
		}
	}
	return false
}
