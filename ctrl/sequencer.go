package ctrl

import "fmt"

// State is the handshake sequencer state. It is one of the two registers in
// the trap control path; everything else is recomputed every cycle.
type State uint8

const (
	// StateIdle accepts new trap requests. Reset lands here.
	StateIdle State = iota
	// StateWaitAck holds a raised request until the pipeline controller
	// acknowledges it.
	StateWaitAck
	// StateService spans the cycles from acknowledgment to the handler's
	// return from trap.
	StateService
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitAck:
		return "wait-ack"
	case StateService:
		return "service"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}
