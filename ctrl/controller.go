// Package ctrl implements the trap controller: the handshake sequencer and
// the decision register that arbitrate trap requests toward the pipeline
// controller.
//
// The controller is evaluated once per clock cycle. A Tick first derives the
// cycle's combinational outputs from the sequencer state, the fresh cause
// selection, and the latched decision, then applies the register update as
// the clock edge. The request/acknowledge handshake resolves within a single
// cycle: an acknowledge sampled in the same cycle as a new request moves the
// sequencer straight to servicing.
package ctrl

import "github.com/Priyanshumishra77/ibex/exc"

// Outputs is the controller's per-cycle output bundle.
type Outputs struct {
	// Req requests a flush-and-redirect from the pipeline controller. Once
	// raised it stays asserted until acknowledged.
	Req bool
	// Cause is the trap cause visible this cycle: the fresh selection while
	// a new trap is being raised from idle, the latched decision otherwise.
	Cause exc.Cause
	// Entry is the handler entry selector paired with Cause.
	Entry exc.Entry
	// VectorIndex is the low 5 bits of Cause, indexing the vector table.
	VectorIndex uint8
	// SaveCause pulses for exactly one cycle per trap, on the transition
	// into servicing. The CSR file latches the cause and return PC on it.
	SaveCause bool
}

// Controller owns the registered state of the trap control path.
type Controller struct {
	state   State
	latched exc.Decision
}

// New returns a controller in its reset state.
func New() *Controller {
	return &Controller{}
}

// Reset forces both registers to their reset values, as the asynchronous
// reset line would: sequencer idle, decision register cleared.
func (c *Controller) Reset() {
	*c = Controller{}
}

// State returns the current sequencer state.
func (c *Controller) State() State {
	return c.state
}

// Latched returns the decision register contents.
func (c *Controller) Latched() exc.Decision {
	return c.latched
}

// Req returns the request line as it reads this cycle, before the clock
// edge. The acknowledging side samples the request combinationally, so a
// harness calls Req first, resolves the acknowledge, then calls Tick with
// both in hand.
func (c *Controller) Req(src exc.Sources) bool {
	switch c.state {
	case StateIdle:
		return src.Pending()
	case StateWaitAck:
		return true
	default:
		return false
	}
}

// Tick evaluates one clock cycle: it computes the outputs visible during the
// cycle, then applies the register update. ack must be the acknowledge line
// as sampled in this same cycle.
func (c *Controller) Tick(src exc.Sources, ack bool) Outputs {
	fresh := exc.Select(src)

	out := Outputs{Cause: c.latched.Cause, Entry: c.latched.Entry}
	next := c.state

	switch c.state {
	case StateIdle:
		if src.Pending() {
			out.Req = true
			out.Cause = fresh.Cause
			out.Entry = fresh.Entry
			if ack {
				out.SaveCause = true
				next = StateService
			} else {
				next = StateWaitAck
			}
		}

	case StateWaitAck:
		// A raised request is never withdrawn, even if the sources that
		// raised it have since gone away.
		out.Req = true
		if ack {
			out.SaveCause = true
			next = StateService
		}

	case StateService:
		if src.MRet {
			next = StateIdle
		}

	default:
		// Not reachable through the public API. Recover to idle without
		// asserting anything.
		next = StateIdle
	}

	out.VectorIndex = out.Cause.Code()

	// Clock edge. The decision register captures the selection present at
	// acknowledgment time, on the same edge the CSR file samples.
	if out.SaveCause {
		c.latched = fresh
	}
	c.state = next

	return out
}
