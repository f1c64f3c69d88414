package soc

// Acknowledger models the pipeline controller's side of the handshake: it
// sees the request line each cycle and decides whether to grant it. The
// decision is combinational, so a grant can land in the same cycle the
// request first appears.
type Acknowledger interface {
	// Ack returns the acknowledge line for this cycle, given the request
	// line as it reads this cycle.
	Ack(req bool) bool
	// Reset returns the model to its initial state.
	Reset()
}

// ImmediateAck grants every request in the cycle it appears.
type ImmediateAck struct{}

func (ImmediateAck) Ack(req bool) bool { return req }

func (ImmediateAck) Reset() {}

// DelayAck grants a request after a fixed number of busy cycles, modeling a
// pipeline that needs time to reach a flushable point.
type DelayAck struct {
	// Delay is the number of cycles a request stays unanswered.
	Delay uint64

	waited uint64
}

// NewDelayAck returns a DelayAck with the given busy time. Zero grants in
// the same cycle.
func NewDelayAck(delay uint64) *DelayAck {
	return &DelayAck{Delay: delay}
}

func (a *DelayAck) Ack(req bool) bool {
	if !req {
		a.waited = 0
		return false
	}
	if a.waited >= a.Delay {
		a.waited = 0
		return true
	}
	a.waited++
	return false
}

func (a *DelayAck) Reset() {
	a.waited = 0
}

// PatternAck replays an explicit grant schedule, consuming one entry per
// request cycle. Once the schedule runs out every request is granted.
type PatternAck struct {
	Grants []bool

	pos int
}

func (a *PatternAck) Ack(req bool) bool {
	if !req {
		return false
	}
	if a.pos >= len(a.Grants) {
		return true
	}
	g := a.Grants[a.pos]
	a.pos++
	return g
}

func (a *PatternAck) Reset() {
	a.pos = 0
}
