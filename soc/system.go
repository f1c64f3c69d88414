// Package soc wires the trap controller to its collaborators: the CSR file,
// the fetch stage, the acknowledging pipeline controller, and the stimulus
// schedule. It advances the whole model cycle by cycle and collects
// statistics and an optional trace.
package soc

import (
	"fmt"
	"io"

	"github.com/Priyanshumishra77/ibex/ctrl"
	"github.com/Priyanshumishra77/ibex/csr"
	"github.com/Priyanshumishra77/ibex/exc"
	"github.com/Priyanshumishra77/ibex/fetch"
	"github.com/Priyanshumishra77/ibex/scenario"
)

// nop is the placeholder instruction word preloaded at handler entries.
const nop uint32 = 0x0000_0013

// resetOffset places the boot entry right past the interrupt table.
const resetOffset uint32 = 0x80

// Option configures a System.
type Option func(*System)

// WithTrace writes a per-cycle trace row to w.
func WithTrace(w io.Writer) Option {
	return func(s *System) { s.trace = w }
}

// WithAcknowledger replaces the acknowledge model built from the scenario.
func WithAcknowledger(a Acknowledger) Option {
	return func(s *System) { s.ack = a }
}

// System is the whole trap control model.
type System struct {
	sc *scenario.Scenario

	controller *ctrl.Controller
	csrs       *csr.File
	fetchUnit  *fetch.Unit
	ack        Acknowledger

	cycle uint64
	// irq holds the interrupt lines as the devices drive them, before the
	// mie mask.
	irq uint32
	// held carries the decode and load/store triggers. A faulting
	// instruction waits in the pipeline until the trap is accepted, so
	// these stay asserted until the flush.
	held        exc.Sources
	serviceLeft uint64

	reqOpen  bool
	reqSince uint64

	events     map[uint64][]scenario.Event
	stats      Stats
	trace      io.Writer
	headerDone bool
}

// New builds a System for the scenario. The scenario should be validated
// first. The handler table is populated with placeholder instructions so
// the fetch model has something to fetch.
func New(sc *scenario.Scenario, opts ...Option) *System {
	s := &System{
		sc:         sc,
		controller: ctrl.New(),
		csrs:       csr.New(),
		events:     make(map[uint64][]scenario.Event),
	}

	s.csrs.SetIRQEnable(sc.IRQEnable)
	_ = s.csrs.Write(csr.AddrMTVec, sc.VectorBase)

	mem := fetch.NewMemory()
	loadHandlerStubs(mem, sc.VectorBase)
	for _, cw := range sc.Code {
		mem.Write32(uint64(cw.Addr), cw.Value)
	}

	var icache *fetch.Cache
	if sc.UseICache {
		icache = fetch.NewCache(fetch.DefaultICacheConfig(), mem)
	}
	s.fetchUnit = fetch.NewUnit(mem, icache)
	s.fetchUnit.SetPC(sc.VectorBase + resetOffset)

	if len(sc.AckPattern) > 0 {
		s.ack = &PatternAck{Grants: sc.AckPattern}
	} else {
		s.ack = NewDelayAck(sc.AckLatency)
	}

	for _, ev := range sc.Events {
		s.events[ev.Cycle] = append(s.events[ev.Cycle], ev)
	}

	s.stats.CauseCounts = make(map[string]uint64)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// loadHandlerStubs writes placeholder words at every handler entry and the
// boot entry.
func loadHandlerStubs(mem *fetch.Memory, base uint32) {
	for line := 0; line < 32; line++ {
		mem.Write32(uint64(fetch.HandlerPC(base, exc.EntryIRQ, uint8(line))), nop)
	}
	mem.Write32(uint64(fetch.HandlerPC(base, exc.EntryIllegal, 0)), nop)
	mem.Write32(uint64(fetch.HandlerPC(base, exc.EntryECall, 0)), nop)
	mem.Write32(uint64(fetch.HandlerPC(base, exc.EntryLoadStore, 0)), nop)
	mem.Write32(uint64(base+resetOffset), nop)
}

// Tick advances the whole model by one clock cycle.
func (s *System) Tick() {
	mret := s.applyEvents()

	// The handler return counter runs while the controller is servicing.
	if s.controller.State() == ctrl.StateService && s.sc.HandlerCycles > 0 {
		if s.serviceLeft > 0 {
			s.serviceLeft--
		}
		if s.serviceLeft == 0 {
			mret = true
		}
	}

	src := s.buildSources(mret)

	req := s.controller.Req(src)
	ack := s.ack.Ack(req)

	stateBefore := s.controller.State()
	out := s.controller.Tick(src, ack)

	s.account(req, ack, out)

	switch {
	case out.SaveCause:
		s.enterHandler()
	case stateBefore == ctrl.StateService && src.MRet:
		s.fetchUnit.Redirect(s.csrs.Ret())
	default:
		s.fetchUnit.Step()
	}

	s.traceRow(req, ack, out)

	s.cycle++
	s.stats.Cycles++
}

// Run advances the model to the end of the scenario and returns the stats.
func (s *System) Run() Stats {
	for s.cycle < s.sc.Cycles {
		s.Tick()
	}
	return s.stats
}

// applyEvents drives this cycle's scheduled stimulus and reports whether an
// explicit return from trap fires.
func (s *System) applyEvents() bool {
	mret := false
	for _, ev := range s.events[s.cycle] {
		switch ev.Action {
		case scenario.ActionRaiseIRQ:
			s.irq |= 1 << ev.Line
		case scenario.ActionClearIRQ:
			s.irq &^= 1 << ev.Line
		case scenario.ActionIllegal:
			s.held.IllegalInsn = true
		case scenario.ActionECall:
			s.held.ECall = true
		case scenario.ActionLoadFault:
			s.held.LoadFault = true
		case scenario.ActionStoreFault:
			s.held.StoreFault = true
		case scenario.ActionMRet:
			mret = true
		case scenario.ActionEnableIRQ:
			s.csrs.SetIRQEnable(true)
		case scenario.ActionDisableIRQ:
			s.csrs.SetIRQEnable(false)
		}
	}
	return mret
}

// buildSources assembles the controller's input bundle for this cycle.
func (s *System) buildSources(mret bool) exc.Sources {
	src := s.held
	src.IRQ = s.csrs.Mask(s.irq)
	src.IRQEnable = s.csrs.IRQEnabled()
	src.MRet = mret
	return src
}

// enterHandler latches the trap context into the CSR file and redirects
// fetch to the handler entry.
func (s *System) enterHandler() {
	dec := s.controller.Latched()

	s.csrs.Capture(dec.Cause, s.fetchUnit.PC())
	s.fetchUnit.Redirect(fetch.HandlerPC(s.csrs.VectorBase(), dec.Entry, dec.Cause.Code()))

	// The accepted trap flushes the pipeline; the held decode and
	// load/store triggers go with it.
	s.held = exc.Sources{}
	s.serviceLeft = s.sc.HandlerCycles
}

// account updates the run statistics for one cycle.
func (s *System) account(req, ack bool, out ctrl.Outputs) {
	if req && !s.reqOpen {
		s.reqOpen = true
		s.reqSince = s.cycle
		s.stats.Requests++
	}
	if req && !ack {
		s.stats.WaitCycles++
	}
	if out.SaveCause {
		s.stats.Episodes++
		s.stats.CauseCounts[s.controller.Latched().Cause.String()]++

		waited := s.cycle - s.reqSince
		s.stats.AckLatencyTotal += waited
		if waited > s.stats.MaxAckLatency {
			s.stats.MaxAckLatency = waited
		}
		s.reqOpen = false
	}
	if s.controller.State() == ctrl.StateService {
		s.stats.ServiceCycles++
	}
}

// traceRow emits one trace line for this cycle.
func (s *System) traceRow(req, ack bool, out ctrl.Outputs) {
	if s.trace == nil {
		return
	}
	if !s.headerDone {
		fmt.Fprintln(s.trace, "cycle\tstate\treq\tack\tsave\tcause\tentry\tpc")
		s.headerDone = true
	}
	fmt.Fprintf(s.trace, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%#08x\n",
		s.cycle, s.controller.State(), bit(req), bit(ack), bit(out.SaveCause),
		out.Cause, out.Entry, s.fetchUnit.PC())
}

// bit renders a signal level for the trace.
func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Cycle returns the number of cycles simulated so far.
func (s *System) Cycle() uint64 {
	return s.cycle
}

// Stats returns the statistics collected so far.
func (s *System) Stats() Stats {
	return s.stats
}

// Controller exposes the trap controller for inspection.
func (s *System) Controller() *ctrl.Controller {
	return s.controller
}

// CSRs exposes the register file model.
func (s *System) CSRs() *csr.File {
	return s.csrs
}

// Fetch exposes the fetch stage model.
func (s *System) Fetch() *fetch.Unit {
	return s.fetchUnit
}

// Reset returns the whole model to its post-construction state.
func (s *System) Reset() {
	s.controller.Reset()
	s.ack.Reset()
	s.fetchUnit.Reset()
	s.fetchUnit.SetPC(s.sc.VectorBase + resetOffset)

	s.csrs = csr.New()
	s.csrs.SetIRQEnable(s.sc.IRQEnable)
	_ = s.csrs.Write(csr.AddrMTVec, s.sc.VectorBase)

	s.cycle = 0
	s.irq = 0
	s.held = exc.Sources{}
	s.serviceLeft = 0
	s.reqOpen = false
	s.reqSince = 0
	s.stats = Stats{CauseCounts: make(map[string]uint64)}
	s.headerDone = false
}
