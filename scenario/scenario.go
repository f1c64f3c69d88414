// Package scenario defines the JSON stimulus format that drives the trap
// control model: interrupt line activity, decode and load/store trigger
// events, acknowledge timing, and handler behavior.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
)

// Action names a stimulus event kind.
type Action string

const (
	// ActionRaiseIRQ asserts an interrupt line; it stays asserted until
	// cleared.
	ActionRaiseIRQ Action = "raise_irq"
	// ActionClearIRQ deasserts an interrupt line.
	ActionClearIRQ Action = "clear_irq"
	// ActionIllegal marks an illegal instruction reaching decode.
	ActionIllegal Action = "illegal"
	// ActionECall marks an environment call reaching decode.
	ActionECall Action = "ecall"
	// ActionLoadFault marks a failed load in the load/store unit.
	ActionLoadFault Action = "load_fault"
	// ActionStoreFault marks a failed store in the load/store unit.
	ActionStoreFault Action = "store_fault"
	// ActionMRet makes the handler return this cycle. Only needed when
	// handler_cycles is zero.
	ActionMRet Action = "mret"
	// ActionEnableIRQ sets the global interrupt enable.
	ActionEnableIRQ Action = "enable_irq"
	// ActionDisableIRQ clears the global interrupt enable.
	ActionDisableIRQ Action = "disable_irq"
)

// Event is one scheduled stimulus.
type Event struct {
	// Cycle is when the event applies.
	Cycle uint64 `json:"cycle"`
	// Action selects what happens.
	Action Action `json:"action"`
	// Line is the interrupt line for raise_irq and clear_irq.
	Line uint8 `json:"line,omitempty"`
}

// Scenario describes one simulation run.
type Scenario struct {
	// Name labels the run in reports.
	Name string `json:"name"`

	// Cycles is the number of cycles to simulate.
	Cycles uint64 `json:"cycles"`

	// VectorBase is the handler table base address. Must be 256-byte
	// aligned.
	VectorBase uint32 `json:"vector_base"`

	// AckLatency is the number of cycles the pipeline controller stays
	// busy before granting a trap request. Zero grants in the same cycle.
	AckLatency uint64 `json:"ack_latency"`

	// AckPattern, when present, replaces the fixed latency with an
	// explicit per-request-cycle grant schedule.
	AckPattern []bool `json:"ack_pattern,omitempty"`

	// HandlerCycles is the number of servicing cycles before the handler
	// returns on its own. Zero disables the automatic return; the event
	// list must supply mret events instead.
	HandlerCycles uint64 `json:"handler_cycles"`

	// IRQEnable is the initial global interrupt enable.
	IRQEnable bool `json:"irq_enable"`

	// UseICache enables the handler instruction cache model.
	UseICache bool `json:"use_icache"`

	// Events is the stimulus schedule. Order does not matter.
	Events []Event `json:"events"`

	// Code optionally places instruction words in the handler image,
	// overriding the preloaded stubs.
	Code []CodeWord `json:"code,omitempty"`
}

// CodeWord places one instruction word in the handler image.
type CodeWord struct {
	// Addr is the word-aligned byte address.
	Addr uint32 `json:"addr"`
	// Value is the instruction word.
	Value uint32 `json:"value"`
}

// Default returns a scenario that exercises one interrupt and two
// synchronous exceptions behind a two-cycle acknowledge delay.
func Default() *Scenario {
	return &Scenario{
		Name:          "default",
		Cycles:        64,
		VectorBase:    0x0000_0100,
		AckLatency:    2,
		HandlerCycles: 4,
		IRQEnable:     true,
		UseICache:     true,
		Events: []Event{
			{Cycle: 4, Action: ActionRaiseIRQ, Line: 11},
			{Cycle: 10, Action: ActionClearIRQ, Line: 11},
			{Cycle: 20, Action: ActionECall},
			{Cycle: 34, Action: ActionStoreFault},
		},
	}
}

// Load reads a Scenario from a JSON file. Missing fields keep their
// defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc := Default()
	sc.Events = nil
	if err := json.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	return sc, nil
}

// Save writes the Scenario to a JSON file.
func (s *Scenario) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize scenario: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	return nil
}

// Validate checks the scenario for contradictions.
func (s *Scenario) Validate() error {
	if s.Cycles == 0 {
		return fmt.Errorf("cycles must be > 0")
	}
	if s.VectorBase&0xFF != 0 {
		return fmt.Errorf("vector_base must be 256-byte aligned")
	}

	for _, ev := range s.Events {
		if ev.Cycle >= s.Cycles {
			return fmt.Errorf("event at cycle %d is past the end of the run", ev.Cycle)
		}
		switch ev.Action {
		case ActionRaiseIRQ, ActionClearIRQ:
			if ev.Line > 31 {
				return fmt.Errorf("interrupt line %d out of range at cycle %d", ev.Line, ev.Cycle)
			}
		case ActionIllegal, ActionECall, ActionLoadFault, ActionStoreFault,
			ActionMRet, ActionEnableIRQ, ActionDisableIRQ:
		default:
			return fmt.Errorf("unknown action %q at cycle %d", ev.Action, ev.Cycle)
		}
	}

	for _, cw := range s.Code {
		if cw.Addr%4 != 0 {
			return fmt.Errorf("code word at %#x is not word aligned", cw.Addr)
		}
	}

	return nil
}

// Clone returns a deep copy of the Scenario.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Events = make([]Event, len(s.Events))
	copy(c.Events, s.Events)
	if s.AckPattern != nil {
		c.AckPattern = make([]bool, len(s.AckPattern))
		copy(c.AckPattern, s.AckPattern)
	}
	if s.Code != nil {
		c.Code = make([]CodeWord, len(s.Code))
		copy(c.Code, s.Code)
	}
	return &c
}
