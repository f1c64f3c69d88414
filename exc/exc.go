// Package exc provides trap cause definitions and combinational cause
// selection for the trap controller.
//
// This package defines the vocabulary shared by the controller and its
// collaborators: the 6-bit encoded trap cause, the 2-bit handler entry
// selector, the per-cycle trap source bundle, and the fixed-priority
// arbitration that reduces the sources to a single decision. It supports:
//   - Synchronous exceptions: illegal instruction, environment call,
//     load access fault, store access fault
//   - Level-triggered external interrupts on 32 lines, gated by the
//     global interrupt enable
//
// Usage:
//
//	src := exc.Sources{IRQ: 1 << 17, IRQEnable: true, StoreFault: true}
//	dec := exc.Select(src)
//	fmt.Printf("cause=%v entry=%v\n", dec.Cause, dec.Entry) // store fault wins
package exc

import "fmt"

// Cause is a 6-bit encoded trap cause. Bit 5 distinguishes interrupts from
// synchronous exceptions; bits [4:0] carry the cause code. The exception
// codes follow the machine-mode mcause assignments.
type Cause uint8

const (
	// CauseNone is the zero value, meaning no trap.
	CauseNone Cause = 0b0_00000
	// CauseIllegalInsn is an illegal instruction exception (code 2).
	CauseIllegalInsn Cause = 0b0_00010
	// CauseLoadFault is a load access fault (code 5).
	CauseLoadFault Cause = 0b0_00101
	// CauseStoreFault is a store access fault (code 7).
	CauseStoreFault Cause = 0b0_00111
	// CauseECallM is an environment call from machine mode (code 11).
	CauseECallM Cause = 0b0_01011
)

// causeIRQFlag is bit 5, set for interrupt causes.
const causeIRQFlag Cause = 0b1_00000

// IRQCause returns the interrupt cause for the given line (0-31).
func IRQCause(line uint8) Cause {
	return causeIRQFlag | Cause(line&0x1F)
}

// IsInterrupt reports whether the cause encodes an external interrupt.
func (c Cause) IsInterrupt() bool {
	return c&causeIRQFlag != 0
}

// Code returns the low 5 bits of the cause. For interrupt causes this is the
// interrupt line number and doubles as the vector table index.
func (c Cause) Code() uint8 {
	return uint8(c) & 0x1F
}

func (c Cause) String() string {
	if c.IsInterrupt() {
		return fmt.Sprintf("irq%d", c.Code())
	}
	switch c {
	case CauseNone:
		return "none"
	case CauseIllegalInsn:
		return "illegal instruction"
	case CauseLoadFault:
		return "load access fault"
	case CauseStoreFault:
		return "store access fault"
	case CauseECallM:
		return "ecall"
	default:
		return fmt.Sprintf("cause(%#02x)", uint8(c))
	}
}

// Entry selects which handler entry point the fetch stage should redirect to.
// Load and store faults share an entry; the cause code still tells them apart.
type Entry uint8

const (
	// EntryIllegal is the illegal instruction handler entry.
	EntryIllegal Entry = 0b00
	// EntryECall is the environment call handler entry.
	EntryECall Entry = 0b01
	// EntryLoadStore is the shared load/store fault handler entry.
	EntryLoadStore Entry = 0b10
	// EntryIRQ is the interrupt handler entry, indexed by vector.
	EntryIRQ Entry = 0b11
)

func (e Entry) String() string {
	switch e {
	case EntryIllegal:
		return "illegal"
	case EntryECall:
		return "ecall"
	case EntryLoadStore:
		return "loadstore"
	case EntryIRQ:
		return "irq"
	default:
		return fmt.Sprintf("entry(%d)", uint8(e))
	}
}

// Sources is the per-cycle trap source bundle sampled by the controller.
// IRQ lines are level-triggered: a bit stays pending until the requesting
// device deasserts it. The remaining triggers are single-cycle pulses from
// the decode and load/store stages.
type Sources struct {
	// IRQ holds the 32 external interrupt lines, one bit per line.
	IRQ uint32
	// IRQEnable gates all interrupt lines (mstatus.MIE).
	IRQEnable bool
	// IllegalInsn is asserted by decode on an undecodable instruction.
	IllegalInsn bool
	// ECall is asserted by decode on an environment call.
	ECall bool
	// LoadFault is asserted by the load/store unit on a failed load.
	LoadFault bool
	// StoreFault is asserted by the load/store unit on a failed store.
	StoreFault bool
	// MRet is asserted by decode when the handler executes a return from
	// trap. It is not a trap source and never raises a request.
	MRet bool
}

// Pending reports whether any trap source is asserted this cycle. Interrupt
// lines only count when IRQEnable is set; MRet does not count.
func (s Sources) Pending() bool {
	if s.IRQEnable && s.IRQ != 0 {
		return true
	}
	return s.IllegalInsn || s.ECall || s.LoadFault || s.StoreFault
}

// Decision is the combinational result of cause selection: the encoded cause
// and the handler entry it maps to. The zero value means no trap.
type Decision struct {
	Cause Cause
	Entry Entry
}
