// Package csr models the machine-mode control and status registers touched
// by the trap control path.
//
// Only the trap-handling subset exists: mstatus (the interrupt-enable
// stack), mie (per-line interrupt mask), mtvec (handler table base), mepc,
// and mcause. The file reacts to the controller's save-cause pulse through
// Capture and to the handler's return through Ret.
package csr

import (
	"errors"
	"fmt"

	"github.com/Priyanshumishra77/ibex/exc"
)

// Machine-mode CSR addresses.
const (
	AddrMStatus uint16 = 0x300
	AddrMIE     uint16 = 0x304
	AddrMTVec   uint16 = 0x305
	AddrMEPC    uint16 = 0x341
	AddrMCause  uint16 = 0x342
)

// mstatus bit positions.
const (
	mstatusMIE  uint32 = 1 << 3
	mstatusMPIE uint32 = 1 << 7
)

// mcauseIRQFlag is the interrupt bit of the architectural mcause register.
const mcauseIRQFlag uint32 = 1 << 31

// ErrUnknownCSR is returned for addresses outside the implemented set.
var ErrUnknownCSR = errors.New("csr: unknown address")

// File is the machine-mode register file subset.
type File struct {
	mstatus uint32
	mie     uint32
	mtvec   uint32
	mepc    uint32
	mcause  uint32
}

// New returns a register file in its reset state: interrupts globally
// disabled, every line unmasked, handler table base at zero.
func New() *File {
	return &File{mie: 0xFFFFFFFF}
}

// IRQEnabled reports the global interrupt enable, mstatus.MIE.
func (f *File) IRQEnabled() bool {
	return f.mstatus&mstatusMIE != 0
}

// SetIRQEnable sets or clears mstatus.MIE directly, as boot code would.
func (f *File) SetIRQEnable(on bool) {
	if on {
		f.mstatus |= mstatusMIE
	} else {
		f.mstatus &^= mstatusMIE
	}
}

// Mask returns the pending interrupt lines that survive the mie mask.
func (f *File) Mask(pending uint32) uint32 {
	return pending & f.mie
}

// Capture latches the trap cause and return PC and enters the handler
// context: MPIE takes the old MIE value and MIE clears, so further
// interrupts stay blocked until the handler returns or re-enables them.
func (f *File) Capture(cause exc.Cause, pc uint32) {
	f.mepc = pc
	f.mcause = uint32(cause.Code())
	if cause.IsInterrupt() {
		f.mcause |= mcauseIRQFlag
	}
	if f.mstatus&mstatusMIE != 0 {
		f.mstatus |= mstatusMPIE
	} else {
		f.mstatus &^= mstatusMPIE
	}
	f.mstatus &^= mstatusMIE
}

// Ret pops the interrupt-enable stack and returns the PC to resume at.
func (f *File) Ret() uint32 {
	if f.mstatus&mstatusMPIE != 0 {
		f.mstatus |= mstatusMIE
	} else {
		f.mstatus &^= mstatusMIE
	}
	f.mstatus |= mstatusMPIE
	return f.mepc
}

// VectorBase returns the 256-byte-aligned handler table base.
func (f *File) VectorBase() uint32 {
	return f.mtvec
}

// MCause returns the architectural mcause value: the interrupt flag in bit
// 31 and the cause code in the low bits.
func (f *File) MCause() uint32 {
	return f.mcause
}

// MEPC returns the saved return PC.
func (f *File) MEPC() uint32 {
	return f.mepc
}

// Read returns the register at addr.
func (f *File) Read(addr uint16) (uint32, error) {
	switch addr {
	case AddrMStatus:
		return f.mstatus, nil
	case AddrMIE:
		return f.mie, nil
	case AddrMTVec:
		return f.mtvec, nil
	case AddrMEPC:
		return f.mepc, nil
	case AddrMCause:
		return f.mcause, nil
	default:
		return 0, fmt.Errorf("%w: %#03x", ErrUnknownCSR, addr)
	}
}

// Write stores v into the register at addr. Reserved bits read back as
// zero: mstatus keeps only the enable stack, mtvec only the table base,
// mepc drops bit zero.
func (f *File) Write(addr uint16, v uint32) error {
	switch addr {
	case AddrMStatus:
		f.mstatus = v & (mstatusMIE | mstatusMPIE)
	case AddrMIE:
		f.mie = v
	case AddrMTVec:
		f.mtvec = v &^ 0xFF
	case AddrMEPC:
		f.mepc = v &^ 1
	case AddrMCause:
		f.mcause = v
	default:
		return fmt.Errorf("%w: %#03x", ErrUnknownCSR, addr)
	}
	return nil
}
