package exc

import "math/bits"

// Select reduces the trap sources asserted this cycle to a single decision.
//
// Priority is resolved by a last-writer-wins cascade: enabled interrupts
// first, then ecall, illegal instruction, load fault, and store fault, so a
// store fault beats everything and interrupts lose to any synchronous
// exception. Among interrupt lines the highest-numbered pending line wins.
// If nothing is pending the zero decision is returned.
func Select(src Sources) Decision {
	var dec Decision

	if src.IRQEnable && src.IRQ != 0 {
		line := uint8(bits.Len32(src.IRQ) - 1)
		dec = Decision{Cause: IRQCause(line), Entry: EntryIRQ}
	}
	if src.ECall {
		dec = Decision{Cause: CauseECallM, Entry: EntryECall}
	}
	if src.IllegalInsn {
		dec = Decision{Cause: CauseIllegalInsn, Entry: EntryIllegal}
	}
	if src.LoadFault {
		dec = Decision{Cause: CauseLoadFault, Entry: EntryLoadStore}
	}
	if src.StoreFault {
		dec = Decision{Cause: CauseStoreFault, Entry: EntryLoadStore}
	}

	return dec
}
