package fetch

import "github.com/Priyanshumishra77/ibex/exc"

// Handler table layout, relative to the vector base. Entries 0-31 are the
// per-line interrupt vectors, one word each; the synchronous handlers sit
// past the table.
const (
	offIllegal   uint32 = 0x84
	offECall     uint32 = 0x88
	offLoadStore uint32 = 0x8C
)

// HandlerPC returns the handler entry address for a taken trap.
func HandlerPC(base uint32, entry exc.Entry, vector uint8) uint32 {
	switch entry {
	case exc.EntryECall:
		return base + offECall
	case exc.EntryLoadStore:
		return base + offLoadStore
	case exc.EntryIRQ:
		return base + 4*uint32(vector&0x1F)
	default:
		return base + offIllegal
	}
}
