package fetch

// pageSize is the allocation granule of the sparse memory.
const pageSize = 4096

// Memory is a sparse byte-addressed store for handler code. Pages are
// allocated on first write; reads of untouched memory return zero.
type Memory struct {
	pages map[uint64][]byte
}

// NewMemory returns an empty memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint64][]byte)}
}

func (m *Memory) page(addr uint64, alloc bool) []byte {
	base := addr &^ uint64(pageSize-1)
	p, ok := m.pages[base]
	if !ok && alloc {
		p = make([]byte, pageSize)
		m.pages[base] = p
	}
	return p
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint64) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr%pageSize]
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint64, v uint8) {
	m.page(addr, true)[addr%pageSize] = v
}

// Read32 reads a little-endian 32-bit word.
func (m *Memory) Read32(addr uint64) uint32 {
	var w uint32
	for i := uint64(0); i < 4; i++ {
		w |= uint32(m.Read8(addr+i)) << (i * 8)
	}
	return w
}

// Write32 writes a little-endian 32-bit word.
func (m *Memory) Write32(addr uint64, v uint32) {
	for i := uint64(0); i < 4; i++ {
		m.Write8(addr+i, uint8(v>>(i*8)))
	}
}

// ReadBlock returns size bytes starting at addr, for cache line fills.
func (m *Memory) ReadBlock(addr uint64, size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = m.Read8(addr + uint64(i))
	}
	return out
}
