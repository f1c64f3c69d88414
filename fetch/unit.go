// Package fetch models the fetch stage as seen from the trap control path:
// the program counter, redirection to handler entry points, and the
// instruction cache timing of handler entry.
//
// The instruction stream is not interpreted. Each cycle the unit either
// steps sequentially or follows a redirect; the fetched words only feed the
// latency model.
package fetch

// uncachedFetchLatency is the fixed fetch cost when no cache is attached.
const uncachedFetchLatency uint64 = 2

// Stats counts fetch-stage activity.
type Stats struct {
	// Fetches is the total number of instruction fetches.
	Fetches uint64
	// Redirects counts handler entries and returns taken.
	Redirects uint64
	// EntryCycles is the total fetch latency paid on redirects.
	EntryCycles uint64
}

// AvgEntryLatency returns the mean fetch latency of a redirect.
func (s Stats) AvgEntryLatency() float64 {
	if s.Redirects == 0 {
		return 0
	}
	return float64(s.EntryCycles) / float64(s.Redirects)
}

// Unit is the fetch stage model.
type Unit struct {
	pc     uint32
	mem    *Memory
	icache *Cache
	stats  Stats
}

// NewUnit returns a fetch unit reading from mem. icache may be nil, which
// models an uncached fetch path with a fixed latency.
func NewUnit(mem *Memory, icache *Cache) *Unit {
	return &Unit{mem: mem, icache: icache}
}

// PC returns the address of the next fetch.
func (u *Unit) PC() uint32 {
	return u.pc
}

// SetPC places the next fetch at pc.
func (u *Unit) SetPC(pc uint32) {
	u.pc = pc
}

// Stats returns the fetch counters.
func (u *Unit) Stats() Stats {
	return u.stats
}

// ICacheStats returns the instruction cache counters, zero when uncached.
func (u *Unit) ICacheStats() CacheStats {
	if u.icache == nil {
		return CacheStats{}
	}
	return u.icache.Stats()
}

// Step fetches the next sequential word.
func (u *Unit) Step() FetchResult {
	res := u.fetch(u.pc)
	u.pc += 4
	return res
}

// Redirect steers the fetch stream to target and fetches its first word.
// The latency of this fetch is the handler entry cost.
func (u *Unit) Redirect(target uint32) FetchResult {
	u.stats.Redirects++
	u.pc = target
	res := u.fetch(target)
	u.stats.EntryCycles += res.Latency
	u.pc += 4
	return res
}

// Reset rewinds the PC, clears the counters, and drops all cached lines.
func (u *Unit) Reset() {
	u.pc = 0
	u.stats = Stats{}
	if u.icache != nil {
		u.icache.Reset()
	}
}

func (u *Unit) fetch(addr uint32) FetchResult {
	u.stats.Fetches++
	if u.icache != nil {
		return u.icache.Fetch(uint64(addr))
	}
	return FetchResult{
		Word:    u.mem.Read32(uint64(addr)),
		Latency: uncachedFetchLatency,
	}
}
