package fetch

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds instruction cache geometry and timing.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles, including the line fill
	MissLatency uint64
}

// DefaultICacheConfig returns the instruction cache geometry of a small
// embedded core: 4KB, 2-way, 8-byte lines, single-cycle hits.
func DefaultICacheConfig() Config {
	return Config{
		Size:          4 * 1024,
		Associativity: 2,
		BlockSize:     8,
		HitLatency:    1,
		MissLatency:   5,
	}
}

// FetchResult describes one instruction fetch.
type FetchResult struct {
	// Word is the fetched instruction word.
	Word uint32
	// Hit indicates the word was served from the cache.
	Hit bool
	// Latency is the number of cycles the fetch takes.
	Latency uint64
}

// Backing supplies instruction lines on a miss.
type Backing interface {
	ReadBlock(addr uint64, size int) []byte
}

// Cache is a read-only instruction cache built on the Akita cache directory.
// There is no write path: lines are only ever filled from the backing store
// and invalidated wholesale.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	lines     [][]byte
	backing   Backing
	stats     CacheStats
}

// CacheStats holds instruction cache counters.
type CacheStats struct {
	Fetches uint64
	Hits    uint64
	Misses  uint64
	Fills   uint64
}

// HitRate returns the fraction of fetches served from the cache.
func (s CacheStats) HitRate() float64 {
	if s.Fetches == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Fetches)
}

// NewCache creates an instruction cache with the given geometry, filling
// lines from backing.
func NewCache(config Config, backing Backing) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalLines := numSets * config.Associativity

	lines := make([][]byte, totalLines)
	for i := range lines {
		lines[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		lines:   lines,
		backing: backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns the cache counters.
func (c *Cache) Stats() CacheStats {
	return c.stats
}

// lineIndex computes the index into lines for a directory block.
func (c *Cache) lineIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// Fetch reads the 32-bit instruction word at addr.
func (c *Cache) Fetch(addr uint64) FetchResult {
	c.stats.Fetches++

	blockAddr := (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		line := c.lines[c.lineIndex(block)]
		return FetchResult{
			Word:    wordAt(line, addr%uint64(c.config.BlockSize)),
			Hit:     true,
			Latency: c.config.HitLatency,
		}
	}

	c.stats.Misses++
	return c.fill(addr, blockAddr)
}

// fill brings the line holding addr into the cache and returns the miss
// result.
func (c *Cache) fill(addr, blockAddr uint64) FetchResult {
	res := FetchResult{Latency: c.config.MissLatency}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return res
	}

	line := c.lines[c.lineIndex(victim)]
	if c.backing != nil {
		copy(line, c.backing.ReadBlock(blockAddr, c.config.BlockSize))
	} else {
		for i := range line {
			line[i] = 0
		}
	}
	c.stats.Fills++

	// Tag stores the block-aligned address.
	victim.Tag = blockAddr
	victim.IsValid = true
	c.directory.Visit(victim)

	res.Word = wordAt(line, addr%uint64(c.config.BlockSize))
	return res
}

// Invalidate drops every line, as a fence.i would. Counters survive.
func (c *Cache) Invalidate() {
	c.directory.Reset()
}

// Reset invalidates all lines and clears the counters.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = CacheStats{}
}

// wordAt reads a little-endian 32-bit word out of a line.
func wordAt(line []byte, offset uint64) uint32 {
	if int(offset)+4 > len(line) {
		return 0
	}

	var w uint32
	for i := 0; i < 4; i++ {
		w |= uint32(line[int(offset)+i]) << (i * 8)
	}
	return w
}
