package soc

// Stats aggregates a run of the trap control model.
type Stats struct {
	// Cycles is the number of cycles simulated.
	Cycles uint64
	// Requests counts distinct trap requests raised.
	Requests uint64
	// Episodes counts requests that were granted and entered servicing.
	Episodes uint64
	// WaitCycles counts cycles with a request up and no grant yet.
	WaitCycles uint64
	// ServiceCycles counts cycles spent servicing a trap.
	ServiceCycles uint64
	// AckLatencyTotal sums the request-to-grant distance of every episode.
	AckLatencyTotal uint64
	// MaxAckLatency is the worst request-to-grant distance seen.
	MaxAckLatency uint64
	// CauseCounts tallies episodes by captured cause.
	CauseCounts map[string]uint64
}

// AvgAckLatency returns the mean request-to-grant distance in cycles.
func (s Stats) AvgAckLatency() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.AckLatencyTotal) / float64(s.Episodes)
}

// ServiceFraction returns the share of cycles spent servicing traps.
func (s Stats) ServiceFraction() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.ServiceCycles) / float64(s.Cycles)
}
