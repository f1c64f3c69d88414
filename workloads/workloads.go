// Package workloads provides canned stimulus workloads and a replay
// harness for exercising the trap controller across configurations.
package workloads

import "github.com/Priyanshumishra77/ibex/scenario"

// Workload defines a single replay workload.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload stresses
	Description string

	// Scenario is the stimulus to replay
	Scenario *scenario.Scenario

	// ExpectedEpisodes is the number of trap episodes a replay with the
	// workload's own timing must complete (for validation)
	ExpectedEpisodes uint64
}

// GetWorkloads returns the standard set of replay workloads.
// Each workload targets a specific corner of the trap handshake.
func GetWorkloads() []Workload {
	return []Workload{
		quiet(),
		singleInterrupt(),
		interruptStorm(),
		faultMix(),
		priorityCollision(),
		gatedEnable(),
	}
}

// baseScenario returns the stimulus skeleton the workloads share.
func baseScenario(name string, cycles uint64) *scenario.Scenario {
	return &scenario.Scenario{
		Name:          name,
		Cycles:        cycles,
		VectorBase:    0x0000_0100,
		AckLatency:    2,
		HandlerCycles: 4,
		IRQEnable:     true,
		UseICache:     true,
	}
}

// 1. Quiet - Tests the idle path with no trap sources at all
func quiet() Workload {
	return Workload{
		Name:             "quiet",
		Description:      "32 cycles of straight-line fetch - no trap traffic",
		Scenario:         baseScenario("quiet", 32),
		ExpectedEpisodes: 0,
	}
}

// 2. Single Interrupt - Tests one complete request/grant/return episode
func singleInterrupt() Workload {
	sc := baseScenario("single_interrupt", 32)
	sc.Events = []scenario.Event{
		{Cycle: 2, Action: scenario.ActionRaiseIRQ, Line: 11},
		// The handler clears the device before returning.
		{Cycle: 6, Action: scenario.ActionClearIRQ, Line: 11},
	}
	return Workload{
		Name:             "single_interrupt",
		Description:      "one interrupt pulse - measures a full episode round trip",
		Scenario:         sc,
		ExpectedEpisodes: 1,
	}
}

// 3. Interrupt Storm - Tests back-to-back episodes on a level line
func interruptStorm() Workload {
	sc := baseScenario("interrupt_storm", 64)
	sc.Events = []scenario.Event{
		{Cycle: 0, Action: scenario.ActionRaiseIRQ, Line: 3},
		// The ninth handler finally quiets the device before returning.
		{Cycle: 61, Action: scenario.ActionClearIRQ, Line: 3},
	}
	return Workload{
		Name:             "interrupt_storm",
		Description:      "a level line released by the ninth handler - back-to-back episodes",
		Scenario:         sc,
		ExpectedEpisodes: 9,
	}
}

// 4. Fault Mix - Tests each synchronous cause in sequence
func faultMix() Workload {
	sc := baseScenario("fault_mix", 48)
	sc.Events = []scenario.Event{
		{Cycle: 4, Action: scenario.ActionIllegal},
		{Cycle: 14, Action: scenario.ActionECall},
		{Cycle: 24, Action: scenario.ActionLoadFault},
		{Cycle: 34, Action: scenario.ActionStoreFault},
	}
	return Workload{
		Name:             "fault_mix",
		Description:      "illegal, ecall, load and store faults - one episode each",
		Scenario:         sc,
		ExpectedEpisodes: 4,
	}
}

// 5. Priority Collision - Tests arbitration when sources arrive together
func priorityCollision() Workload {
	sc := baseScenario("priority_collision", 32)
	sc.Events = []scenario.Event{
		{Cycle: 4, Action: scenario.ActionIllegal},
		{Cycle: 4, Action: scenario.ActionStoreFault},
		{Cycle: 4, Action: scenario.ActionRaiseIRQ, Line: 20},
		{Cycle: 18, Action: scenario.ActionClearIRQ, Line: 20},
	}
	return Workload{
		Name:             "priority_collision",
		Description:      "fault and interrupt in the same cycle - highest priority wins",
		Scenario:         sc,
		ExpectedEpisodes: 2,
	}
}

// 6. Gated Enable - Tests the global interrupt enable gate
func gatedEnable() Workload {
	sc := baseScenario("gated_enable", 32)
	sc.IRQEnable = false
	sc.Events = []scenario.Event{
		{Cycle: 2, Action: scenario.ActionRaiseIRQ, Line: 7},
		{Cycle: 10, Action: scenario.ActionEnableIRQ},
		{Cycle: 16, Action: scenario.ActionClearIRQ, Line: 7},
	}
	return Workload{
		Name:             "gated_enable",
		Description:      "a line held behind a disabled enable - no episode until enabled",
		Scenario:         sc,
		ExpectedEpisodes: 1,
	}
}
