package soc_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Priyanshumishra77/ibex/ctrl"
	"github.com/Priyanshumishra77/ibex/scenario"
	"github.com/Priyanshumishra77/ibex/soc"
)

var _ = Describe("System", func() {
	Describe("a single ecall with an immediate grant", func() {
		var (
			system *soc.System
			stats  soc.Stats
		)

		BeforeEach(func() {
			sc := &scenario.Scenario{
				Name:          "ecall",
				Cycles:        10,
				VectorBase:    0x0000_0100,
				AckLatency:    0,
				HandlerCycles: 2,
				IRQEnable:     true,
				Events: []scenario.Event{
					{Cycle: 3, Action: scenario.ActionECall},
				},
			}
			system = soc.New(sc)
			stats = system.Run()
		})

		It("should complete exactly one episode with no wait", func() {
			Expect(stats.Cycles).To(Equal(uint64(10)))
			Expect(stats.Requests).To(Equal(uint64(1)))
			Expect(stats.Episodes).To(Equal(uint64(1)))
			Expect(stats.WaitCycles).To(Equal(uint64(0)))
			Expect(stats.MaxAckLatency).To(Equal(uint64(0)))
			Expect(stats.CauseCounts).To(HaveKeyWithValue("ecall", uint64(1)))
		})

		It("should occupy the handler for the configured cycles", func() {
			Expect(stats.ServiceCycles).To(Equal(uint64(2)))
		})

		It("should capture the trap context in the CSR file", func() {
			Expect(system.CSRs().MCause()).To(Equal(uint32(11)))
			// Boot at 0x180, three sequential fetches before the trap.
			Expect(system.CSRs().MEPC()).To(Equal(uint32(0x0000_018C)))
		})

		It("should redirect into the handler and back", func() {
			Expect(system.Fetch().Stats().Redirects).To(Equal(uint64(2)))
		})

		It("should end idle with interrupts enabled again", func() {
			Expect(system.Controller().State()).To(Equal(ctrl.StateIdle))
			Expect(system.CSRs().IRQEnabled()).To(BeTrue())
		})
	})

	Describe("the default scenario", func() {
		var (
			system *soc.System
			stats  soc.Stats
		)

		BeforeEach(func() {
			system = soc.New(scenario.Default())
			stats = system.Run()
		})

		It("should take the interrupt and both exceptions", func() {
			Expect(stats.Requests).To(Equal(uint64(3)))
			Expect(stats.Episodes).To(Equal(uint64(3)))
			Expect(stats.CauseCounts).To(HaveKeyWithValue("irq11", uint64(1)))
			Expect(stats.CauseCounts).To(HaveKeyWithValue("ecall", uint64(1)))
			Expect(stats.CauseCounts).To(HaveKeyWithValue("store access fault", uint64(1)))
		})

		It("should pay the configured grant delay on every episode", func() {
			Expect(stats.WaitCycles).To(Equal(uint64(6)))
			Expect(stats.AckLatencyTotal).To(Equal(uint64(6)))
			Expect(stats.MaxAckLatency).To(Equal(uint64(2)))
			Expect(stats.AvgAckLatency()).To(BeNumerically("~", 2.0, 1e-9))
		})

		It("should spend four cycles in each handler", func() {
			Expect(stats.ServiceCycles).To(Equal(uint64(12)))
			Expect(stats.ServiceFraction()).To(BeNumerically("~", 12.0/64.0, 1e-9))
		})

		It("should leave the last cause in mcause", func() {
			Expect(system.CSRs().MCause()).To(Equal(uint32(7)))
		})

		It("should mostly hit in the handler instruction cache", func() {
			icache := system.Fetch().ICacheStats()

			Expect(icache.Fetches).To(BeNumerically(">", 0))
			Expect(icache.HitRate()).To(BeNumerically(">", 0.5))
		})
	})

	Describe("a level-triggered line that is never cleared", func() {
		var (
			system *soc.System
			stats  soc.Stats
		)

		BeforeEach(func() {
			sc := &scenario.Scenario{
				Name:          "storm",
				Cycles:        30,
				VectorBase:    0x0000_0100,
				AckLatency:    0,
				HandlerCycles: 2,
				IRQEnable:     true,
				Events: []scenario.Event{
					{Cycle: 2, Action: scenario.ActionRaiseIRQ, Line: 3},
				},
			}
			system = soc.New(sc)
			stats = system.Run()
		})

		It("should re-enter the handler every time the enable is restored", func() {
			// Grant, two handler cycles, return: a three-cycle period from
			// cycle 2 onward.
			Expect(stats.Episodes).To(Equal(uint64(10)))
			Expect(stats.CauseCounts).To(HaveKeyWithValue("irq3", uint64(10)))
		})

		It("should end mid-episode with interrupts blocked", func() {
			Expect(system.Controller().State()).To(Equal(ctrl.StateService))
			Expect(system.CSRs().IRQEnabled()).To(BeFalse())
		})
	})

	Describe("the global enable gate", func() {
		var (
			system *soc.System
			stats  soc.Stats
		)

		BeforeEach(func() {
			sc := &scenario.Scenario{
				Name:          "gated",
				Cycles:        12,
				VectorBase:    0x0000_0100,
				AckLatency:    0,
				HandlerCycles: 0,
				IRQEnable:     false,
				Events: []scenario.Event{
					{Cycle: 1, Action: scenario.ActionRaiseIRQ, Line: 5},
					{Cycle: 6, Action: scenario.ActionEnableIRQ},
					{Cycle: 8, Action: scenario.ActionClearIRQ, Line: 5},
					{Cycle: 10, Action: scenario.ActionMRet},
				},
			}
			system = soc.New(sc)
			stats = system.Run()
		})

		It("should hold the line pending until the enable arrives", func() {
			Expect(stats.Requests).To(Equal(uint64(1)))
			Expect(stats.Episodes).To(Equal(uint64(1)))
			Expect(stats.CauseCounts).To(HaveKeyWithValue("irq5", uint64(1)))
		})

		It("should stay in the handler until the explicit return", func() {
			Expect(stats.ServiceCycles).To(Equal(uint64(4)))
			Expect(system.Controller().State()).To(Equal(ctrl.StateIdle))
			Expect(system.CSRs().IRQEnabled()).To(BeTrue())
		})
	})

	Describe("with a scripted grant pattern and a trace", func() {
		var (
			stats soc.Stats
			buf   bytes.Buffer
		)

		BeforeEach(func() {
			sc := &scenario.Scenario{
				Name:          "scripted",
				Cycles:        6,
				VectorBase:    0x0000_0100,
				HandlerCycles: 0,
				IRQEnable:     true,
				Events: []scenario.Event{
					{Cycle: 0, Action: scenario.ActionECall},
					{Cycle: 5, Action: scenario.ActionMRet},
				},
			}
			buf.Reset()
			system := soc.New(sc,
				soc.WithAcknowledger(&soc.PatternAck{Grants: []bool{false, false, true}}),
				soc.WithTrace(&buf),
			)
			stats = system.Run()
		})

		It("should follow the scripted grant timing", func() {
			Expect(stats.Episodes).To(Equal(uint64(1)))
			Expect(stats.WaitCycles).To(Equal(uint64(2)))
			Expect(stats.MaxAckLatency).To(Equal(uint64(2)))
		})

		It("should emit one trace row per cycle", func() {
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

			Expect(lines).To(HaveLen(7))
			Expect(lines[0]).To(HavePrefix("cycle\tstate"))
			Expect(buf.String()).To(ContainSubstring("ecall"))
		})

		It("should honor the same pattern when the scenario supplies it", func() {
			sc := &scenario.Scenario{
				Name:       "scripted",
				Cycles:     6,
				VectorBase: 0x0000_0100,
				AckPattern: []bool{false, false, true},
				IRQEnable:  true,
				Events: []scenario.Event{
					{Cycle: 0, Action: scenario.ActionECall},
					{Cycle: 5, Action: scenario.ActionMRet},
				},
			}
			patternStats := soc.New(sc).Run()

			Expect(patternStats.Episodes).To(Equal(stats.Episodes))
			Expect(patternStats.WaitCycles).To(Equal(stats.WaitCycles))
			Expect(patternStats.MaxAckLatency).To(Equal(stats.MaxAckLatency))
		})
	})

	Describe("Reset", func() {
		It("should reproduce the run exactly", func() {
			system := soc.New(scenario.Default())

			first := system.Run()
			system.Reset()
			second := system.Run()

			Expect(second).To(Equal(first))
			Expect(system.CSRs().MCause()).To(Equal(uint32(7)))
		})
	})
})
