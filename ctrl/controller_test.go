package ctrl_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Priyanshumishra77/ibex/ctrl"
	"github.com/Priyanshumishra77/ibex/exc"
)

var _ = Describe("Controller", func() {
	var c *ctrl.Controller

	BeforeEach(func() {
		c = ctrl.New()
	})

	Describe("reset behavior", func() {
		It("should come up idle with a cleared decision register", func() {
			Expect(c.State()).To(Equal(ctrl.StateIdle))
			Expect(c.Latched()).To(Equal(exc.Decision{}))
		})

		It("should return to the reset state from mid-episode", func() {
			c.Tick(exc.Sources{StoreFault: true}, true)
			Expect(c.State()).To(Equal(ctrl.StateService))

			c.Reset()

			Expect(c.State()).To(Equal(ctrl.StateIdle))
			Expect(c.Latched()).To(Equal(exc.Decision{}))
		})
	})

	Describe("idle with nothing pending", func() {
		It("should keep all outputs deasserted", func() {
			for i := 0; i < 4; i++ {
				out := c.Tick(exc.Sources{}, false)

				Expect(out.Req).To(BeFalse())
				Expect(out.SaveCause).To(BeFalse())
				Expect(c.State()).To(Equal(ctrl.StateIdle))
			}
		})

		It("should ignore disabled interrupt lines", func() {
			out := c.Tick(exc.Sources{IRQ: 1 << 7}, false)

			Expect(out.Req).To(BeFalse())
			Expect(c.State()).To(Equal(ctrl.StateIdle))
		})

		It("should ignore a stray return from trap", func() {
			out := c.Tick(exc.Sources{MRet: true}, false)

			Expect(out.Req).To(BeFalse())
			Expect(c.State()).To(Equal(ctrl.StateIdle))
		})
	})

	Describe("same-cycle acknowledge", func() {
		It("should jump straight to servicing with a single save pulse", func() {
			out := c.Tick(exc.Sources{StoreFault: true}, true)

			Expect(out.Req).To(BeTrue())
			Expect(out.SaveCause).To(BeTrue())
			Expect(out.Cause).To(Equal(exc.CauseStoreFault))
			Expect(out.Entry).To(Equal(exc.EntryLoadStore))
			Expect(out.VectorIndex).To(Equal(uint8(7)))
			Expect(c.State()).To(Equal(ctrl.StateService))
			Expect(c.Latched()).To(Equal(exc.Decision{
				Cause: exc.CauseStoreFault,
				Entry: exc.EntryLoadStore,
			}))
		})

		It("should expose the fresh selection on the request cycle", func() {
			out := c.Tick(exc.Sources{IRQ: 1<<3 | 1<<17, IRQEnable: true}, true)

			Expect(out.Cause).To(Equal(exc.IRQCause(17)))
			Expect(out.Entry).To(Equal(exc.EntryIRQ))
			Expect(out.VectorIndex).To(Equal(uint8(17)))
		})

		It("should hold the latched decision stable while servicing", func() {
			c.Tick(exc.Sources{StoreFault: true}, true)

			// New sources during servicing must not disturb the episode,
			// and neither must held-constant ones.
			src := exc.Sources{IllegalInsn: true}
			for i := 0; i < 4; i++ {
				out := c.Tick(src, false)

				Expect(out.Req).To(BeFalse())
				Expect(out.SaveCause).To(BeFalse())
				Expect(out.Cause).To(Equal(exc.CauseStoreFault))
				Expect(out.Entry).To(Equal(exc.EntryLoadStore))
				Expect(c.State()).To(Equal(ctrl.StateService))
				Expect(c.Latched()).To(Equal(exc.Decision{
					Cause: exc.CauseStoreFault,
					Entry: exc.EntryLoadStore,
				}))
			}
		})
	})

	Describe("delayed acknowledge", func() {
		It("should hold the request until acknowledged and pulse the save once", func() {
			src := exc.Sources{IRQ: 1 << 5, IRQEnable: true}
			saves := 0

			// Cycle 1: request raised, no grant.
			out := c.Tick(src, false)
			Expect(out.Req).To(BeTrue())
			Expect(out.Cause).To(Equal(exc.IRQCause(5)))
			Expect(c.State()).To(Equal(ctrl.StateWaitAck))
			if out.SaveCause {
				saves++
			}

			// Cycles 2-3: still waiting.
			for i := 0; i < 2; i++ {
				out = c.Tick(src, false)
				Expect(out.Req).To(BeTrue())
				Expect(c.State()).To(Equal(ctrl.StateWaitAck))
				if out.SaveCause {
					saves++
				}
			}

			// Cycle 4: grant.
			out = c.Tick(src, true)
			Expect(out.Req).To(BeTrue())
			Expect(out.SaveCause).To(BeTrue())
			Expect(c.State()).To(Equal(ctrl.StateService))
			if out.SaveCause {
				saves++
			}

			Expect(saves).To(Equal(1))
			Expect(c.Latched()).To(Equal(exc.Decision{
				Cause: exc.IRQCause(5),
				Entry: exc.EntryIRQ,
			}))
		})

		It("should keep requesting even if the sources go away", func() {
			c.Tick(exc.Sources{ECall: true}, false)
			Expect(c.State()).To(Equal(ctrl.StateWaitAck))

			out := c.Tick(exc.Sources{}, false)

			Expect(out.Req).To(BeTrue())
			Expect(c.State()).To(Equal(ctrl.StateWaitAck))
		})

		It("should not leave the wait on a return from trap", func() {
			c.Tick(exc.Sources{ECall: true}, false)

			out := c.Tick(exc.Sources{MRet: true}, false)

			Expect(out.Req).To(BeTrue())
			Expect(c.State()).To(Equal(ctrl.StateWaitAck))
		})
	})

	Describe("capture at acknowledgment", func() {
		It("should latch the selection present on the grant cycle", func() {
			c.Tick(exc.Sources{IRQ: 1 << 5, IRQEnable: true}, false)
			Expect(c.State()).To(Equal(ctrl.StateWaitAck))

			// A store fault arrives while waiting; it wins arbitration on
			// the grant cycle and is the decision that gets captured.
			src := exc.Sources{IRQ: 1 << 5, IRQEnable: true, StoreFault: true}
			out := c.Tick(src, true)
			Expect(out.SaveCause).To(BeTrue())

			out = c.Tick(exc.Sources{}, false)
			Expect(out.Cause).To(Equal(exc.CauseStoreFault))
			Expect(out.Entry).To(Equal(exc.EntryLoadStore))
		})

		It("should latch the empty selection if the sources vanished", func() {
			c.Tick(exc.Sources{ECall: true}, false)

			out := c.Tick(exc.Sources{}, true)

			Expect(out.SaveCause).To(BeTrue())
			Expect(c.State()).To(Equal(ctrl.StateService))
			Expect(c.Latched()).To(Equal(exc.Decision{}))
		})

		It("should show the previously latched decision while waiting", func() {
			// First episode latches the ecall decision.
			c.Tick(exc.Sources{ECall: true}, true)
			c.Tick(exc.Sources{MRet: true}, false)

			// The second episode's request cycle exposes the fresh
			// selection through the bypass.
			out := c.Tick(exc.Sources{LoadFault: true}, false)
			Expect(out.Req).To(BeTrue())
			Expect(out.Cause).To(Equal(exc.CauseLoadFault))

			// While waiting for the grant the visible cause falls back
			// to the first episode's decision, since nothing has been
			// captured yet.
			out = c.Tick(exc.Sources{LoadFault: true}, false)
			Expect(out.Req).To(BeTrue())
			Expect(out.Cause).To(Equal(exc.CauseECallM))

			c.Tick(exc.Sources{LoadFault: true}, true)

			out = c.Tick(exc.Sources{}, false)
			Expect(out.Cause).To(Equal(exc.CauseLoadFault))
		})
	})

	Describe("return from trap", func() {
		BeforeEach(func() {
			c.Tick(exc.Sources{IllegalInsn: true}, true)
			Expect(c.State()).To(Equal(ctrl.StateService))
		})

		It("should go back to idle on the return", func() {
			out := c.Tick(exc.Sources{MRet: true}, false)

			Expect(out.Req).To(BeFalse())
			Expect(out.SaveCause).To(BeFalse())
			Expect(c.State()).To(Equal(ctrl.StateIdle))
		})

		It("should return to idle even when a source fires the same cycle", func() {
			// The source must persist into the idle cycle to be taken.
			c.Tick(exc.Sources{MRet: true, StoreFault: true}, false)
			Expect(c.State()).To(Equal(ctrl.StateIdle))

			out := c.Tick(exc.Sources{StoreFault: true}, true)
			Expect(out.SaveCause).To(BeTrue())
			Expect(out.Cause).To(Equal(exc.CauseStoreFault))
		})

		It("should accept a fresh episode right after returning", func() {
			c.Tick(exc.Sources{MRet: true}, false)

			out := c.Tick(exc.Sources{ECall: true}, true)

			Expect(out.Req).To(BeTrue())
			Expect(out.SaveCause).To(BeTrue())
			Expect(out.Cause).To(Equal(exc.CauseECallM))
			Expect(c.Latched()).To(Equal(exc.Decision{
				Cause: exc.CauseECallM,
				Entry: exc.EntryECall,
			}))
		})
	})

	Describe("Req", func() {
		It("should mirror the request line for each state", func() {
			Expect(c.Req(exc.Sources{})).To(BeFalse())
			Expect(c.Req(exc.Sources{ECall: true})).To(BeTrue())

			c.Tick(exc.Sources{ECall: true}, false)
			Expect(c.Req(exc.Sources{})).To(BeTrue())

			c.Tick(exc.Sources{}, true)
			Expect(c.Req(exc.Sources{StoreFault: true})).To(BeFalse())
		})
	})
})
