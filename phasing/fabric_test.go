package phasing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Fabric", func() {
	var fabric *Fabric

	BeforeEach(func() {
		fabric = NewFabric(4)
	})

	It("should not deliver before the barrier", func() {
		src := fabric.Endpoint(0)
		dst := fabric.Endpoint(2)

		src.Send(2, "token")

		Expect(dst.Pending()).To(Equal(0))
		_, ok := dst.Receive()
		Expect(ok).To(BeFalse())
		Expect(fabric.PendingTotal()).To(Equal(1))
	})

	It("should deliver after the barrier, tagged with the sender", func() {
		src := fabric.Endpoint(1)
		dst := fabric.Endpoint(3)

		src.Send(3, "token")
		fabric.Barrier()

		Expect(dst.Pending()).To(Equal(1))

		d, ok := dst.Receive()
		Expect(ok).To(BeTrue())
		Expect(d.From).To(Equal(1))
		Expect(d.Payload).To(Equal("token"))
		Expect(fabric.PendingTotal()).To(Equal(0))
	})

	It("should keep undelivered messages across barriers", func() {
		fabric.Endpoint(0).Send(1, "a")
		fabric.Barrier()
		fabric.Barrier()

		Expect(fabric.Endpoint(1).Pending()).To(Equal(1))
	})

	It("should preserve per-destination order", func() {
		src := fabric.Endpoint(0)
		src.Send(1, "first")
		src.Send(1, "second")
		fabric.Barrier()

		dst := fabric.Endpoint(1)
		d1, _ := dst.Receive()
		d2, _ := dst.Receive()

		Expect(d1.Payload).To(Equal("first"))
		Expect(d2.Payload).To(Equal("second"))
	})

	It("should panic on an out-of-range destination", func() {
		Expect(func() {
			fabric.Endpoint(0).Send(4, "oops")
		}).To(Panic())
	})
})
