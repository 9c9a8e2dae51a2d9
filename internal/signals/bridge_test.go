package signals_test

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/ober/internal/signals"
)

var _ = Describe("Bridge", func() {
	var (
		ch     chan os.Signal
		bridge *signals.Bridge
		ctx    context.Context
		stop   func()
	)

	BeforeEach(func() {
		ch = make(chan os.Signal, 4)
		bridge = signals.NewFromChannel(ch, slog.New(slog.NewTextHandler(GinkgoWriter, nil)))
		ctx, stop = bridge.Watch(context.Background())
		DeferCleanup(func() { stop() })
	})

	It("should leave the context alone until a signal arrives", func() {
		Consistently(ctx.Done(), 50*time.Millisecond).ShouldNot(BeClosed())
		Expect(bridge.Received()).To(Equal(0))
	})

	DescribeTable("should cancel on a shutdown signal",
		func(sig os.Signal) {
			ch <- sig

			Eventually(ctx.Done()).Should(BeClosed())
			Expect(context.Cause(ctx)).To(MatchError(signals.ErrShutdown))
			Expect(context.Cause(ctx).Error()).To(ContainSubstring(sig.String()))
		},
		Entry("SIGTERM", syscall.SIGTERM),
		Entry("SIGINT", os.Interrupt),
	)

	It("should treat repeated signals as no-ops", func() {
		ch <- syscall.SIGTERM
		Eventually(ctx.Done()).Should(BeClosed())

		ch <- os.Interrupt
		ch <- syscall.SIGTERM
		Eventually(bridge.Received).Should(Equal(3))

		Expect(context.Cause(ctx).Error()).To(ContainSubstring(syscall.SIGTERM.String()))
	})

	It("should cancel with a plain cause when stopped", func() {
		stop()
		stop()

		Eventually(ctx.Done()).Should(BeClosed())
		Expect(context.Cause(ctx)).To(MatchError(context.Canceled))
	})

	It("should follow the parent context", func() {
		parent, cancel := context.WithCancel(context.Background())
		child, childStop := bridge.Watch(parent)
		DeferCleanup(childStop)

		cancel()
		Eventually(child.Done()).Should(BeClosed())
	})

	It("should cancel on a SIGTERM delivered to the process", func() {
		b := signals.New(slog.New(slog.NewTextHandler(GinkgoWriter, nil)))
		c, s := b.Watch(context.Background())
		DeferCleanup(s)

		Expect(syscall.Kill(os.Getpid(), syscall.SIGTERM)).To(Succeed())

		Eventually(c.Done()).Should(BeClosed())
		Expect(context.Cause(c)).To(MatchError(signals.ErrShutdown))
		Expect(b.Received()).To(Equal(1))
	})
})
