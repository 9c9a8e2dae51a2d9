package announce_test

import (
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/ober/internal/announce"
	"github.com/angeloszaimis/ober/internal/hysteresis"
	"github.com/angeloszaimis/ober/internal/vip"
)

// chunkWriter records every Write call separately.
type chunkWriter struct {
	chunks []string
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.chunks = append(w.chunks, string(p))
	return len(p), nil
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

var _ = Describe("Emitter", func() {
	var (
		out     *chunkWriter
		emitter *announce.Emitter
		vips    []vip.Address
	)

	BeforeEach(func() {
		out = &chunkWriter{}
		vips = []vip.Address{
			vip.MustParse("10.0.100.1/32"),
			vip.MustParse("10.0.100.2"),
		}
		emitter = announce.NewEmitter(out, vips)
	})

	Describe("Command", func() {
		It("should render announce lines", func() {
			Expect(announce.Command(announce.ActionAnnounce, vips[0])).
				To(Equal("announce route 10.0.100.1/32 next-hop self"))
		})

		It("should render withdraw lines as /32 whatever the interface prefix", func() {
			Expect(announce.Command(announce.ActionWithdraw, vip.MustParse("10.0.0.1/24"))).
				To(Equal("withdraw route 10.0.0.1/32 next-hop self"))
		})
	})

	Describe("Emit", func() {
		It("should announce every address on UP", func() {
			n, err := emitter.Emit(hysteresis.StateUp)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
			Expect(out.chunks).To(Equal([]string{
				"announce route 10.0.100.1/32 next-hop self\n",
				"announce route 10.0.100.2/32 next-hop self\n",
			}))
			Expect(emitter.Last()).To(Equal(hysteresis.StateUp))
		})

		It("should withdraw every address on DOWN", func() {
			_, err := emitter.Emit(hysteresis.StateDown)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.chunks).To(Equal([]string{
				"withdraw route 10.0.100.1/32 next-hop self\n",
				"withdraw route 10.0.100.2/32 next-hop self\n",
			}))
		})

		It("should write nothing for UNKNOWN", func() {
			n, err := emitter.Emit(hysteresis.StateUnknown)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
			Expect(out.chunks).To(BeEmpty())
		})

		It("should not repeat an unchanged state", func() {
			emitter.Emit(hysteresis.StateUp)
			n, err := emitter.Emit(hysteresis.StateUp)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
			Expect(out.chunks).To(HaveLen(2))
		})

		It("should emit again after an intervening change", func() {
			emitter.Emit(hysteresis.StateUp)
			emitter.Emit(hysteresis.StateDown)
			emitter.Emit(hysteresis.StateUp)
			Expect(out.chunks).To(HaveLen(6))
			Expect(out.chunks[4]).To(HavePrefix("announce"))
		})

		It("should return write errors", func() {
			emitter = announce.NewEmitter(failingWriter{}, vips)
			n, err := emitter.Emit(hysteresis.StateUp)
			Expect(err).To(MatchError(ContainSubstring("broken pipe")))
			Expect(n).To(BeZero())
			Expect(emitter.Last()).To(Equal(hysteresis.StateUnknown))
		})

		It("should fail once the reading side of a pipe is closed", func() {
			r, w := io.Pipe()
			r.Close()

			emitter = announce.NewEmitter(w, vips)
			_, err := emitter.Emit(hysteresis.StateUp)
			Expect(err).To(MatchError(io.ErrClosedPipe))
		})
	})

	Describe("WithdrawAll", func() {
		It("should withdraw even when DOWN was already emitted", func() {
			emitter.Emit(hysteresis.StateDown)
			n, err := emitter.WithdrawAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
			Expect(out.chunks).To(HaveLen(4))
			for _, line := range out.chunks[2:] {
				Expect(line).To(HavePrefix("withdraw route "))
			}
		})

		It("should withdraw when nothing was emitted yet", func() {
			_, err := emitter.WithdrawAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Join(out.chunks, "")).To(Equal(
				"withdraw route 10.0.100.1/32 next-hop self\n" +
					"withdraw route 10.0.100.2/32 next-hop self\n"))
			Expect(emitter.Last()).To(Equal(hysteresis.StateDown))
		})

		It("should write nothing without addresses", func() {
			emitter = announce.NewEmitter(out, nil)
			n, err := emitter.WithdrawAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Describe("ActionFor", func() {
		It("should map states to actions", func() {
			a, ok := announce.ActionFor(hysteresis.StateUp)
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal(announce.ActionAnnounce))

			a, ok = announce.ActionFor(hysteresis.StateDown)
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal(announce.ActionWithdraw))

			_, ok = announce.ActionFor(hysteresis.StateUnknown)
			Expect(ok).To(BeFalse())
		})
	})
})
