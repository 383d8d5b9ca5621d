package chatstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Run", func() {
	var (
		ctx context.Context
		rec *recorder
	)

	BeforeEach(func() {
		ctx = context.Background()
		rec = &recorder{}
	})

	Context("with a fragmented stream", func() {
		It("joins a payload split across chunks into one delta", func() {
			r := newChunkReader(
				`data: {"choices":[{"delta":{"content":"Hel`,
				`lo"}}]}`+"\n",
				"data: [DONE]\n",
			)

			err := Run(ctx, r, rec.handler())
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.deltas).To(Equal([]string{"Hello"}))
			Expect(rec.done).To(Equal(1))
			Expect(rec.errs).To(BeEmpty())
		})

		It("emits the same deltas for every fixed chunk size", func() {
			contents := []string{"Hel", "lo, ", "wör", "ld 🌍", "!", "\n", "日本語"}
			var stream strings.Builder
			stream.WriteString(": keep-alive\n\n")
			for _, c := range contents {
				stream.WriteString(dataFrame(c))
			}
			stream.WriteString("data: [DONE]\n")

			for size := 1; size <= stream.Len(); size++ {
				rec := &recorder{}
				err := Run(ctx, newChunkReader(splitEvery(stream.String(), size)...), rec.handler())
				Expect(err).NotTo(HaveOccurred())
				Expect(rec.deltas).To(Equal(contents), "chunk size %d", size)
				Expect(rec.done).To(Equal(1))
				Expect(rec.errs).To(BeEmpty())
			}
		})

		It("emits the same deltas for random chunk boundaries", func() {
			contents := []string{"a", "ßç", "🙂🙂", "tail"}
			var stream strings.Builder
			for _, c := range contents {
				stream.WriteString(dataFrame(c))
			}
			stream.WriteString("data: [DONE]\n")
			raw := stream.String()

			rng := rand.New(rand.NewPCG(7, 11))
			for range 200 {
				var chunks []string
				rest := raw
				for len(rest) > 0 {
					n := 1 + rng.IntN(len(rest))
					chunks = append(chunks, rest[:n])
					rest = rest[n:]
				}

				rec := &recorder{}
				Expect(Run(ctx, newChunkReader(chunks...), rec.handler())).To(Succeed())
				Expect(rec.deltas).To(Equal(contents))
				Expect(rec.done).To(Equal(1))
			}
		})

		It("decodes a multi-byte character split at the chunk boundary", func() {
			frame := dataFrame("é")
			idx := strings.Index(frame, "é")
			r := newChunkReader(frame[:idx+1], frame[idx+1:])

			Expect(Run(ctx, r, rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"é"}))
			Expect(rec.done).To(Equal(1))
		})

		It("decodes a four byte character split at every offset", func() {
			frame := dataFrame("🌍")
			idx := strings.Index(frame, "🌍")
			for off := 1; off < 4; off++ {
				rec := &recorder{}
				r := newChunkReader(frame[:idx+off], frame[idx+off:])
				Expect(Run(ctx, r, rec.handler())).To(Succeed())
				Expect(rec.deltas).To(Equal([]string{"🌍"}))
			}
		})
	})

	Context("with the sentinel", func() {
		It("stops at the sentinel and ignores trailing frames", func() {
			r := newChunkReader(
				dataFrame("before"),
				"data: [DONE]\n"+dataFrame("same-chunk"),
				dataFrame("next-chunk"),
			)

			Expect(Run(ctx, r, rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"before"}))
			Expect(rec.done).To(Equal(1))
			Expect(r.chunks).To(HaveLen(1), "the chunk after the sentinel is never read")
		})

		It("accepts surrounding whitespace and CRLF", func() {
			r := newChunkReader(dataFrame("x"), "data:  [DONE]  \r\n")

			Expect(Run(ctx, r, rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"x"}))
			Expect(rec.done).To(Equal(1))
		})
	})

	Context("without the sentinel", func() {
		It("finishes on EOF", func() {
			Expect(Run(ctx, newChunkReader(dataFrame("a"), dataFrame("b")), rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"a", "b"}))
			Expect(rec.done).To(Equal(1))
		})

		It("flushes a final frame that lacks its newline", func() {
			last := strings.TrimSuffix(dataFrame("last"), "\n")
			Expect(Run(ctx, newChunkReader(dataFrame("first"), last), rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"first", "last"}))
			Expect(rec.done).To(Equal(1))
		})

		It("calls OnDone for an empty stream", func() {
			Expect(Run(ctx, newChunkReader(), rec.handler())).To(Succeed())
			Expect(rec.deltas).To(BeEmpty())
			Expect(rec.done).To(Equal(1))
		})
	})

	Context("with frames that carry no text", func() {
		It("stays silent for payloads without content", func() {
			r := newChunkReader(
				`data: {"choices":[{"delta":{}}]}`+"\n",
				`data: {"choices":[]}`+"\n",
				`data: {"id":"x"}`+"\n",
				`data: {"choices":[{"delta":{"content":""}}]}`+"\n",
				`data: {"choices":[{"delta":{"content":42}}]}`+"\n",
				"data: [DONE]\n",
			)

			Expect(Run(ctx, r, rec.handler())).To(Succeed())
			Expect(rec.deltas).To(BeEmpty())
			Expect(rec.errs).To(BeEmpty())
			Expect(rec.done).To(Equal(1))
		})

		It("skips comments, blank lines and unknown fields", func() {
			r := newChunkReader(
				": OPENROUTER PROCESSING\n",
				"\r\n",
				"   \n",
				"event: message\n",
				"id: 4\n",
				"data:{\"choices\":[{\"delta\":{\"content\":\"no space\"}}]}\n",
				dataFrame("kept"),
			)

			Expect(Run(ctx, r, rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"kept"}))
		})
	})

	Context("with a complete but malformed frame", func() {
		It("defers it and drops it at the final flush", func() {
			r := newChunkReader(
				dataFrame("one"),
				"data: {\"choices\":[{\n",
				dataFrame("two"),
				dataFrame("three"),
			)

			Expect(Run(ctx, r, rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"one", "two", "three"}))
			Expect(rec.errs).To(BeEmpty())
			Expect(rec.done).To(Equal(1))
		})

		It("holds later frames back until the final flush", func() {
			var readsAtDelta []int
			r := newChunkReader("data: {oops\n", dataFrame("later"))
			h := rec.handler()
			inner := h.OnDelta
			h.OnDelta = func(text string) {
				readsAtDelta = append(readsAtDelta, r.reads)
				inner(text)
			}

			Expect(Run(ctx, r, h)).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"later"}))
			Expect(readsAtDelta).To(Equal([]int{3}), "emitted only after the EOF read")
		})
	})

	Context("when reading fails", func() {
		It("reports a ReadError and never calls OnDone", func() {
			r := newChunkReader(dataFrame("partial"))
			r.err = errors.New("connection reset by peer")

			Expect(Run(ctx, r, rec.handler())).To(Succeed())
			Expect(rec.deltas).To(Equal([]string{"partial"}))
			Expect(rec.done).To(BeZero())
			Expect(rec.errs).To(HaveLen(1))

			var readErr *ReadError
			Expect(errors.As(rec.errs[0], &readErr)).To(BeTrue())
			Expect(rec.errs[0].Error()).To(ContainSubstring("connection reset by peer"))
		})

		It("reports ErrNoBody for a nil reader", func() {
			Expect(Run(ctx, nil, rec.handler())).To(Succeed())
			Expect(rec.errs).To(ConsistOf(MatchError(ErrNoBody)))
			Expect(rec.done).To(BeZero())
		})
	})

	Context("when cancelled", func() {
		It("does nothing if the context is already done", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			r := newChunkReader(dataFrame("x"))
			err := Run(cctx, r, rec.handler())
			Expect(err).To(MatchError(context.Canceled))
			Expect(r.reads).To(BeZero())
			Expect(rec.deltas).To(BeEmpty())
			Expect(rec.done).To(BeZero())
			Expect(rec.errs).To(BeEmpty())
		})

		It("stops after a cancel from inside a callback", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			pr, pw := io.Pipe()
			go func() {
				defer GinkgoRecover()
				_, err := pw.Write([]byte(dataFrame("first")))
				Expect(err).NotTo(HaveOccurred())
			}()

			h := rec.handler()
			h.OnDelta = func(text string) {
				rec.deltas = append(rec.deltas, text)
				cancel()
			}

			err := Run(cctx, pr, h)
			Expect(err).To(MatchError(context.Canceled))
			Expect(rec.deltas).To(Equal([]string{"first"}))
			Expect(rec.done).To(BeZero())
			Expect(rec.errs).To(BeEmpty())
		})

		It("closes an idle body to unwind a blocked read", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			pr, pw := io.Pipe()
			go func() {
				defer GinkgoRecover()
				_, err := pw.Write([]byte(dataFrame("first")))
				Expect(err).NotTo(HaveOccurred())
			}()

			h := rec.handler()
			h.OnDelta = func(text string) {
				rec.deltas = append(rec.deltas, text)
				// The writer stays idle, so Run is parked in Read when this fires.
				time.AfterFunc(20*time.Millisecond, cancel)
			}

			err := Run(cctx, pr, h)
			Expect(err).To(MatchError(context.Canceled))
			Expect(rec.deltas).To(Equal([]string{"first"}))
			Expect(rec.done).To(BeZero())
			Expect(rec.errs).To(BeEmpty())

			_, err = pw.Write([]byte(dataFrame("late")))
			Expect(err).To(MatchError(io.ErrClosedPipe))
		})
	})

	It("tolerates a handler with nil callbacks", func() {
		Expect(Run(ctx, newChunkReader(dataFrame("x")), Handler{})).To(Succeed())
	})
})

var _ = Describe("RunResponse", func() {
	var rec *recorder

	BeforeEach(func() {
		rec = &recorder{}
	})

	response := func(status int, body string) *http.Response {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
		}
	}

	It("streams a successful response", func() {
		resp := response(http.StatusOK, dataFrame("hi")+"data: [DONE]\n")
		Expect(RunResponse(context.Background(), resp, rec.handler())).To(Succeed())
		Expect(rec.deltas).To(Equal([]string{"hi"}))
		Expect(rec.done).To(Equal(1))
	})

	DescribeTable("maps unsuccessful statuses",
		func(status int, body string, kind StatusKind, message string) {
			Expect(RunResponse(context.Background(), response(status, body), rec.handler())).To(Succeed())
			Expect(rec.done).To(BeZero())
			Expect(rec.deltas).To(BeEmpty())
			Expect(rec.errs).To(HaveLen(1))

			var statusErr *StatusError
			Expect(errors.As(rec.errs[0], &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(status))
			Expect(statusErr.Kind).To(Equal(kind))
			Expect(statusErr.Error()).To(Equal(message))
		},
		Entry("rate limit", http.StatusTooManyRequests, `{"error":"slow down"}`, StatusRateLimited, RateLimitMessage),
		Entry("credits exhausted", http.StatusPaymentRequired, "", StatusCreditsExhausted, CreditsExhaustedMessage),
		Entry("error field", http.StatusInternalServerError, `{"error":"boom"}`, StatusUpstream, "boom"),
		Entry("non-JSON body", http.StatusBadGateway, "<html>bad gateway</html>", StatusUpstream, DefaultFailureMessage),
		Entry("empty error field", http.StatusInternalServerError, `{"error":""}`, StatusUpstream, DefaultFailureMessage),
		Entry("non-string error field", http.StatusBadRequest, `{"error":{"code":1}}`, StatusUpstream, DefaultFailureMessage),
	)

	It("reports ErrNoBody for a nil response", func() {
		Expect(RunResponse(context.Background(), nil, rec.handler())).To(Succeed())
		Expect(rec.errs).To(ConsistOf(MatchError(ErrNoBody)))
	})

	It("reports ErrNoBody for a successful response without a body", func() {
		resp := &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}
		Expect(RunResponse(context.Background(), resp, rec.handler())).To(Succeed())
		Expect(rec.errs).To(ConsistOf(MatchError(ErrNoBody)))
		Expect(rec.done).To(BeZero())
	})
})
