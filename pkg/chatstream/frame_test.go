package chatstream

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseLine", func() {
	DescribeTable("classifies lines",
		func(line string, kind FrameKind, text string) {
			f := ParseLine(line)
			Expect(f.Kind).To(Equal(kind), "kind was %s", f.Kind)
			Expect(f.Text).To(Equal(text))
		},
		Entry("comment", ": ping", FrameIgnored, ""),
		Entry("blank", "", FrameIgnored, ""),
		Entry("whitespace", " \t ", FrameIgnored, ""),
		Entry("unknown field", "event: delta", FrameIgnored, ""),
		Entry("data without space", `data:{"choices":[]}`, FrameIgnored, ""),
		Entry("sentinel", "data: [DONE]", FrameSentinel, ""),
		Entry("sentinel with CR", "data: [DONE]\r", FrameSentinel, ""),
		Entry("delta", `data: {"choices":[{"delta":{"content":"hi"}}]}`, FrameDelta, "hi"),
		Entry("delta with escapes", `data: {"choices":[{"delta":{"content":"a\nb \"q\""}}]}`, FrameDelta, "a\nb \"q\""),
		Entry("second choice ignored", `data: {"choices":[{"delta":{}},{"delta":{"content":"no"}}]}`, FrameNoContent, ""),
		Entry("empty content", `data: {"choices":[{"delta":{"content":""}}]}`, FrameNoContent, ""),
		Entry("null content", `data: {"choices":[{"delta":{"content":null}}]}`, FrameNoContent, ""),
		Entry("scalar payload", "data: 5", FrameNoContent, ""),
		Entry("truncated JSON", `data: {"choices":[{"delta":{"content":"hi`, FrameMalformed, ""),
		Entry("empty payload", "data: ", FrameMalformed, ""),
	)

	It("keeps the line minus its carriage return", func() {
		f := ParseLine("data: {oops\r")
		Expect(f.Kind).To(Equal(FrameMalformed))
		Expect(f.Line).To(Equal("data: {oops"))
	})
})

var _ = Describe("frame buffer", func() {
	DescribeTable("decide",
		func(kind FrameKind, want action) {
			Expect(decide(Frame{Kind: kind})).To(Equal(want))
		},
		Entry("ignored", FrameIgnored, actionDiscard),
		Entry("no content", FrameNoContent, actionDiscard),
		Entry("delta", FrameDelta, actionEmit),
		Entry("sentinel", FrameSentinel, actionFinish),
		Entry("malformed", FrameMalformed, actionDefer),
	)

	It("only yields complete lines", func() {
		var b frameBuffer
		b.write("data: [DO")
		_, ok := b.next()
		Expect(ok).To(BeFalse())

		b.write("NE]\nrest")
		f, ok := b.next()
		Expect(ok).To(BeTrue())
		Expect(f.Kind).To(Equal(FrameSentinel))
		Expect(b.pending).To(Equal("rest"))
	})

	It("retries a pushed back frame first", func() {
		var b frameBuffer
		b.write("data: {bad\ndata: [DONE]\n")

		f, ok := b.next()
		Expect(ok).To(BeTrue())
		Expect(decide(f)).To(Equal(actionDefer))
		b.pushBack(f)

		again, ok := b.next()
		Expect(ok).To(BeTrue())
		Expect(again.Line).To(Equal("data: {bad"))

		next, ok := b.next()
		Expect(ok).To(BeTrue())
		Expect(next.Kind).To(Equal(FrameSentinel))
	})

	It("drains the remaining lines", func() {
		var b frameBuffer
		b.write("a\nb")
		Expect(b.drain()).To(Equal([]string{"a", "b"}))
		Expect(b.pending).To(BeEmpty())

		b.write(" \n ")
		Expect(b.drain()).To(BeNil())
	})
})

var _ = Describe("decoder", func() {
	It("carries an incomplete sequence to the next chunk", func() {
		d := newDecoder()
		euro := []byte("€")

		Expect(d.decode(euro[:1], false)).To(BeEmpty())
		Expect(d.decode(euro[1:2], false)).To(BeEmpty())
		Expect(d.decode(append(euro[2:], 'x'), false)).To(Equal("€x"))
	})

	It("replaces invalid bytes", func() {
		d := newDecoder()
		Expect(d.decode([]byte{'a', 0xff, 'b'}, false)).To(Equal("a�b"))
	})

	It("drops a leading byte order mark", func() {
		d := newDecoder()
		Expect(d.decode([]byte("\xef\xbb\xbfdata"), false)).To(Equal("data"))
	})

	It("flushes a dangling sequence at EOF", func() {
		d := newDecoder()
		Expect(d.decode([]byte{'o', 0xe2, 0x82}, false)).To(Equal("o"))
		Expect(d.decode(nil, true)).To(Equal("�"))
	})

	It("handles chunks larger than its scratch buffer", func() {
		d := newDecoder()
		big := make([]byte, 3*decodeBufSize+1)
		for i := range big {
			big[i] = 'z'
		}
		Expect(d.decode(big, false)).To(HaveLen(len(big)))
	})
})
