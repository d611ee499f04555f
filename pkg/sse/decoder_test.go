package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// feedAll feeds chunks in order and collects every completed line.
func feedAll(d *Decoder, chunks ...string) []string {
	var lines []string
	for _, c := range chunks {
		lines = append(lines, d.Feed([]byte(c))...)
	}
	return lines
}

// bytewise splits s into one-byte chunks.
func bytewise(s string) []string {
	chunks := make([]string, 0, len(s))
	for i := 0; i < len(s); i++ {
		chunks = append(chunks, s[i:i+1])
	}
	return chunks
}

var _ = Describe("Decoder", func() {
	var d *Decoder

	BeforeEach(func() {
		d = NewDecoder()
	})

	Describe("Feed", func() {
		Context("with whole lines", func() {
			It("returns a single complete line", func() {
				Expect(d.Feed([]byte("data: hello\n"))).To(Equal([]string{"data: hello"}))
				Expect(d.Pending()).To(BeEmpty())
			})

			It("returns multiple lines in order", func() {
				lines := d.Feed([]byte("data: first\n\ndata: second\n"))
				Expect(lines).To(Equal([]string{"data: first", "", "data: second"}))
			})

			It("returns nothing for an empty chunk", func() {
				Expect(d.Feed(nil)).To(BeEmpty())
				Expect(d.Feed([]byte{})).To(BeEmpty())
			})
		})

		Context("with lines split across chunks", func() {
			It("holds the partial line until its terminator arrives", func() {
				Expect(d.Feed([]byte("data: {\"type\":"))).To(BeEmpty())
				Expect(d.Pending()).To(Equal("data: {\"type\":"))

				Expect(d.Feed([]byte("\"x\"}\ndata: nex"))).To(Equal([]string{"data: {\"type\":\"x\"}"}))
				Expect(d.Pending()).To(Equal("data: nex"))
			})

			It("produces the same lines for one-byte chunks as for the whole input", func() {
				input := "data: one\n: comment\n\ndata: two\nevent: x\ndata: [DONE]\n"

				whole := feedAll(NewDecoder(), input)
				split := feedAll(NewDecoder(), bytewise(input)...)

				Expect(split).To(Equal(whole))
				Expect(whole).To(HaveLen(6))
			})

			It("keeps a trailing line without terminator pending", func() {
				Expect(feedAll(d, "data: a\n", "data: unterminated")).To(Equal([]string{"data: a"}))
				Expect(d.Pending()).To(Equal("data: unterminated"))
			})
		})

		Context("with multi-byte characters", func() {
			It("carries a character split across two chunks", func() {
				// "é" is 0xC3 0xA9.
				Expect(d.Feed([]byte("data: caf\xc3"))).To(BeEmpty())
				Expect(d.Feed([]byte("\xa9\n"))).To(Equal([]string{"data: café"}))
			})

			It("carries a four byte character split across every byte", func() {
				input := "data: 🩺 ok\n"
				Expect(feedAll(d, bytewise(input)...)).To(Equal([]string{"data: 🩺 ok"}))
			})

			It("replaces ill-formed bytes with U+FFFD", func() {
				Expect(d.Feed([]byte("data: a\xffb\n"))).To(Equal([]string{"data: a�b"}))
			})

			It("replaces a truncated sequence followed by ASCII", func() {
				Expect(d.Feed([]byte("data: \xe2\x82"))).To(BeEmpty())
				Expect(d.Feed([]byte("x\n"))).To(Equal([]string{"data: �x"}))
			})
		})

		Context("with CRLF terminators", func() {
			It("leaves the carriage return on the line", func() {
				Expect(d.Feed([]byte("data: hi\r\n"))).To(Equal([]string{"data: hi\r"}))
			})
		})
	})
})

var _ = Describe("ParseRecord", func() {
	It("parses a data line", func() {
		rec := ParseRecord(`data: {"type":"delta"}`)
		Expect(rec.Kind).To(Equal(RecordData))
		Expect(rec.Payload).To(Equal(`{"type":"delta"}`))
	})

	It("trims surrounding whitespace from the payload", func() {
		rec := ParseRecord("data:   {\"a\":1}  \r")
		Expect(rec.Kind).To(Equal(RecordData))
		Expect(rec.Payload).To(Equal(`{"a":1}`))
	})

	It("recognizes the terminal sentinel", func() {
		rec := ParseRecord("data: [DONE]")
		Expect(rec.Kind).To(Equal(RecordDone))
		Expect(rec.Kind.String()).To(Equal("done"))
	})

	It("recognizes the sentinel with trailing whitespace", func() {
		Expect(ParseRecord("data: [DONE] \r").Kind).To(Equal(RecordDone))
	})

	DescribeTable("ignores lines without the data prefix",
		func(line string) {
			rec := ParseRecord(line)
			Expect(rec.Kind).To(Equal(RecordIgnored))
			Expect(rec.Payload).To(BeEmpty())
		},
		Entry("blank keep-alive", ""),
		Entry("comment", ": keep-alive"),
		Entry("event field", "event: response.output_text.delta"),
		Entry("id field", "id: 42"),
		Entry("retry field", "retry: 3000"),
		Entry("data without space", "data:{\"a\":1}"),
		Entry("bare field name", "data"),
	)

	It("keeps an empty payload as a data record", func() {
		rec := ParseRecord("data: ")
		Expect(rec.Kind).To(Equal(RecordData))
		Expect(rec.Payload).To(BeEmpty())
	})
})
