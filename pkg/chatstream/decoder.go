package chatstream

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const decodeBufSize = 4096

// decoder turns byte chunks into text, carrying an incomplete trailing UTF-8
// sequence over to the next chunk. Invalid sequences decode to U+FFFD and a
// leading byte order mark is dropped.
type decoder struct {
	t    transform.Transformer
	tail []byte
	dst  []byte
}

func newDecoder() *decoder {
	return &decoder{
		t:   unicode.UTF8BOM.NewDecoder(),
		dst: make([]byte, decodeBufSize),
	}
}

// decode returns the text for p plus any carried-over bytes. With atEOF set,
// incomplete trailing bytes are flushed as U+FFFD instead of being held.
func (d *decoder) decode(p []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.tail)+len(p))
	src = append(src, d.tail...)
	src = append(src, p...)
	d.tail = nil

	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out.Write(d.dst[:nDst])
		src = src[nSrc:]

		switch err {
		case nil:
			return out.String()
		case transform.ErrShortDst:
			if nDst == 0 && nSrc == 0 {
				d.dst = make([]byte, 2*len(d.dst))
			}
		case transform.ErrShortSrc:
			d.tail = append(d.tail, src...)
			return out.String()
		default:
			// Unreachable for UTF-8, which replaces bad input.
			out.Write(src)
			return out.String()
		}
	}
}
