package chatstream

import "strings"

// action is the outcome of trying to extract one frame from the buffer.
type action int

const (
	actionDiscard action = iota
	actionEmit
	actionDefer
	actionFinish
)

func (a action) String() string {
	switch a {
	case actionDiscard:
		return "discard"
	case actionEmit:
		return "emit"
	case actionDefer:
		return "defer"
	case actionFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// decide maps a parsed frame to the buffer transition it causes.
func decide(f Frame) action {
	switch f.Kind {
	case FrameDelta:
		return actionEmit
	case FrameSentinel:
		return actionFinish
	case FrameMalformed:
		return actionDefer
	default:
		return actionDiscard
	}
}

// frameBuffer accumulates decoded text until it can be cut into lines.
// After every extraction pass it holds either a trailing partial line or a
// deferred line followed by whatever arrived after it.
type frameBuffer struct {
	pending string
}

func (b *frameBuffer) write(s string) {
	b.pending += s
}

// next cuts the first complete line off the front of the buffer. It reports
// false while the buffer only holds a partial line.
func (b *frameBuffer) next() (Frame, bool) {
	line, rest, ok := strings.Cut(b.pending, "\n")
	if !ok {
		return Frame{}, false
	}
	b.pending = rest
	return ParseLine(line), true
}

// pushBack re-inserts a deferred frame so it is retried once more data
// arrives.
func (b *frameBuffer) pushBack(f Frame) {
	b.pending = f.Line + "\n" + b.pending
}

func (b *frameBuffer) reset() {
	b.pending = ""
}

// drain empties the buffer and returns its remaining lines for the final
// flush. It returns nil when only whitespace is left.
func (b *frameBuffer) drain() []string {
	pending := b.pending
	b.pending = ""
	if strings.TrimSpace(pending) == "" {
		return nil
	}
	return strings.Split(pending, "\n")
}
