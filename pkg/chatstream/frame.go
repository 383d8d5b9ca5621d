package chatstream

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// Sentinel is the data payload that marks the explicit end of a stream.
	Sentinel = "[DONE]"

	dataPrefix  = "data: "
	contentPath = "choices.0.delta.content"
)

// FrameKind tags what a single line of the stream turned out to be.
type FrameKind int

const (
	// FrameIgnored covers comment, blank and unrecognized lines.
	FrameIgnored FrameKind = iota

	// FrameNoContent is a well-formed JSON payload without a non-empty
	// choices[0].delta.content string.
	FrameNoContent

	// FrameDelta carries a content fragment in Frame.Text.
	FrameDelta

	// FrameSentinel is the "data: [DONE]" end marker.
	FrameSentinel

	// FrameMalformed is a data line whose payload is not (yet) valid JSON.
	FrameMalformed
)

func (k FrameKind) String() string {
	switch k {
	case FrameIgnored:
		return "ignored"
	case FrameNoContent:
		return "no-content"
	case FrameDelta:
		return "delta"
	case FrameSentinel:
		return "sentinel"
	case FrameMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Frame is one parsed line of an event stream.
type Frame struct {
	Kind FrameKind

	// Text is the content fragment. Only set for FrameDelta.
	Text string

	// Line is the line as received, minus its terminator and any trailing
	// carriage return.
	Line string
}

// ParseLine classifies a single line (without its "\n") of an event stream.
//
// The sentinel is checked before any JSON parsing since "[DONE]" is not JSON.
func ParseLine(line string) Frame {
	line = strings.TrimSuffix(line, "\r")
	f := Frame{Kind: FrameIgnored, Line: line}

	if strings.HasPrefix(line, ":") || strings.TrimSpace(line) == "" {
		return f
	}

	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return f
	}

	payload = strings.TrimSpace(payload)
	if payload == Sentinel {
		f.Kind = FrameSentinel
		return f
	}

	if !gjson.Valid(payload) {
		f.Kind = FrameMalformed
		return f
	}

	content := gjson.Get(payload, contentPath)
	if content.Type != gjson.String || content.Str == "" {
		f.Kind = FrameNoContent
		return f
	}

	f.Kind = FrameDelta
	f.Text = content.Str
	return f
}
