// Package chatstream reads streaming chat completion responses.
//
// The stream is a sequence of newline-delimited frames:
//
//	: comment          ignored
//	(blank)            ignored
//	data: {...}        JSON payload, choices[0].delta.content is emitted
//	data: [DONE]       end of stream
//
// Chunks arrive at arbitrary network boundaries. The reader decodes them with
// a stateful UTF-8 decoder, buffers partial lines, and defers a complete data
// line whose payload is not yet valid JSON until more bytes arrive.
package chatstream

import (
	"context"
	"errors"
	"io"
	"net/http"
)

const (
	readBufSize  = 4096
	maxErrorBody = 64 * 1024
)

// Handler receives the outcome of a stream. Exactly one of OnDone or OnError
// is called unless the run is cancelled, in which case neither is.
// Nil callbacks are skipped.
type Handler struct {
	// OnDelta is called once per non-empty content fragment, in frame order.
	OnDelta func(text string)

	// OnDone is called once the stream is fully consumed.
	OnDone func()

	// OnError is called at most once with an error whose message is
	// suitable for display.
	OnError func(err error)
}

func (h Handler) delta(text string) {
	if h.OnDelta != nil {
		h.OnDelta(text)
	}
}

func (h Handler) done() {
	if h.OnDone != nil {
		h.OnDone()
	}
}

func (h Handler) fail(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

// RunResponse validates resp and streams its body through Run. Non-2xx
// statuses are reported as *StatusError and a missing body as ErrNoBody.
// The response body is closed before RunResponse returns.
func RunResponse(ctx context.Context, resp *http.Response, h Handler) error {
	if resp == nil {
		h.fail(ErrNoBody)
		return nil
	}

	if resp.Body != nil {
		defer resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body []byte
		if resp.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		}
		h.fail(ClassifyStatus(resp.StatusCode, body, DefaultFailureMessage))
		return nil
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		h.fail(ErrNoBody)
		return nil
	}

	return Run(ctx, resp.Body, h)
}

// Run reads body until the "[DONE]" sentinel or EOF, emitting content deltas
// to h and then calling h.OnDone. Read failures are reported through
// h.OnError as *ReadError.
//
// Cancelling ctx is silent: no further callbacks fire and Run returns
// ctx.Err(). If body is an io.Closer it is closed on cancellation so a
// blocked Read unwinds; otherwise cancellation takes effect at the next read.
// Run returns nil whenever a terminal callback was invoked.
func Run(ctx context.Context, body io.Reader, h Handler) error {
	if body == nil {
		h.fail(ErrNoBody)
		return nil
	}

	if c, ok := body.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	s := &session{h: h, dec: newDecoder()}
	return s.run(ctx, body)
}

// session is the state of one Run: its buffer and decoder are never shared.
type session struct {
	h   Handler
	dec *decoder
	buf frameBuffer
}

func (s *session) run(ctx context.Context, body io.Reader) error {
	p := make([]byte, readBufSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := body.Read(p)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if n > 0 {
			if s.consume(s.dec.decode(p[:n], false)) {
				s.buf.reset()
				s.h.done()
				return nil
			}
		}

		if errors.Is(err, io.EOF) {
			s.buf.write(s.dec.decode(nil, true))
			s.flush()
			s.h.done()
			return nil
		}
		if err != nil {
			s.h.fail(&ReadError{Err: err})
			return nil
		}
	}
}

// consume appends text and extracts as many frames as possible. It reports
// true once the sentinel has been seen.
func (s *session) consume(text string) bool {
	s.buf.write(text)

	for {
		f, ok := s.buf.next()
		if !ok {
			return false
		}

		switch decide(f) {
		case actionEmit:
			s.h.delta(f.Text)
		case actionDefer:
			s.buf.pushBack(f)
			return false
		case actionFinish:
			return true
		case actionDiscard:
		}
	}
}

// flush is the best-effort pass over whatever is left at EOF. Nothing more
// is coming, so malformed frames are dropped instead of deferred.
func (s *session) flush() {
	for _, line := range s.buf.drain() {
		if f := ParseLine(line); decide(f) == actionEmit {
			s.h.delta(f.Text)
		}
	}
}
