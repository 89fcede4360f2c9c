// Package responsebody implements the bounded producer/consumer channel
// that backs every streamed HTTP response body: the channel's fixed
// capacity is the server's only backpressure mechanism, throttling file
// reads to the rate the socket drains at.
package responsebody

import "io"

// DefaultCapacity is the recommended channel depth from the spec: enough
// frames in flight to keep the pipe full without letting an unbounded
// number of chunks pile up in memory ahead of a slow client.
const DefaultCapacity = 32

// Sender is the producer side of a ResponseBody. Send blocks when the
// channel is full and returns an error once the consumer has gone away;
// the producer must treat that as ordinary termination, not a failure to
// report to the client.
type Sender struct {
	frames chan []byte
	done   chan struct{}
}

// Send enqueues buf for delivery, blocking if the channel is full. It
// returns an error if the Body's consumer has already been dropped.
func (s *Sender) Send(buf []byte) error {
	select {
	case s.frames <- buf:
		return nil
	case <-s.done:
		return io.ErrClosedPipe
	}
}

// Close signals end-of-stream to the Body. Safe to call exactly once.
func (s *Sender) Close() {
	close(s.frames)
}

// Body is the consumer side of a ResponseBody: an io.Reader that yields
// frames in the order they were sent, and reports the declared total
// length (if any) for a Content-Length hint.
type Body struct {
	frames    chan []byte
	done      chan struct{}
	closeOnce chan struct{}
	length    int64
	hasLength bool
	pending   []byte
}

// Channel creates a new bounded ResponseBody with the given capacity (use
// DefaultCapacity unless a caller has a specific reason not to) and an
// optional declared total length. A negative length means "unknown".
func Channel(capacity int, length int64) (*Sender, *Body) {
	frames := make(chan []byte, capacity)
	done := make(chan struct{})
	s := &Sender{frames: frames, done: done}
	b := &Body{
		frames:    frames,
		done:      done,
		closeOnce: make(chan struct{}, 1),
		length:    length,
		hasLength: length >= 0,
	}
	return s, b
}

// One returns a Body that yields a single pre-materialized frame; a
// convenience for responses that need no producer goroutine at all (empty
// bodies, short error pages).
func One(buf []byte) *Body {
	s, b := Channel(1, int64(len(buf)))
	_ = s.Send(buf)
	s.Close()
	return b
}

// Len reports the declared total length and whether one was given.
func (b *Body) Len() (int64, bool) {
	return b.length, b.hasLength
}

// Read implements io.Reader, draining frames in FIFO order. Closing the
// Sender (or the Body's consumer releasing it via Close) ends the stream.
func (b *Body) Read(p []byte) (int, error) {
	for len(b.pending) == 0 {
		frame, ok := <-b.frames
		if !ok {
			return 0, io.EOF
		}
		b.pending = frame
	}
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	return n, nil
}

// Close signals the producer that this Body will not be drained further.
// It is the receiver-dropped half of cancellation: the next Sender.Send
// fails and the producer goroutine is expected to exit promptly.
func (b *Body) Close() error {
	select {
	case b.closeOnce <- struct{}{}:
		close(b.done)
	default:
	}
	return nil
}
