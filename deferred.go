package splatview

import "sync/atomic"

// deferredResult carries either a value or an error across the channel.
type deferredResult[T any] struct {
	value T
	err   error
}

// Deferred is the consumer half of a single-assignment result cell. It
// bridges a value computed on a background goroutine (file dialog, buffer
// readback, decode) into a non-blocking, frame-polled control loop.
//
// A Deferred starts Pending. Poll is called once per frame tick; on the
// first successful receive it transitions to Ready and stays there — all
// further Poll calls are no-ops returning the same value. A rejected cell
// stays Pending with the error recorded and retrievable via Err.
//
// There is no cancellation: dropping a Deferred does not stop the
// producing goroutine, which runs to completion. That is acceptable for
// the short-lived tasks the cell is used for (one file pick, one buffer
// download); a late send is tolerated, never fatal.
type Deferred[T any] struct {
	ch    chan deferredResult[T]
	ready bool
	value T
	err   error
}

// DeferredProducer is the producer half of a result cell. It is moved
// into the background goroutine and must resolve or reject at most once.
// Further writes are logged and dropped: several legitimate flows outlive
// or are outlived by their consumer (for example, the user navigates away
// mid-download), so a dead consumer is interpreted as "result no longer
// wanted", never as a fault.
type DeferredProducer[T any] struct {
	ch   chan deferredResult[T]
	sent atomic.Bool
}

// NewDeferred creates a paired producer and consumer in the Pending state
// with no error recorded.
func NewDeferred[T any]() (*DeferredProducer[T], *Deferred[T]) {
	ch := make(chan deferredResult[T], 1)
	return &DeferredProducer[T]{ch: ch}, &Deferred[T]{ch: ch}
}

// Resolve delivers the value. Only the first Resolve or Reject takes
// effect; later calls are logged and dropped.
func (p *DeferredProducer[T]) Resolve(value T) {
	p.send(deferredResult[T]{value: value})
}

// Reject records an error on the cell. The consumer stays Pending with
// the error readable via [Deferred.Err]; the operation simply never
// completes.
func (p *DeferredProducer[T]) Reject(err error) {
	p.send(deferredResult[T]{err: err})
}

func (p *DeferredProducer[T]) send(r deferredResult[T]) {
	if !p.sent.CompareAndSwap(false, true) {
		Logger().Warn("deferred: duplicate result dropped", "err", r.err)
		return
	}
	// The channel is buffered, so the send succeeds even when the
	// consumer is already gone; the result is then simply never read.
	p.ch <- r
}

// Poll advances the cell without blocking. It returns the value and true
// once the cell is Ready; before any send it leaves the state unchanged
// and returns false. After the first successful receive the cell is
// terminal: repeated calls return the same value.
func (d *Deferred[T]) Poll() (T, bool) {
	if d.ready {
		return d.value, true
	}

	select {
	case r := <-d.ch:
		if r.err != nil {
			d.err = r.err
			var zero T
			return zero, false
		}
		d.value = r.value
		d.ready = true
		return d.value, true
	default:
		var zero T
		return zero, false
	}
}

// Ready reports whether the cell has received its value.
func (d *Deferred[T]) Ready() bool {
	return d.ready
}

// Err returns the last error recorded by Reject, or nil. A non-nil error
// does not make the cell Ready; it is surfaced to the user and the
// triggering action must be re-issued.
func (d *Deferred[T]) Err() error {
	return d.err
}
