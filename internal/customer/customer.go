// Package customer implements the per-(app, customer) bookkeeper shared by
// KVWorker and KVServer: timestamp allocation, response counting, and a
// single dispatcher goroutine that delivers inbound messages to its
// owner's handler in arrival order. It is the Go counterpart of ps-lite's
// Customer.
package customer

import (
	"sync"

	"github.com/dreamware/parasrv/internal/psmsg"
)

// Customer tracks, per request timestamp, how many responses are still
// outstanding, and wakes any goroutine blocked in WaitRequest once the
// expected count is reached. It also owns the single FIFO dispatcher
// goroutine that feeds inbound messages to the handler supplied to New.
type Customer struct {
	mu        sync.Mutex
	cond      *sync.Cond
	nextTS    int64
	expected  map[int64]int
	received  map[int64]int
	completed map[int64]bool

	inbox chan psmsg.Message
	done  chan struct{}
}

// New creates a Customer whose dispatcher goroutine calls handle exactly
// once per enqueued message, in the order Enqueue was called.
func New(handle func(psmsg.Message)) *Customer {
	c := &Customer{
		expected:  make(map[int64]int),
		received:  make(map[int64]int),
		completed: make(map[int64]bool),
		inbox:     make(chan psmsg.Message, 64),
		done:      make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	go c.dispatch(handle)
	return c
}

func (c *Customer) dispatch(handle func(psmsg.Message)) {
	for {
		select {
		case msg := <-c.inbox:
			handle(msg)
		case <-c.done:
			return
		}
	}
}

// Enqueue hands a freshly received message to the dispatcher goroutine.
// It is the function a Van route registers as this Customer's inbound
// handler.
func (c *Customer) Enqueue(msg psmsg.Message) {
	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

// NewRequest allocates the next timestamp and records how many responses
// it expects before it is considered complete.
func (c *Customer) NewRequest(expected int) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.nextTS
	c.nextTS++
	c.expected[ts] = expected
	c.received[ts] = 0
	return ts
}

// AddResponse credits ts with delta more responses and reports whether
// this call is the one that brought it to completion. It fires at most
// once per timestamp regardless of how many times AddResponse is called
// afterward, giving callers an exactly-once completion signal without a
// separate NumResponse race.
func (c *Customer) AddResponse(ts int64, delta int) (justCompleted bool) {
	c.mu.Lock()
	c.received[ts] += delta
	if !c.completed[ts] && c.received[ts] >= c.expected[ts] {
		c.completed[ts] = true
		justCompleted = true
	}
	c.cond.Broadcast()
	c.mu.Unlock()
	return justCompleted
}

// NumResponse returns the number of responses credited to ts so far.
func (c *Customer) NumResponse(ts int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received[ts]
}

// WaitRequest blocks until ts has received as many responses as it
// expects.
func (c *Customer) WaitRequest(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.received[ts] < c.expected[ts] {
		c.cond.Wait()
	}
}

// Forget discards the bookkeeping for ts. Callers invoke it once a
// request's completion callback has run and its state is no longer
// needed.
func (c *Customer) Forget(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.expected, ts)
	delete(c.received, ts)
	delete(c.completed, ts)
}

// Close stops the dispatcher goroutine. Any message already queued when
// Close is called may or may not be delivered.
func (c *Customer) Close() {
	close(c.done)
}
