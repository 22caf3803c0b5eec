// Package dispatch provides the single UI-owning execution context. All
// controller state mutation and all sink writes happen on one Dispatcher;
// completion callbacks arriving on worker goroutines are redispatched through
// it before touching any shared state.
package dispatch

import (
	"sync"

	"go.uber.org/atomic"
)

// Dispatcher runs functions on a serial execution context.
type Dispatcher interface {
	Async(fn func())
}

// Func adapts a plain function to the Dispatcher interface, e.g. wrapping
// tview's QueueUpdateDraw.
type Func func(fn func())

// Async implements Dispatcher.
func (f Func) Async(fn func()) { f(fn) }

const queueDepth = 64

// Queue is a serial run loop backed by a single goroutine. Functions run in
// submission order, one at a time.
type Queue struct {
	fns    chan func()
	done   chan struct{}
	closed *atomic.Bool
	wg     sync.WaitGroup
}

// NewQueue starts the run loop.
func NewQueue() *Queue {
	q := &Queue{
		fns:    make(chan func(), queueDepth),
		done:   make(chan struct{}),
		closed: atomic.NewBool(false),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case fn := <-q.fns:
			fn()
		case <-q.done:
			// Drain whatever was accepted before Close.
			for {
				select {
				case fn := <-q.fns:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Async schedules fn on the queue. Calls after Close are dropped.
func (q *Queue) Async(fn func()) {
	if q.closed.Load() {
		return
	}
	select {
	case q.fns <- fn:
	case <-q.done:
	}
}

// Close stops accepting work, drains already-accepted functions and waits for
// the run loop to exit. Safe to call once.
func (q *Queue) Close() {
	if !q.closed.CompareAndSwap(false, true) {
		return
	}
	close(q.done)
	q.wg.Wait()
}
