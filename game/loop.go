package game

import (
	"context"
	"log"
	"time"
)

// Loop is the single cooperative thread of a client. Transport callbacks and
// input arrive from other goroutines through Post; the loop runs them and the
// fixed-rate tick one at a time, so nothing it calls needs locking.
type Loop struct {
	step   time.Duration
	events chan func()
}

func NewLoop(step time.Duration, queueSize int) *Loop {
	return &Loop{
		step:   step,
		events: make(chan func(), queueSize),
	}
}

func (l *Loop) Step() time.Duration {
	return l.step
}

// Post queues fn to run on the loop. It blocks while the queue is full and
// gives up when ctx ends.
func (l *Loop) Post(ctx context.Context, fn func()) bool {
	select {
	case l.events <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run executes queued events and calls tick every step until ctx ends.
func (l *Loop) Run(ctx context.Context, tick func(dt time.Duration)) {
	ticker := time.NewTicker(l.step)
	defer ticker.Stop()

	log.Printf("[loop] started at %d ticks/second", int(time.Second/l.step))

	for {
		select {
		case <-ctx.Done():
			log.Println("[loop] stopped")
			return
		case fn := <-l.events:
			fn()
		case <-ticker.C:
			l.drain()
			tick(l.step)
		}
	}
}

// drain runs everything already queued so a tick sees the latest state.
func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.events:
			fn()
		default:
			return
		}
	}
}
