package movement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultFrameInterval is roughly one frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrLoopClosed is returned by [Loop.Do] after [Loop.Close].
var ErrLoopClosed = errors.New("frame loop closed")

// Loop owns one canvas. A single goroutine runs both the work submitted
// through [Loop.Do] and the callbacks scheduled for animation frames, so
// everything touching the canvas is serialised without locks.
//
// Loop implements [Scheduler]; frames fire every interval.
type Loop struct {
	interval time.Duration
	cmds     chan func()
	frames   frameQueue
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// NewLoop starts a loop ticking every interval. A non-positive interval
// selects [DefaultFrameInterval].
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	l := &Loop{
		interval: interval,
		cmds:     make(chan func(), 64),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go l.run()
	return l
}

// Schedule implements [Scheduler].
func (l *Loop) Schedule(fn func()) (cancel func()) { return l.frames.Schedule(fn) }

// Do runs fn on the loop goroutine and waits for it to return. A panic in
// fn is recovered and returned as an error.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	work := func() {
		defer func() {
			if r := recover(); r != nil {
				reply <- fmt.Errorf("loop: panic: %v", r)
			}
		}()
		reply <- fn()
	}
	select {
	case l.cmds <- work:
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-l.stopped:
		// The loop may have exited before picking the work up.
		select {
		case err := <-reply:
			return err
		default:
			return ErrLoopClosed
		}
	}
}

// Close stops the loop and waits for the goroutine to exit. Pending frames
// are dropped.
func (l *Loop) Close() error {
	l.once.Do(func() { close(l.done) })
	<-l.stopped
	return nil
}

func (l *Loop) run() {
	defer close(l.stopped)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case work := <-l.cmds:
			work()
		case <-ticker.C:
			l.frames.run(l.frames.take())
		}
	}
}
