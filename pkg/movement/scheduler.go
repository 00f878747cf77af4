package movement

import "sync"

// Scheduler runs callbacks on the next animation frame.
//
// Schedule queues fn to run once on the next frame and returns a function
// that removes it again if it has not run yet. Calling cancel after the frame
// ran is a no-op.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

type frame struct {
	fn        func()
	cancelled bool
}

// frameQueue is the pending-frame list shared by both schedulers.
type frameQueue struct {
	mu     sync.Mutex
	frames []*frame
}

func (q *frameQueue) Schedule(fn func()) (cancel func()) {
	f := &frame{fn: fn}
	q.mu.Lock()
	q.frames = append(q.frames, f)
	q.mu.Unlock()
	return func() {
		q.mu.Lock()
		f.cancelled = true
		q.mu.Unlock()
	}
}

// take removes and returns every frame queued so far. Frames scheduled while
// the returned ones run land on the next frame.
func (q *frameQueue) take() []*frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.frames
	q.frames = nil
	return out
}

func (q *frameQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, f := range q.frames {
		if !f.cancelled {
			n++
		}
	}
	return n
}

func (q *frameQueue) run(frames []*frame) int {
	ran := 0
	for _, f := range frames {
		q.mu.Lock()
		skip := f.cancelled
		q.mu.Unlock()
		if skip {
			continue
		}
		f.fn()
		ran++
	}
	return ran
}

// ManualScheduler advances frames only when told to. It drives the engine in
// tests and in one-shot CLI commands.
type ManualScheduler struct {
	q frameQueue
}

// NewManualScheduler creates a scheduler with no pending frames.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

// Schedule implements [Scheduler].
func (s *ManualScheduler) Schedule(fn func()) (cancel func()) { return s.q.Schedule(fn) }

// Step runs one frame: every callback pending when Step is called. It
// returns how many callbacks ran.
func (s *ManualScheduler) Step() int { return s.q.run(s.q.take()) }

// Flush steps until no callbacks are pending or limit frames have run, and
// returns the number of frames stepped.
func (s *ManualScheduler) Flush(limit int) int {
	frames := 0
	for frames < limit && s.q.pending() > 0 {
		s.Step()
		frames++
	}
	return frames
}

// Pending returns the number of callbacks waiting for the next frame.
func (s *ManualScheduler) Pending() int { return s.q.pending() }
