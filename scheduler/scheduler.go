// Package scheduler runs frame callbacks at a fixed rate with measured frame
// times, plus one-shot and repeating timers with cancel handles. It stands in
// for a display's animation frame callback when all you have is a wall clock.
package scheduler

import (
	"sync"
	"time"
)

// DefaultFPS is the frame rate used when New is handed a nonpositive one.
const DefaultFPS = 60

// Scheduler owns one frame loop. Callbacks registered with OnFrame run in
// registration order once per tick and receive the measured time since the
// previous tick, so a stalled frame reports its true duration and exact
// integrators land where they should.
type Scheduler struct {
	interval time.Duration

	mu        sync.Mutex
	callbacks []frameFunc
	nextID    int
	done      chan struct{}
	stopped   chan struct{}
}

type frameFunc struct {
	id int
	fn func(float64)
}

// New returns a stopped Scheduler ticking fps times per second once started.
// A nonpositive fps falls back to DefaultFPS.
func New(fps int) *Scheduler {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Scheduler{interval: time.Second / time.Duration(fps)}
}

// Start launches the frame loop. Starting a running Scheduler does nothing;
// a stopped one starts fresh, so Start and Stop may alternate freely.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	s.done = done
	s.stopped = stopped
	s.mu.Unlock()

	go s.run(done, stopped)
}

// Stop halts the frame loop and waits for the tick in flight, if any, to
// finish. Stopping a stopped Scheduler does nothing. Do not call Stop from
// inside a frame callback; the loop cannot wait for itself.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	done, stopped := s.done, s.stopped
	s.done, s.stopped = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped
}

func (s *Scheduler) run(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			for _, fn := range s.frameCallbacks() {
				fn(dt)
			}
		}
	}
}

func (s *Scheduler) frameCallbacks() []func(float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns := make([]func(float64), len(s.callbacks))
	for i, cb := range s.callbacks {
		fns[i] = cb.fn
	}
	return fns
}

// OnFrame registers fn to run every tick with the measured frame time in
// seconds. The returned disconnect removes the registration; calling it more
// than once is harmless. A nil fn registers nothing.
func (s *Scheduler) OnFrame(fn func(deltaTime float64)) (disconnect func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.callbacks = append(s.callbacks, frameFunc{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.callbacks {
			if s.callbacks[i].id == id {
				s.callbacks = append(s.callbacks[:i], s.callbacks[i+1:]...)
				return
			}
		}
	}
}

// After runs fn once after d on its own goroutine. The returned cancel stops
// it if it has not fired yet.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Every runs fn on its own goroutine each time d elapses until the returned
// stop is called. A nonpositive d registers nothing.
func (s *Scheduler) Every(d time.Duration, fn func()) (stop func()) {
	if fn == nil || d <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
