package scene

import (
	"sync"
	"time"
)

// Scheduler delivers one-shot frame callbacks. Callbacks run on a single
// goroutine, one at a time.
type Scheduler interface {
	Request(fn func(now time.Time)) (cancel func())
}

type request struct {
	id uint64
	fn func(time.Time)
}

type queue struct {
	mu      sync.Mutex
	pending []request
	next    uint64
}

func (q *queue) add(fn func(time.Time)) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	id := q.next
	q.pending = append(q.pending, request{id: id, fn: fn})
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		for i, r := range q.pending {
			if r.id == id {
				q.pending = append(q.pending[:i], q.pending[i+1:]...)
				return
			}
		}
	}
}

func (q *queue) take() []request {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// TickerScheduler fires pending callbacks from a ticker at a fixed rate.
type TickerScheduler struct {
	q        queue
	interval time.Duration
	once     sync.Once
	stop     chan struct{}
	stopped  sync.Once
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{interval: time.Second / time.Duration(fps), stop: make(chan struct{})}
}

func (s *TickerScheduler) Request(fn func(time.Time)) func() {
	cancel := s.q.add(fn)
	s.once.Do(func() { go s.run() })
	return cancel
}

func (s *TickerScheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			for _, r := range s.q.take() {
				r.fn(now)
			}
		}
	}
}

// Stop ends the ticker goroutine. Pending callbacks are dropped.
func (s *TickerScheduler) Stop() {
	s.stopped.Do(func() { close(s.stop) })
}

// ManualScheduler fires only when told to, advancing a synthetic clock by
// a fixed step each time.
type ManualScheduler struct {
	q    queue
	now  time.Time
	step time.Duration
}

func NewManualScheduler(start time.Time, step time.Duration) *ManualScheduler {
	return &ManualScheduler{now: start, step: step}
}

func (s *ManualScheduler) Request(fn func(time.Time)) func() {
	return s.q.add(fn)
}

// Fire advances the clock and runs the callbacks pending at the time of the
// call. It returns how many ran.
func (s *ManualScheduler) Fire() int {
	s.now = s.now.Add(s.step)
	reqs := s.q.take()
	for _, r := range reqs {
		r.fn(s.now)
	}
	return len(reqs)
}

func (s *ManualScheduler) Pending() int   { return s.q.len() }
func (s *ManualScheduler) Now() time.Time { return s.now }
