package scene

import (
	"sync"
	"time"
)

// FrameID identifies a pending frame request.
type FrameID uint64

// Scheduler runs one-shot frame callbacks, one frame at a time. A callback
// that wants another frame must request it again.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

// callbacks is the pending request set shared by the schedulers.
type callbacks struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func(time.Time)
}

func (c *callbacks) add(fn func(time.Time)) FrameID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		c.pending = make(map[FrameID]func(time.Time))
	}
	c.next++
	c.pending[c.next] = fn
	return c.next
}

func (c *callbacks) cancel(id FrameID) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// run fires every callback registered before the call. Requests made by
// the callbacks wait for the next run.
func (c *callbacks) run(now time.Time) int {
	c.mu.Lock()
	due := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, fn := range due {
		fn(now)
	}
	return len(due)
}

func (c *callbacks) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// TickerScheduler fires frames from a time.Ticker, for headless runs.
type TickerScheduler struct {
	callbacks
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewTickerScheduler starts a scheduler firing fps frames per second.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	s := &TickerScheduler{
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *TickerScheduler) loop() {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-t.C:
			s.run(now)
		}
	}
}

func (s *TickerScheduler) RequestFrame(fn func(time.Time)) FrameID {
	return s.add(fn)
}

func (s *TickerScheduler) CancelFrame(id FrameID) {
	s.cancel(id)
}

// Stop ends the ticker goroutine and waits for an in-flight frame.
func (s *TickerScheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// ManualScheduler fires frames only when Step is called. It is driven by
// the desktop viewer's update loop and by tests.
type ManualScheduler struct {
	callbacks
}

func (s *ManualScheduler) RequestFrame(fn func(time.Time)) FrameID {
	return s.add(fn)
}

func (s *ManualScheduler) CancelFrame(id FrameID) {
	s.cancel(id)
}

// Step runs the pending callbacks and returns how many fired.
func (s *ManualScheduler) Step(now time.Time) int {
	return s.run(now)
}

// Pending returns the number of outstanding requests.
func (s *ManualScheduler) Pending() int {
	return s.size()
}
