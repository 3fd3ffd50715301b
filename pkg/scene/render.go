package scene

import (
	"sync"
	"time"
)

// Frame is what a Renderer draws: the live graph at one point in time,
// viewed through Camera.
type Frame struct {
	Seq    uint64
	Time   time.Time
	Camera Camera
	Graph  *LiveGraph
}

// Renderer draws frames onto a surface. Close detaches the surface; no
// Render call follows it.
type Renderer interface {
	Render(f Frame)
	Close()
}

// Headless is a Renderer without a surface. It records the last frame so
// health checks can see that the loop is alive.
type Headless struct {
	mu     sync.Mutex
	last   uint64
	at     time.Time
	closed bool
}

func (h *Headless) Render(f Frame) {
	h.mu.Lock()
	h.last = f.Seq
	h.at = f.Time
	h.mu.Unlock()
}

func (h *Headless) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

// Last returns the sequence number and time of the last rendered frame.
func (h *Headless) Last() (uint64, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.at
}

// Closed reports whether the renderer has been detached.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
