package trace

import (
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits periodic events. Heartbeats without span ends mean the
// run is stuck.
type Heartbeat struct {
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// StartHeartbeat starts emitting every interval. It returns nil when
// tracing is off or interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{})}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-ticker.C:
				tracer.Emit(&Event{
					Time:   time.Now(),
					Seq:    NextSeq(),
					Kind:   KindHeartbeat,
					Scope:  ScopeDriver,
					GID:    getGoroutineID(),
					Name:   "heartbeat",
					Detail: "#" + strconv.Itoa(n),
				})
			case <-h.stop:
				return
			}
		}
	}()
	return h
}

// Stop stops the heartbeat and waits for its goroutine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
}
