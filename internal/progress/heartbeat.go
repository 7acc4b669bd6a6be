package progress

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultHeartbeatInterval is the spinner period.
const DefaultHeartbeatInterval = 200 * time.Millisecond

var spinnerFrames = [...]string{"|", "/", "-", `\`}

const heartbeatPrefix = "Downloading/loading model: "

// HeartbeatMessage renders the status line for spinner frame n.
func HeartbeatMessage(model string, n int) string {
	return fmt.Sprintf("%s%s... %s", heartbeatPrefix, model, spinnerFrames[n%len(spinnerFrames)])
}

// Heartbeat emits a spinner status line on a ticker while a blocking call is
// in flight.
type Heartbeat struct {
	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// StartHeartbeat begins emitting HeartbeatMessage for model every interval.
// A non-positive interval uses DefaultHeartbeatInterval.
func StartHeartbeat(interval time.Duration, model string, emit func(string)) *Heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	h := &Heartbeat{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	h.running.Store(true)

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				if !h.running.Load() {
					return
				}
				emit(HeartbeatMessage(model, frame))
				frame++
			}
		}
	}()
	return h
}

// Running reports whether the heartbeat has not been stopped.
func (h *Heartbeat) Running() bool {
	return h.running.Load()
}

// Stop halts the heartbeat and waits for its goroutine to exit. Nothing is
// emitted after Stop returns. Calling Stop more than once is safe.
func (h *Heartbeat) Stop() {
	h.once.Do(func() {
		h.running.Store(false)
		close(h.stop)
	})
	<-h.done
}

// IsHeartbeat reports whether message was produced by HeartbeatMessage.
func IsHeartbeat(message string) bool {
	return strings.HasPrefix(message, heartbeatPrefix)
}
