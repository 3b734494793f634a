// Package stream serves the engine to network listeners: WebRTC/Opus for
// browsers, a chunked WAV stream for plain HTTP clients and a small JSON
// control API.
package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// listenerBuffer is ~3 seconds of 20ms frames
const listenerBuffer = 150

// Broadcaster fans out PCM frames from one source to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}

	frames atomic.Uint64
}

// Listener receives PCM frames from the broadcaster.
type Listener struct {
	ID      uuid.UUID
	C       chan []int16 // buffered channel of 20ms interleaved PCM frames
	done    chan struct{}
	dropped atomic.Uint64
}

// Done is closed when the listener is unsubscribed
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Dropped returns how many frames were skipped because the listener lagged
func (l *Listener) Dropped() uint64 {
	return l.dropped.Load()
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener. Returns a Listener that receives frames.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		ID:   uuid.New(),
		C:    make(chan []int16, listenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop. Unsubscribing
// twice does nothing.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	_, ok := b.listeners[l]
	delete(b.listeners, l)
	b.mu.Unlock()
	if ok {
		close(l.done)
	}
}

// Close unsubscribes every listener
func (b *Broadcaster) Close() {
	b.mu.Lock()
	listeners := b.listeners
	b.listeners = make(map[*Listener]struct{})
	b.mu.Unlock()

	for l := range listeners {
		close(l.done)
	}
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Frames returns how many frames have been broadcast
func (b *Broadcaster) Frames() uint64 {
	return b.frames.Load()
}

// Run reads frames from source and fans out to all listeners.
// Slow listeners get frames dropped rather than blocking the broadcast.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.mu.RLock()
			for l := range b.listeners {
				select {
				case l.C <- frame:
				default:
					l.dropped.Add(1)
				}
			}
			b.mu.RUnlock()
			b.frames.Add(1)
		}
	}
}
