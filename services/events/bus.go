// Package events carries state-machine output to whatever renders it. The
// coordination services publish here; UI layers subscribe and project.
package events

import (
	"sync"
	"time"
)

type Kind string

const (
	// KindToast is a transient user-facing notice (level: success|error).
	KindToast Kind = "toast"
	// KindRedirect instructs the UI to navigate (target: login|app).
	KindRedirect Kind = "redirect"
	// KindWatcher reports force-logout watcher transitions.
	KindWatcher Kind = "watcher"
	// KindScanStatus reports scanner-side pairing progress.
	KindScanStatus Kind = "scan"
	// KindPairing reports initiator-side pairing progress.
	KindPairing Kind = "pairing"
	// KindSession reports session-mode changes (promotion, link, logout).
	KindSession Kind = "session"
)

type Event struct {
	Kind    Kind           `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
	At      int64          `json:"at"`
}

// Bus is a process-local fan-out. Slow subscribers drop events rather than
// block the publishing state machine.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

func (b *Bus) Publish(kind Kind, payload map[string]any) {
	ev := Event{Kind: kind, Payload: payload, At: time.Now().UnixMilli()}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener. The returned func detaches it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 64)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
}
