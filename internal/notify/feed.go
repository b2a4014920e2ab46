// Package notify keeps recent batch notifications for clients that poll.
package notify

import (
	"sync"

	"github.com/AlexZinkM/bundlr-wallet/internal/batch"
	"github.com/AlexZinkM/bundlr-wallet/internal/log"
)

const DefaultCapacity = 200

// Feed is a bounded, in-memory log of batch events. When full, the oldest
// event is evicted.
type Feed struct {
	mu     sync.RWMutex
	events []batch.Event
	start  int
	size   int
	seq    uint64
}

// NewFeed creates a feed holding up to capacity events.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{events: make([]batch.Event, capacity)}
}

// Notify implements batch.Notifier.
func (f *Feed) Notify(ev batch.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := (f.start + f.size) % len(f.events)
	f.events[idx] = ev
	if f.size < len(f.events) {
		f.size++
	} else {
		f.start = (f.start + 1) % len(f.events)
	}
	f.seq++

	switch ev.Type {
	case batch.EventWalletFailed:
		log.Notify.Debug().Str("batch", ev.BatchID).Str("wallet", ev.WalletName).Str("error", ev.Error).Msg("Notification")
	case batch.EventBatchFinished:
		log.Notify.Debug().Str("batch", ev.BatchID).Int("succeeded", ev.Successes).Int("failed", ev.Failures).Msg("Notification")
	}
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []batch.Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := f.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]batch.Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (f.start + f.size - 1 - i) % len(f.events)
		out = append(out, f.events[idx])
	}
	return out
}

// Len returns the number of buffered events.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.size
}

// Total returns how many events were ever received, including evicted ones.
func (f *Feed) Total() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seq
}
