package mirror

import (
	"sync"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
)

const DefaultCapacity = 100

// Ring keeps the most recent inbound items for debugging. Once full, each
// append evicts the oldest entry.
type Ring struct {
	mu      sync.RWMutex
	entries []domain.MirrorEntry
	next    int
	full    bool
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{entries: make([]domain.MirrorEntry, capacity)}
}

func (r *Ring) Append(entry domain.MirrorEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Snapshot returns a copy of the buffered entries, oldest first.
func (r *Ring) Snapshot() []domain.MirrorEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		out := make([]domain.MirrorEntry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}

	out := make([]domain.MirrorEntry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	return append(out, r.entries[:r.next]...)
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.full {
		return len(r.entries)
	}
	return r.next
}

func (r *Ring) Cap() int {
	return len(r.entries)
}
