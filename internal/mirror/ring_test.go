package mirror

import (
	"fmt"
	"sync"
	"testing"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
)

func entry(i int) domain.MirrorEntry {
	return domain.MirrorEntry{Kind: "text", Text: fmt.Sprintf("m%d", i)}
}

func TestRing_SnapshotBeforeFull(t *testing.T) {
	r := NewRing(3)
	r.Append(entry(1))
	r.Append(entry(2))

	got := r.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Text != "m1" || got[1].Text != "m2" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		r.Append(entry(i))
	}

	got := r.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}

	want := []string{"m3", "m4", "m5"}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("entry %d: expected %s, got %s", i, w, got[i].Text)
		}
	}

	if r.Len() != 3 || r.Cap() != 3 {
		t.Fatalf("expected len=cap=3, got len=%d cap=%d", r.Len(), r.Cap())
	}
}

func TestRing_DefaultCapacity(t *testing.T) {
	if got := NewRing(0).Cap(); got != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, got)
	}
}

func TestRing_SnapshotIsACopy(t *testing.T) {
	r := NewRing(2)
	r.Append(entry(1))

	snap := r.Snapshot()
	snap[0].Text = "changed"

	if r.Snapshot()[0].Text != "m1" {
		t.Fatalf("snapshot mutation leaked into ring")
	}
}

func TestRing_ConcurrentAppends(t *testing.T) {
	r := NewRing(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Append(entry(i*100 + j))
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Fatalf("expected ring to be full, got %d", r.Len())
	}
}
