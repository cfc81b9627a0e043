package listings

import (
	"sync"
	"testing"
	"time"

	"github.com/wavemarine/deckworth/internal/models"
)

func TestSearchCache_HitAndExpiry(t *testing.T) {
	cache := newSearchCache(50 * time.Millisecond)
	comps := []models.Comparable{{Ask: 100000}}

	cache.set("key", comps)

	got, ok := cache.get("key")
	if !ok || len(got) != 1 {
		t.Fatalf("expected cache hit, got ok=%v len=%d", ok, len(got))
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := cache.get("key"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestSearchCache_Miss(t *testing.T) {
	cache := newSearchCache(time.Minute)
	if _, ok := cache.get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestSearchCache_ConcurrentAccess(t *testing.T) {
	cache := newSearchCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cache.set("key", []models.Comparable{{Ask: 100000}})
		}()
		go func() {
			defer wg.Done()
			cache.get("key")
		}()
	}
	wg.Wait()

	got, ok := cache.get("key")
	if !ok || got[0].Ask != 100000 {
		t.Error("expected consistent snapshot after concurrent access")
	}
}
