package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/mmynk/travelsplit/internal/storage"
	"github.com/mmynk/travelsplit/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestConcurrentCreate(t *testing.T) {
	store := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		trip := storagetest.SampleTrip(t, "Parallel")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.CreateTrip(ctx, trip); err != nil {
				t.Errorf("CreateTrip failed: %v", err)
			}
		}()
	}
	wg.Wait()

	trips, err := store.ListTrips(ctx)
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(trips) != 20 {
		t.Fatalf("got %d trips, want 20", len(trips))
	}
	for i, trip := range trips {
		if trip.ID != int64(i+1) {
			t.Errorf("trips[%d].ID = %d, want %d", i, trip.ID, i+1)
		}
	}
}
