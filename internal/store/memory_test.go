package store

import (
	"sync"
	"testing"
	"time"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}
	if len(store.GetAll()) != 0 {
		t.Errorf("GetAll() = %v items, want 0", len(store.GetAll()))
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()

	ok := store.Update(Snapshot{
		Name:       "pricing",
		Generation: 1,
		Phase:      "resolved",
		ItemCount:  4,
		UpdatedAt:  time.Now(),
	})
	if !ok {
		t.Fatal("Update() = false, want true")
	}

	got, found := store.Get("pricing")
	if !found {
		t.Fatal("Get() found = false")
	}
	if got.Phase != "resolved" || got.ItemCount != 4 {
		t.Errorf("Get() = %+v", got)
	}

	if _, found := store.Get("missing"); found {
		t.Error("Get(missing) found = true")
	}
}

func TestMemoryStore_UpdateOverwrites(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{Name: "pricing", Generation: 1, Phase: "loading"})
	store.Update(Snapshot{Name: "pricing", Generation: 1, Phase: "resolved"})

	all := store.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() = %v items, want 1", len(all))
	}
	if all[0].Phase != "resolved" {
		t.Errorf("Phase = %v, want resolved", all[0].Phase)
	}
}

func TestMemoryStore_StaleGenerationDiscarded(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{Name: "pricing", Generation: 2, Phase: "loading"})
	if store.Update(Snapshot{Name: "pricing", Generation: 1, Phase: "resolved"}) {
		t.Error("Update() with older generation = true, want false")
	}

	got, _ := store.Get("pricing")
	if got.Generation != 2 || got.Phase != "loading" {
		t.Errorf("Get() = %+v, want generation 2 loading", got)
	}
}

func TestMemoryStore_GetAllOrderedByName(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{Name: "c"})
	store.Update(Snapshot{Name: "a"})
	store.Update(Snapshot{Name: "b"})

	all := store.GetAll()
	for i, want := range []string{"a", "b", "c"} {
		if all[i].Name != want {
			t.Errorf("GetAll()[%d].Name = %v, want %v", i, all[i].Name, want)
		}
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	go func() {
		store.Update(Snapshot{Name: "support", Phase: "loading"})
	}()

	select {
	case snap := <-ch:
		if snap.Name != "support" {
			t.Errorf("received Name = %v, want %v", snap.Name, "support")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_StaleUpdateNotPublished(t *testing.T) {
	store := NewMemoryStore()
	store.Update(Snapshot{Name: "support", Generation: 5})

	ch := store.Subscribe()
	defer store.Unsubscribe(ch)

	store.Update(Snapshot{Name: "support", Generation: 4})

	select {
	case snap := <-ch:
		t.Errorf("received stale snapshot %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	go func() {
		store.Update(Snapshot{Name: "support"})
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)
	store.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()

	// never read
	_ = store.Subscribe()
	ch2 := store.Subscribe()

	done := make(chan bool)
	go func() {
		for i := 0; i < 2*subscriberBuffer; i++ {
			store.Update(Snapshot{Name: "support", Generation: uint64(i)})
		}
		done <- true
	}()

	go func() {
		for range ch2 {
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.Update(Snapshot{Name: "w", Generation: uint64(j)})
			}
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_ = store.GetAll()
				_, _ = store.Get("w")
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()
}
