package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	m.IncUserCreated()
	m.IncUserCreated()
	m.IncUserUpdated()
	m.IncUserDeleted()
	m.IncUserCacheHit()
	m.IncUserCacheMiss()

	snap := m.Snapshot()
	if snap.UsersCreated != 2 {
		t.Errorf("expected 2 created, got %d", snap.UsersCreated)
	}
	if snap.UsersUpdated != 1 || snap.UsersDeleted != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.UserCacheHits != 1 || snap.UserCacheMisses != 1 {
		t.Errorf("unexpected cache counters: %+v", snap)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncUserCreated()
		}()
	}
	wg.Wait()

	if snap := m.Snapshot(); snap.UsersCreated != 50 {
		t.Errorf("expected 50 created, got %d", snap.UsersCreated)
	}
}
