package utils

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 50
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("prov-1")
			counter++
			km.Unlock("prov-1")
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("prov-1")
	done := make(chan struct{})
	go func() {
		km.Lock("prov-2")
		km.Unlock("prov-2")
		close(done)
	}()
	<-done
	km.Unlock("prov-1")
}

func TestLockAllOrdersAndDeduplicates(t *testing.T) {
	km := NewKeyedMutex()

	keys := []string{"service:svc-1", "provider:prov-1", "service:svc-1", ""}
	km.LockAll(keys)
	km.UnlockAll(keys)

	// Opposite declaration order must not deadlock against the first set.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(flip bool) {
			defer wg.Done()
			set := []string{"provider:prov-1", "service:svc-1"}
			if flip {
				set = []string{"service:svc-1", "provider:prov-1"}
			}
			km.LockAll(set)
			km.UnlockAll(set)
		}(i%2 == 0)
	}
	wg.Wait()
}
