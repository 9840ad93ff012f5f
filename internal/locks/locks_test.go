package locks

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	key := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(key)
			counter++
			km.Unlock(key)
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("expected 50 increments, got %d", counter)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	a := uuid.New()
	b := uuid.New()

	km.Lock(a)
	done := make(chan struct{})
	go func() {
		km.Lock(b)
		km.Unlock(b)
		close(done)
	}()

	// A held lock on one tournament must not block another tournament.
	<-done
	km.Unlock(a)
}
