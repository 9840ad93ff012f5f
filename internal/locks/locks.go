package locks

import (
	"sync"

	"github.com/google/uuid"
)

// KeyedMutex serializes mutating operations per tournament. Locks for distinct
// tournaments are independent; entries live for the process lifetime, which is
// acceptable because the set of active tournaments is small.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (k *KeyedMutex) get(key uuid.UUID) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for the given tournament.
func (k *KeyedMutex) Lock(key uuid.UUID) {
	k.get(key).Lock()
}

// Unlock releases the mutex for the given tournament.
func (k *KeyedMutex) Unlock(key uuid.UUID) {
	k.get(key).Unlock()
}
