package utils

import (
	"sync"
)

// OptionalMutex is a sync.Mutex that only locks when UseMutex is set. Allocators embed one so that
// the CreateSynchronized flag can be honored without paying for a lock otherwise.
type OptionalMutex struct {
	Mutex    sync.Mutex
	UseMutex bool
}

func (m *OptionalMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}
