package utils_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/pagealloc/internal/utils"
)

func TestOptionalMutexDisabled(t *testing.T) {
	var m utils.OptionalMutex

	// Without UseMutex, locking twice must not block
	m.Lock()
	m.Lock()
	m.Unlock()
	m.Unlock()
}

func TestOptionalMutexEnabled(t *testing.T) {
	m := utils.OptionalMutex{UseMutex: true}

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 8000, counter)
}
