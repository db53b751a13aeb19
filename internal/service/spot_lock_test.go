package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpotLockerMutualExclusion(t *testing.T) {
	l := newSpotLocker()

	const goroutines = 16
	const iterations = 200
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				l.Lock(7)
				counter++
				l.Unlock(7)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, goroutines*iterations, counter)
}

func TestSpotLockerIndependentSpots(t *testing.T) {
	l := newSpotLocker()

	l.Lock(1)
	done := make(chan struct{})
	go func() {
		// A different spot must not block.
		l.Lock(2)
		l.Unlock(2)
		close(done)
	}()
	<-done
	l.Unlock(1)
}

func TestSpotLockerReleasesEntries(t *testing.T) {
	l := newSpotLocker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(spot int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Lock(spot)
				l.Unlock(spot)
			}
		}(i % 3)
	}
	wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	require.Empty(t, l.locks)
}
