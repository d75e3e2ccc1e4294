package barrier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadParties(t *testing.T) {
	assert := assert.New(t)

	b, err := New(0)
	assert.Nil(b)
	assert.Error(err)

	b, err = New(-3)
	assert.Nil(b)
	assert.Error(err)
}

// Run many rounds with a handful of workers: every worker must see every
// round exactly once and the controller must see every slot written.
func TestRounds(t *testing.T) {
	assert := assert.New(t)

	const workers = 4
	const rounds = 2000

	b, err := New(workers)
	require.NoError(t, err)
	assert.Equal(workers, b.Parties())

	slots := make([]uint64, workers)
	seenCount := make([]int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			var seen uint64
			for {
				r, ok := b.Wait(seen)
				if !ok {
					return
				}
				seen = r
				slots[slot] = r
				seenCount[slot]++
				b.Arrive()
			}
		}(w)
	}

	for i := 1; i <= rounds; i++ {
		r, err := b.Advance()
		require.NoError(t, err)
		assert.Equal(uint64(i), r)
		b.AwaitAll()
		assert.Equal(workers, b.Arrived())
		for w := 0; w < workers; w++ {
			assert.Equal(r, slots[w], "slot %d is stale in round %d", w, r)
		}
	}

	b.Close()
	wg.Wait()

	for w := 0; w < workers; w++ {
		assert.Equal(rounds, seenCount[w])
	}
	assert.True(b.Closed())
	assert.Equal(Terminal, b.Round())
}

func TestCloseWakesIdleWorkers(t *testing.T) {
	assert := assert.New(t)

	b, err := New(3)
	require.NoError(t, err)

	exited := make(chan bool, 3)
	for w := 0; w < 3; w++ {
		go func() {
			_, ok := b.Wait(0)
			exited <- ok
		}()
	}

	// Give the workers a chance to block before we close
	time.Sleep(10 * time.Millisecond)
	b.Close()
	b.Close() // twice is fine

	for w := 0; w < 3; w++ {
		select {
		case ok := <-exited:
			assert.False(ok)
		case <-time.After(2 * time.Second):
			t.Fatal("worker never woke up after Close")
		}
	}

	_, err = b.Advance()
	assert.Error(err)

	// A worker arriving late to the party still sees the close
	r, ok := b.Wait(5)
	assert.False(ok)
	assert.Equal(Terminal, r)
}

func TestAwaitAllBlocks(t *testing.T) {
	assert := assert.New(t)

	b, err := New(2)
	require.NoError(t, err)

	_, err = b.Advance()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		b.AwaitAll()
		close(done)
	}()

	b.Arrive()
	select {
	case <-done:
		t.Fatal("AwaitAll returned with only one of two arrivals")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(1, b.Arrived())

	b.Arrive()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AwaitAll never returned")
	}
}

func BenchmarkRound(b *testing.B) {
	const workers = 4
	bar, err := New(workers)
	if err != nil {
		b.Fatalf("Could not create barrier %v", err)
	}

	for w := 0; w < workers; w++ {
		go func() {
			var seen uint64
			for {
				r, ok := bar.Wait(seen)
				if !ok {
					return
				}
				seen = r
				bar.Arrive()
			}
		}()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bar.Advance(); err != nil {
			b.Fatalf("Advance failed %v", err)
		}
		bar.AwaitAll()
	}
	b.StopTimer()
	bar.Close()
}
