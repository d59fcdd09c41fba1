package stripe_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/masky/pkg/stripe"
)

func TestCircuitBreaker_StateTransitions(t *testing.T) {
	t.Parallel()

	t.Run("closed to open", func(t *testing.T) {
		t.Parallel()

		cb := stripe.NewCircuitBreaker(2, 1, 100*time.Millisecond)
		assert.Equal(t, stripe.CircuitClosed, cb.State())
		assert.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, stripe.CircuitClosed, cb.State())

		cb.RecordFailure()
		assert.Equal(t, stripe.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("success resets failure count", func(t *testing.T) {
		t.Parallel()

		cb := stripe.NewCircuitBreaker(2, 1, time.Hour)
		cb.RecordFailure()
		cb.RecordSuccess()
		cb.RecordFailure()
		assert.Equal(t, stripe.CircuitClosed, cb.State())
	})

	t.Run("open to half-open to closed", func(t *testing.T) {
		t.Parallel()

		cb := stripe.NewCircuitBreaker(1, 2, 30*time.Millisecond)
		cb.RecordFailure()
		assert.False(t, cb.Allow())

		time.Sleep(40 * time.Millisecond)
		assert.True(t, cb.Allow())
		assert.Equal(t, stripe.CircuitHalfOpen, cb.State())

		cb.RecordSuccess()
		assert.Equal(t, stripe.CircuitHalfOpen, cb.State())
		cb.RecordSuccess()
		assert.Equal(t, stripe.CircuitClosed, cb.State())
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		t.Parallel()

		cb := stripe.NewCircuitBreaker(1, 1, 30*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(40 * time.Millisecond)
		assert.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, stripe.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})
}

func TestCircuitBreaker_HalfOpenSingleProbe(t *testing.T) {
	t.Parallel()

	t.Run("one caller per probe", func(t *testing.T) {
		t.Parallel()

		cb := stripe.NewCircuitBreaker(1, 2, 30*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(40 * time.Millisecond)

		admitted := 0
		for range 10 {
			if cb.Allow() {
				admitted++
			}
		}
		assert.Equal(t, 1, admitted)
		assert.Equal(t, stripe.CircuitHalfOpen, cb.State())

		cb.RecordSuccess()
		assert.True(t, cb.Allow(), "next probe after a success")
		assert.False(t, cb.Allow())

		cb.RecordSuccess()
		assert.Equal(t, stripe.CircuitClosed, cb.State())
		assert.True(t, cb.Allow())
		assert.True(t, cb.Allow())
	})

	t.Run("concurrent callers", func(t *testing.T) {
		t.Parallel()

		cb := stripe.NewCircuitBreaker(1, 1, 30*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(40 * time.Millisecond)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			admitted int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if cb.Allow() {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, admitted)
	})

	t.Run("abandoned probe frees its slot", func(t *testing.T) {
		t.Parallel()

		cb := stripe.NewCircuitBreaker(1, 1, 30*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(40 * time.Millisecond)
		assert.True(t, cb.Allow())
		assert.False(t, cb.Allow())

		time.Sleep(40 * time.Millisecond)
		assert.True(t, cb.Allow())
	})
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cb := stripe.NewCircuitBreaker(10, 2, 50*time.Millisecond)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 100 {
				switch (id + j) % 4 {
				case 0:
					cb.Allow()
				case 1:
					cb.RecordSuccess()
				case 2:
					cb.RecordFailure()
				default:
					_ = cb.State()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Contains(t, []stripe.CircuitState{stripe.CircuitClosed, stripe.CircuitOpen, stripe.CircuitHalfOpen}, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "closed", stripe.CircuitClosed.String())
	assert.Equal(t, "open", stripe.CircuitOpen.String())
	assert.Equal(t, "half-open", stripe.CircuitHalfOpen.String())
	assert.Equal(t, "unknown", stripe.CircuitState(42).String())
}
