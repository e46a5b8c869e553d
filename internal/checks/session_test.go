package checks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spoolguard/spoolguard/internal/spool"
)

type countingInventory struct {
	mu     sync.Mutex
	spools map[int]*spool.Spool
	errs   map[int]error
	delay  time.Duration
	calls  atomic.Int64
}

func (f *countingInventory) Spool(_ context.Context, id int) (*spool.Spool, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	sp, ok := f.spools[id]
	if !ok {
		return nil, fmt.Errorf("spool %d: no such record", id)
	}
	return sp, nil
}

func TestSessionFetchCachesRecords(t *testing.T) {
	inv := &countingInventory{spools: map[int]*spool.Spool{
		7: testSpool(7, fptr(500), "PLA", "Orange PLA"),
	}}
	sess := newSession("tok")

	first, err := sess.fetchSpool(context.Background(), inv, 7)
	require.NoError(t, err)
	second, err := sess.fetchSpool(context.Background(), inv, 7)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), inv.calls.Load())
	assert.Equal(t, 1, sess.cacheLen())
}

func TestSessionFetchDoesNotCacheErrors(t *testing.T) {
	inv := &countingInventory{errs: map[int]error{7: fmt.Errorf("connection refused")}}
	sess := newSession("tok")

	_, err := sess.fetchSpool(context.Background(), inv, 7)
	require.Error(t, err)
	assert.Equal(t, 0, sess.cacheLen())

	// The record appears; a later tool's retry must see it.
	inv.mu.Lock()
	inv.errs = nil
	inv.spools = map[int]*spool.Spool{7: testSpool(7, fptr(500), "PLA", "Orange PLA")}
	inv.mu.Unlock()

	_, err = sess.fetchSpool(context.Background(), inv, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.cacheLen())
}

func TestSessionConcurrentFetchesCollapse(t *testing.T) {
	inv := &countingInventory{
		spools: map[int]*spool.Spool{7: testSpool(7, fptr(500), "PLA", "Orange PLA")},
		delay:  50 * time.Millisecond,
	}
	sess := newSession("tok")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sess.fetchSpool(context.Background(), inv, 7)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Cached or collapsed by singleflight; never 16 round trips.
	assert.Less(t, inv.calls.Load(), int64(4))
	assert.Equal(t, 1, sess.cacheLen())
}

func TestSessionClear(t *testing.T) {
	inv := &countingInventory{spools: map[int]*spool.Spool{
		7: testSpool(7, fptr(500), "PLA", "Orange PLA"),
	}}
	sess := newSession("tok")

	_, err := sess.fetchSpool(context.Background(), inv, 7)
	require.NoError(t, err)
	sess.appendError("Weight Check FAILED: short")
	require.Equal(t, 1, sess.cacheLen())
	require.Len(t, sess.errors(), 1)

	sess.clear()

	assert.Equal(t, 0, sess.cacheLen())
	assert.Empty(t, sess.errors())
}

func TestSessionClearedEvenWhenEvaluationPanics(t *testing.T) {
	inv := &countingInventory{spools: map[int]*spool.Spool{
		7: testSpool(7, fptr(500), "PLA", "Orange PLA"),
	}}
	sess := newSession("tok")

	func() {
		defer func() { require.NotNil(t, recover()) }()
		defer sess.clear()
		_, err := sess.fetchSpool(context.Background(), inv, 7)
		require.NoError(t, err)
		panic("evaluator blew up")
	}()

	assert.Equal(t, 0, sess.cacheLen(), "scoped cleanup must run on the panic path")
	assert.Empty(t, sess.errors())
}
