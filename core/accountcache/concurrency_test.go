// Copyright 2024 The accountcache Authors
// This file is part of the accountcache library.
//
// The accountcache library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The accountcache library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the accountcache library. If not, see <http://www.gnu.org/licenses/>.

package accountcache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/accountcache/accountcache/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	enterTimeout = 2 * time.Second
	idleWindow   = 100 * time.Millisecond
)

// sectionRecorder reports every critical section entry and parks the sections
// of the held operations until released.
type sectionRecorder struct {
	entered chan Op
	hold    map[Op]bool
	release chan struct{}
}

func newSectionRecorder(hold ...Op) *sectionRecorder {
	r := &sectionRecorder{
		entered: make(chan Op, 64),
		hold:    make(map[Op]bool),
		release: make(chan struct{}),
	}
	for _, op := range hold {
		r.hold[op] = true
	}
	return r
}

func (r *sectionRecorder) hook(op Op) {
	r.entered <- op
	if r.hold[op] {
		<-r.release
	}
}

// expect waits for the next section entry and checks its operation.
func (r *sectionRecorder) expect(t *testing.T, want Op) {
	t.Helper()
	select {
	case op := <-r.entered:
		require.Equal(t, want, op)
	case <-time.After(enterTimeout):
		t.Fatalf("timed out waiting for %s to enter", want)
	}
}

// expectIdle checks that no section is entered for a while.
func (r *sectionRecorder) expectIdle(t *testing.T) {
	t.Helper()
	select {
	case op := <-r.entered:
		t.Fatalf("unexpected %s entered while the lock was held", op)
	case <-time.After(idleWindow):
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(enterTimeout):
		t.Fatal("operation did not complete")
	}
}

func newRecordedCache(t *testing.T, r *sectionRecorder) *AccountCache {
	t.Helper()
	c, err := New(Config{Capacity: 4, SectionHook: r.hook})
	require.NoError(t, err)
	return c
}

func TestReaderBlocksWriter(t *testing.T) {
	r := newSectionRecorder(OpGetAccount)
	c := newRecordedCache(t, r)
	c.PutAccount(types.NewAccount(1, 1000))
	r.expect(t, OpPutAccount)

	var (
		seen       types.Account
		readerDone = make(chan struct{})
		writerDone = make(chan struct{})
	)
	go func() {
		defer close(readerDone)
		seen, _ = c.GetAccountByID(1)
	}()
	r.expect(t, OpGetAccount)

	go func() {
		defer close(writerDone)
		c.PutAccount(types.NewAccount(1, 2000))
	}()
	r.expectIdle(t)

	close(r.release)
	waitDone(t, readerDone)
	r.expect(t, OpPutAccount)
	waitDone(t, writerDone)

	assert.Equal(t, int64(1000), seen.Balance, "reader must observe the state before the write")
	acc, ok := c.GetAccountByID(1)
	r.expect(t, OpGetAccount)
	require.True(t, ok)
	assert.Equal(t, int64(2000), acc.Balance)
}

func TestWriterBlocksReader(t *testing.T) {
	r := newSectionRecorder(OpPutAccount)
	c := newRecordedCache(t, r)

	var (
		seen       types.Account
		found      bool
		readerDone = make(chan struct{})
		writerDone = make(chan struct{})
	)
	go func() {
		defer close(writerDone)
		c.PutAccount(types.NewAccount(7, 700))
	}()
	r.expect(t, OpPutAccount)

	go func() {
		defer close(readerDone)
		seen, found = c.GetAccountByID(7)
	}()
	r.expectIdle(t)

	close(r.release)
	waitDone(t, writerDone)
	r.expect(t, OpGetAccount)
	waitDone(t, readerDone)

	require.True(t, found, "reader must observe the completed write")
	assert.Equal(t, int64(700), seen.Balance)
}

func TestWriterBlocksRanking(t *testing.T) {
	r := newSectionRecorder(OpPutAccount)
	c := newRecordedCache(t, r)

	var (
		top        []types.Account
		rankDone   = make(chan struct{})
		writerDone = make(chan struct{})
	)
	go func() {
		defer close(writerDone)
		c.PutAccount(types.NewAccount(1, 10))
	}()
	r.expect(t, OpPutAccount)

	go func() {
		defer close(rankDone)
		top = c.Top3AccountsByBalance()
	}()
	r.expectIdle(t)

	close(r.release)
	waitDone(t, writerDone)
	r.expect(t, OpTopAccounts)
	waitDone(t, rankDone)
	assert.Equal(t, []types.Account{types.NewAccount(1, 10)}, top)
}

func TestReadersOverlap(t *testing.T) {
	r := newSectionRecorder(OpGetAccount, OpTopAccounts)
	c := newRecordedCache(t, r)
	c.PutAccount(types.NewAccount(1, 1000))
	r.expect(t, OpPutAccount)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); c.GetAccountByID(1) }()
	go func() { defer wg.Done(); c.GetAccountByID(1) }()
	go func() { defer wg.Done(); c.Top3AccountsByBalance() }()

	// All three readers are inside their sections at the same time.
	entered := map[Op]int{}
	for i := 0; i < 3; i++ {
		select {
		case op := <-r.entered:
			entered[op]++
		case <-time.After(enterTimeout):
			t.Fatalf("readers were serialised, only %d entered", i)
		}
	}
	assert.Equal(t, map[Op]int{OpGetAccount: 2, OpTopAccounts: 1}, entered)

	close(r.release)
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	waitDone(t, done)
	assert.Equal(t, uint64(2), c.GetAccountByIDHitCount())
}

func TestWriterExcludesWriter(t *testing.T) {
	r := newSectionRecorder(OpPutAccount)
	c := newRecordedCache(t, r)

	first, second := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(first)
		c.PutAccount(types.NewAccount(1, 1))
	}()
	r.expect(t, OpPutAccount)

	go func() {
		defer close(second)
		c.PutAccount(types.NewAccount(2, 2))
	}()
	r.expectIdle(t)

	close(r.release)
	waitDone(t, first)
	r.expect(t, OpPutAccount)
	waitDone(t, second)
	assert.Equal(t, 2, c.Len())
}

func TestPanicReleasesLock(t *testing.T) {
	var armed atomic.Bool
	armed.Store(true)
	c, err := New(Config{Capacity: 2, SectionHook: func(op Op) {
		if armed.Load() {
			panic("section failure: " + string(op))
		}
	}})
	require.NoError(t, err)

	assert.Panics(t, func() { c.PutAccount(types.NewAccount(1, 1)) })
	assert.Panics(t, func() { c.GetAccountByID(1) })
	assert.Panics(t, func() { c.Top3AccountsByBalance() })
	armed.Store(false)

	// Both the exclusive and the shared lock must have been released.
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.PutAccount(types.NewAccount(2, 2))
		c.GetAccountByID(2)
	}()
	waitDone(t, done)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(1), c.GetAccountByIDHitCount())
}

func TestConcurrentAccess(t *testing.T) {
	const (
		capacity = 16
		workers  = 8
		rounds   = 500
	)
	c := newTestCache(t, capacity)

	var (
		wg   sync.WaitGroup
		hits atomic.Uint64
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				id := uint64((w*rounds + i) % (capacity * 2))
				switch i % 4 {
				case 0:
					c.PutAccount(types.NewAccount(id, int64(i)))
				case 1, 2:
					if _, ok := c.GetAccountByID(id); ok {
						hits.Add(1)
					}
				case 3:
					top := c.Top3AccountsByBalance()
					if len(top) > 3 {
						t.Errorf("ranking returned %d accounts", len(top))
					}
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), capacity)
	assert.Equal(t, hits.Load(), c.GetAccountByIDHitCount())
}
