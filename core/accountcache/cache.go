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

// Package accountcache implements a bounded, concurrency-safe cache of account
// records with least-recently-used eviction.
//
// Point lookups, rankings and statistics share the cache; upserts take it
// exclusively. Every lock is released through defer, so a panic inside a
// critical section never leaves the cache locked.
package accountcache

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/accountcache/accountcache/common/lru"
	"github.com/accountcache/accountcache/core/types"
	"github.com/accountcache/accountcache/log"
)

// topAccounts is the size of the headline ranking query.
const topAccounts = 3

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// AccountCache is a fixed-capacity account store safe for concurrent use.
type AccountCache struct {
	lock sync.RWMutex // shared for lookups and rankings, exclusive for upserts
	lru  lru.BasicLRU[uint64, types.Account]

	// touch serialises the recency and hit-counter updates that lookups make
	// while several of them hold the shared lock at once.
	touch sync.Mutex

	hook      SectionHook
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates an account cache holding at most config.Capacity accounts.
func New(config Config) (*AccountCache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	log.Debug("Created account cache", "capacity", config.Capacity)
	return &AccountCache{
		lru:  lru.NewBasicLRU[uint64, types.Account](config.Capacity),
		hook: config.SectionHook,
	}, nil
}

// GetAccountByID retrieves an account, marking it as most recently used and
// counting a hit. The boolean reports whether the account is resident.
func (c *AccountCache) GetAccountByID(id uint64) (types.Account, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	c.enter(OpGetAccount)
	defer c.leave(OpGetAccount)

	acc, ok := c.get(id)
	if !ok {
		c.misses.Add(1)
	}
	return acc, ok
}

// PutAccount inserts or replaces an account, making it the most recently used
// entry. Inserting into a full cache evicts the least recently used account.
func (c *AccountCache) PutAccount(acc types.Account) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.enter(OpPutAccount)
	defer c.leave(OpPutAccount)

	if id, evicted := c.lru.Add(acc.ID, acc); evicted {
		c.evictions.Add(1)
		log.Debug("Evicted least recently used account", "id", id, "incoming", acc.ID)
	}
}

// Top3AccountsByBalance returns up to three resident accounts with the highest
// balances, highest first.
func (c *AccountCache) Top3AccountsByBalance() []types.Account {
	return c.TopAccountsByBalance(topAccounts)
}

// TopAccountsByBalance returns up to n resident accounts ordered by balance,
// highest first. Equal balances are ordered by ascending ID. The ranking reads
// a snapshot and never changes recency or the hit counter.
func (c *AccountCache) TopAccountsByBalance(n int) []types.Account {
	if n <= 0 {
		return []types.Account{}
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	c.enter(OpTopAccounts)
	defer c.leave(OpTopAccounts)

	accounts := c.values()
	sort.Sort(types.AccountsByBalance(accounts))
	if len(accounts) > n {
		accounts = accounts[:n:n]
	}
	return accounts
}

// GetAccountByIDHitCount returns the number of successful GetAccountByID calls.
func (c *AccountCache) GetAccountByIDHitCount() uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	c.enter(OpHitCount)
	defer c.leave(OpHitCount)

	return c.hits()
}

// SubscribeAccountUpdates registers a listener for account updates. Updates
// are not published: the listener is invoked once with nil and never again.
func (c *AccountCache) SubscribeAccountUpdates(listener func(*types.Account)) {
	listener(nil)
}

// Len returns the number of resident accounts.
func (c *AccountCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.lru.Len()
}

// Capacity returns the maximum number of resident accounts.
func (c *AccountCache) Capacity() int {
	return c.lru.Cap()
}

// Stats returns a consistent snapshot of the cache counters.
func (c *AccountCache) Stats() Stats {
	c.lock.RLock()
	defer c.lock.RUnlock()
	c.enter(OpStats)
	defer c.leave(OpStats)

	return Stats{
		Entries:   c.lru.Len(),
		Capacity:  c.lru.Cap(),
		Hits:      c.hits(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *AccountCache) get(id uint64) (types.Account, bool) {
	c.touch.Lock()
	defer c.touch.Unlock()

	return c.lru.Get(id)
}

func (c *AccountCache) values() []types.Account {
	c.touch.Lock()
	defer c.touch.Unlock()

	return c.lru.Values()
}

func (c *AccountCache) hits() uint64 {
	c.touch.Lock()
	defer c.touch.Unlock()

	return c.lru.HitCount()
}

func (c *AccountCache) enter(op Op) {
	log.Trace("Entered account cache section", "op", op, "exclusive", op.Exclusive())
	if c.hook != nil {
		c.hook(op)
	}
}

func (c *AccountCache) leave(op Op) {
	log.Trace("Leaving account cache section", "op", op, "exclusive", op.Exclusive())
}
