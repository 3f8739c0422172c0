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

package lru

import (
	"math/rand"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Some of these test cases were adapted
// from https://github.com/hashicorp/golang-lru/blob/master/simplelru/lru_test.go

func TestBasicLRU(t *testing.T) {
	cache := NewBasicLRU[int, int](128)

	for i := 0; i < 256; i++ {
		cache.Add(i, i)
	}
	assert.Equal(t, 128, cache.Len(), "wrong length")

	// Check that Keys returns least-recent key first.
	keys := cache.Keys()
	require.Len(t, keys, 128)
	for i, k := range keys {
		v, ok := cache.Peek(k)
		require.True(t, ok, "expected key %d be present", i)
		assert.Equal(t, k, v, "expected %d == %d", k, v)
		assert.Equal(t, i+128, v, "wrong value at key %d", i)
	}

	for i := 0; i < 128; i++ {
		_, ok := cache.Get(i)
		assert.False(t, ok, "%d should be evicted", i)
	}
	for i := 128; i < 256; i++ {
		_, ok := cache.Get(i)
		assert.True(t, ok, "%d should not be evicted", i)
	}
	assert.EqualValues(t, 128, cache.HitCount())
}

func TestBasicLRUAddExistingKey(t *testing.T) {
	cache := NewBasicLRU[int, int](1)

	cache.Add(1, 1)
	_, evicted := cache.Add(1, 2)
	assert.False(t, evicted, "replacing a key must not evict")

	v, _ := cache.Get(1)
	assert.Equal(t, 2, v, "wrong value")
}

// This test checks GetOldest and the reported eviction.
func TestBasicLRUGetOldest(t *testing.T) {
	cache := NewBasicLRU[int, int](128)
	for i := 0; i < 256; i++ {
		cache.Add(i, i)
	}

	k, _, ok := cache.GetOldest()
	require.True(t, ok, "missing")
	assert.Equal(t, 128, k, "wrong oldest item")

	key, evicted := cache.Add(256, 256)
	assert.True(t, evicted)
	assert.Equal(t, 128, key, "oldest item should have been evicted")

	k, _, _ = cache.GetOldest()
	assert.Equal(t, 129, k, "wrong oldest item")
}

// Test that Get marks the entry as recently used and protects it from eviction.
func TestBasicLRUGetTouches(t *testing.T) {
	cache := NewBasicLRU[int, int](2)
	cache.Add(1, 1000)
	cache.Add(2, 2000)

	_, ok := cache.Get(1)
	require.True(t, ok)

	key, evicted := cache.Add(4, 4000)
	assert.True(t, evicted)
	assert.Equal(t, 2, key, "least recently touched key should be evicted")
	assert.True(t, cache.Contains(1))
	assert.True(t, cache.Contains(4))
	assert.False(t, cache.Contains(2))
}

// Test that an update moves the key to the front without evicting.
func TestBasicLRUUpdateTouches(t *testing.T) {
	cache := NewBasicLRU[int, int](2)
	cache.Add(1, 1000)
	cache.Add(2, 2000)
	cache.Add(1, 2500)
	assert.Equal(t, []int{2, 1}, cache.Keys())

	key, evicted := cache.Add(4, 4000)
	assert.True(t, evicted)
	assert.Equal(t, 2, key)

	v, _ := cache.Peek(1)
	assert.Equal(t, 2500, v)
}

// Test that Peek, Contains, Values and misses don't update recent-ness or hits.
func TestBasicLRUNoTouch(t *testing.T) {
	cache := NewBasicLRU[int, int](2)
	cache.Add(1, 1)
	cache.Add(2, 2)

	_, ok := cache.Peek(1)
	assert.True(t, ok)
	assert.True(t, cache.Contains(1))
	assert.ElementsMatch(t, []int{1, 2}, cache.Values())
	_, ok = cache.Get(3)
	assert.False(t, ok)

	assert.Equal(t, []int{1, 2}, cache.Keys(), "recency changed")
	assert.Zero(t, cache.HitCount())

	cache.Add(3, 3)
	assert.False(t, cache.Contains(1), "should not have updated recent-ness of 1")
	assert.True(t, cache.Contains(2))
	assert.True(t, cache.Contains(3))
}

func TestBasicLRUHitCount(t *testing.T) {
	cache := NewBasicLRU[int, int](4)
	cache.Add(1, 1000)

	cache.Get(1)
	cache.Get(1)
	assert.EqualValues(t, 2, cache.HitCount())

	cache.Get(999)
	cache.Add(2, 2000)
	cache.Values()
	assert.EqualValues(t, 2, cache.HitCount(), "only successful lookups count")
}

func TestBasicLRUZeroCapacity(t *testing.T) {
	cache := NewBasicLRU[int, int](0)
	assert.Equal(t, 1, cache.Cap())

	cache.Add(1, 1)
	cache.Add(2, 2)
	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.Contains(2))
}

func TestBasicLRUEmpty(t *testing.T) {
	cache := NewBasicLRU[int, int](3)

	_, _, ok := cache.GetOldest()
	assert.False(t, ok)
	assert.Empty(t, cache.Keys())
	assert.NotNil(t, cache.Values())
	assert.Empty(t, cache.Values())
}

// TestBasicLRURandom replays a random workload against a naive model and checks
// the capacity bound and the resident key set after every step.
func TestBasicLRURandom(t *testing.T) {
	const capacity = 8
	var (
		rng   = rand.New(rand.NewSource(1))
		cache = NewBasicLRU[int, int](capacity)
		order []int // model recency, oldest first
	)
	touch := func(k int) {
		for i, o := range order {
			if o == k {
				order = append(order[:i], order[i+1:]...)
				break
			}
		}
		order = append(order, k)
	}
	for i := 0; i < 5000; i++ {
		k := rng.Intn(20)
		if rng.Intn(2) == 0 {
			if _, ok := cache.Get(k); ok {
				touch(k)
			}
			continue
		}
		present := cache.Contains(k)
		evictedKey, evicted := cache.Add(k, i)
		if !present && len(order) == capacity {
			require.True(t, evicted, "step %d: expected eviction", i)
			require.Equal(t, order[0], evictedKey, "step %d: wrong victim", i)
			order = order[1:]
		} else {
			require.False(t, evicted, "step %d: unexpected eviction", i)
		}
		touch(k)

		require.LessOrEqual(t, cache.Len(), capacity)
		want := mapset.NewThreadUnsafeSet(order...)
		have := mapset.NewThreadUnsafeSet(cache.Keys()...)
		require.True(t, want.Equal(have), "step %d: resident keys %v, want %v", i, have, want)
		require.Equal(t, order, cache.Keys(), "step %d: recency order", i)
	}
}

func BenchmarkLRU(b *testing.B) {
	var (
		capacity = 1000
		indexes  = make([]int, capacity*20)
		keys     = make([]int, capacity)
	)
	for i := range keys {
		keys[i] = rand.Int()
	}
	for i := range indexes {
		indexes[i] = rand.Intn(len(keys))
	}

	b.Run("Add/BasicLRU", func(b *testing.B) {
		cache := NewBasicLRU[int, int](capacity)
		for i := 0; i < b.N; i++ {
			k := keys[indexes[i%len(indexes)]]
			cache.Add(k, k)
		}
	})
	b.Run("Get/BasicLRU", func(b *testing.B) {
		cache := NewBasicLRU[int, int](capacity)
		for _, k := range keys {
			cache.Add(k, k)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			cache.Get(keys[indexes[i%len(indexes)]])
		}
	})
}
