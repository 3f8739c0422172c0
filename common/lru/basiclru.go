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

// Package lru implements generically-typed LRU caches.
package lru

// BasicLRU is a simple LRU cache which also counts successful lookups.
//
// This type is not safe for concurrent use.
// The zero value is not valid, instances must be created using NewBasicLRU.
//
// BasicLRU 是一个简单的 LRU 缓存，同时统计命中次数。
// 该类型不是并发安全的，必须通过 NewBasicLRU 创建。
type BasicLRU[K comparable, V any] struct {
	list  *list[K]
	items map[K]cacheItem[K, V]
	cap   int
	hits  uint64 // successful Get calls 成功的 Get 调用次数
}

type cacheItem[K any, V any] struct {
	elem  *listElem[K]
	value V
}

// NewBasicLRU creates a new LRU cache. A capacity below one is raised to one.
func NewBasicLRU[K comparable, V any](capacity int) BasicLRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return BasicLRU[K, V]{
		list:  newList[K](),
		items: make(map[K]cacheItem[K, V], capacity),
		cap:   capacity,
	}
}

// Add adds a value to the cache, making it the most recently used entry.
// Replacing an existing key never evicts. Inserting a new key into a full cache
// first removes the least recently used entry, which is reported back.
//
// Add 添加一个值并将其标记为最近使用。若缓存已满且键不存在，先淘汰最久未使用的条目。
func (c *BasicLRU[K, V]) Add(key K, value V) (evictedKey K, evicted bool) {
	item, ok := c.items[key]
	if ok {
		item.value = value
		c.items[key] = item
		c.list.moveToFront(item.elem)
		return evictedKey, false
	}

	var elem *listElem[K]
	if c.Len() >= c.cap {
		// Reuse the list element of the evicted entry.
		elem = c.list.removeLast()
		delete(c.items, elem.v)
		evictedKey, evicted = elem.v, true
	} else {
		elem = new(listElem[K])
	}
	elem.v = key
	c.items[key] = cacheItem[K, V]{elem, value}
	c.list.pushElem(elem)
	return evictedKey, evicted
}

// Contains reports whether the given key exists in the cache.
// It neither touches the entry nor counts as a hit.
func (c *BasicLRU[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Get retrieves a value from the cache. A hit marks the key as recently used and
// increments the hit counter, a miss leaves the cache untouched.
func (c *BasicLRU[K, V]) Get(key K) (value V, ok bool) {
	item, ok := c.items[key]
	if !ok {
		return value, false
	}
	c.list.moveToFront(item.elem)
	c.hits++
	return item.value, true
}

// GetOldest retrieves the least-recently-used item.
// Note that this does not update the item's recency.
func (c *BasicLRU[K, V]) GetOldest() (key K, value V, ok bool) {
	lastElem := c.list.last()
	if lastElem == nil {
		return key, value, false
	}
	key = lastElem.v
	item := c.items[key]
	return key, item.value, true
}

// HitCount returns the number of successful Get calls since creation.
func (c *BasicLRU[K, V]) HitCount() uint64 {
	return c.hits
}

// Len returns the current number of items in the cache.
func (c *BasicLRU[K, V]) Len() int {
	return len(c.items)
}

// Cap returns the maximum number of items the cache holds.
func (c *BasicLRU[K, V]) Cap() int {
	return c.cap
}

// Peek retrieves a value from the cache, but does not mark the key as recently used.
func (c *BasicLRU[K, V]) Peek(key K) (value V, ok bool) {
	item, ok := c.items[key]
	return item.value, ok
}

// Keys returns all keys in the cache, ordered from oldest to newest.
func (c *BasicLRU[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.items))
	return c.list.appendTo(keys)
}

// Values returns a snapshot of all cached values. The order of the returned
// slice is unspecified. Recency and the hit counter are left untouched.
//
// Values 返回所有值的快照，顺序不确定，不影响访问顺序和命中计数。
func (c *BasicLRU[K, V]) Values() []V {
	values := make([]V, 0, len(c.items))
	for _, item := range c.items {
		values = append(values, item.value)
	}
	return values
}

// list is a doubly-linked list holding items of type T.
// The zero value is not valid, use newList to create lists.
type list[T any] struct {
	root listElem[T]
}

type listElem[T any] struct {
	next *listElem[T]
	prev *listElem[T]
	v    T
}

func newList[T any]() *list[T] {
	l := new(list[T])
	l.init()
	return l
}

// init reinitializes the list, making it empty.
func (l *list[T]) init() {
	l.root.next = &l.root
	l.root.prev = &l.root
}

// pushElem adds an element to the front of the list.
func (l *list[T]) pushElem(e *listElem[T]) {
	e.prev = &l.root
	e.next = l.root.next
	l.root.next = e
	e.next.prev = e
}

// moveToFront makes e the head of the list.
func (l *list[T]) moveToFront(e *listElem[T]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	l.pushElem(e)
}

// remove removes an element from the list.
func (l *list[T]) remove(e *listElem[T]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next, e.prev = nil, nil
}

// removeLast removes the last element of the list.
func (l *list[T]) removeLast() *listElem[T] {
	last := l.last()
	if last != nil {
		l.remove(last)
	}
	return last
}

// last returns the last element of the list, or nil if the list is empty.
func (l *list[T]) last() *listElem[T] {
	e := l.root.prev
	if e == &l.root {
		return nil
	}
	return e
}

// appendTo appends all list elements to a slice, from oldest to newest.
func (l *list[T]) appendTo(slice []T) []T {
	for e := l.root.prev; e != &l.root; e = e.prev {
		slice = append(slice, e.v)
	}
	return slice
}
