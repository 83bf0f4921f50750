// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"container/list"
	"sync"
)

// entry is one bundle's cached manifest.
type entry struct {
	ID int64

	// LastModified is the bundle's modification time when the
	// headers were fetched.
	LastModified int64

	Headers map[string]string
}

// lru is a least-recently-used cache of entries by bundle id, with a
// fixed capacity.  The cache can be safely accessed from multiple
// goroutines.
type lru struct {
	size      int
	lock      sync.Mutex
	evictList *list.List
	index     map[int64]*list.Element
}

func newLRU(size int) *lru {
	return &lru{
		size:      size,
		evictList: list.New(),
		index:     make(map[int64]*list.Element),
	}
}

// Get retrieves an entry from the cache.  If it is not present, calls
// the fetch function, and if that succeeds, saves the entry and
// returns it.  The fetch function runs without the lock held, so
// two concurrent misses for the same id may both fetch.
func (lru *lru) Get(id int64, fetch func(int64) (entry, error)) (entry, error) {
	if e, present := lru.Peek(id); present {
		return e, nil
	}
	e, err := fetch(id)
	if err != nil {
		return e, err
	}
	lru.Put(e)
	return e, nil
}

// Peek looks for an entry and marks it as recently used.
func (lru *lru) Peek(id int64) (entry, bool) {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	if element, present := lru.index[id]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(entry), true
	}
	return entry{}, false
}

// Put adds an entry, replacing any existing entry for the same id and
// possibly evicting the least recently used one.
func (lru *lru) Put(e entry) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[e.ID]; present {
		element.Value = e
		lru.evictList.MoveToBack(element)
		return
	}

	element := lru.evictList.PushBack(e)
	lru.index[e.ID] = element
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		delete(lru.index, head.Value.(entry).ID)
		lru.evictList.Remove(head)
	}
}

// Remove takes an entry out of the cache.  It does nothing if the id
// is not present.
func (lru *lru) Remove(id int64) {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	if element, present := lru.index[id]; present {
		delete(lru.index, id)
		lru.evictList.Remove(element)
	}
}

// Invalidate removes the entry for id if it was fetched at a
// different modification time.
func (lru *lru) Invalidate(id, lastModified int64) {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	if element, present := lru.index[id]; present {
		if element.Value.(entry).LastModified != lastModified {
			delete(lru.index, id)
			lru.evictList.Remove(element)
		}
	}
}

// Len returns the number of cached entries.
func (lru *lru) Len() int {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	return len(lru.index)
}
