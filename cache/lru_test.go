// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeEntry(id int64) (entry, error) {
	return entry{
		ID:      id,
		Headers: map[string]string{"Bundle-SymbolicName": strconv.FormatInt(id, 10)},
	}, nil
}

func doNotMake(id int64) (entry, error) {
	return entry{}, assert.AnError
}

type LRUAssertions struct {
	*assert.Assertions
	LRU *lru
}

func NewLRUAssertions(t assert.TestingT, size int) *LRUAssertions {
	return &LRUAssertions{
		assert.New(t),
		newLRU(size),
	}
}

// GetID fetches an entry from the cache; if not present, it is added.
func (a *LRUAssertions) GetID(id int64) {
	e, err := a.LRU.Get(id, makeEntry)
	if a.NoError(err) {
		a.Equal(id, e.ID)
	}
}

// GetPresent fetches an entry from the cache; if not present, it
// should produce an assertion error.
func (a *LRUAssertions) GetPresent(id int64) {
	e, err := a.LRU.Get(id, doNotMake)
	if a.NoError(err) {
		a.Equal(id, e.ID)
	}
}

// GetError tries to fetch an entry that should not exist.
func (a *LRUAssertions) GetError(id int64) {
	_, err := a.LRU.Get(id, doNotMake)
	a.Error(err)
}

func (a *LRUAssertions) LRUHas(id int64) {
	e, present := a.LRU.Peek(id)
	if a.True(present, "%v", id) {
		a.Equal(id, e.ID)
	}
}

func (a *LRUAssertions) LRUDoesNotHave(id int64) {
	_, present := a.LRU.Peek(id)
	a.False(present, "%v", id)
}

func TestLRUSimple(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	a.LRU.Put(entry{ID: 1})

	a.LRUHas(1)
	a.LRUDoesNotHave(2)
	a.Equal(1, a.LRU.Len())
}

// TestLRUAutoInsert tests lru.Get() adding absent entries.
func TestLRUAutoInsert(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID(1)
	a.GetID(2)
	a.LRUHas(1)
	a.LRUHas(2)

	// A third entry evicts the oldest
	a.GetID(3)
	a.LRUDoesNotHave(1)
	a.LRUHas(2)
	a.LRUHas(3)
}

func TestLRUInsertError(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID(1)
	a.GetID(2)

	// Nothing is added, so nothing is evicted
	a.GetError(3)
	a.LRUHas(1)
	a.LRUHas(2)
	a.LRUDoesNotHave(3)

	a.GetPresent(1)
	a.GetPresent(2)
}

// TestLRUOrder tests that using an entry keeps it from being evicted.
func TestLRUOrder(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID(1)
	a.GetID(2)
	a.GetID(1)

	a.GetID(3)
	a.LRUHas(1)
	a.LRUDoesNotHave(2)
	a.LRUHas(3)
}

func TestLRURemoval(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID(1)
	a.LRU.Remove(1)
	a.LRUDoesNotHave(1)

	a.LRU.Remove(3)
	a.LRUDoesNotHave(3)

	// Removing a newer entry leaves room for the older one
	a.GetID(1)
	a.GetID(2)
	a.LRU.Remove(2)
	a.GetID(3)
	a.LRUHas(1)
	a.LRUDoesNotHave(2)
	a.LRUHas(3)
}

func TestLRUInvalidate(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.LRU.Put(entry{ID: 1, LastModified: 100})
	a.LRU.Invalidate(1, 100)
	a.LRUHas(1)
	a.LRU.Invalidate(1, 200)
	a.LRUDoesNotHave(1)
	a.LRU.Invalidate(2, 200)
	a.LRUDoesNotHave(2)
}
