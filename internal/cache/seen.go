// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package cache

import (
	"sync"
	"time"
)

type seenNode struct {
	key        string
	expiresAt  time.Time
	prev, next *seenNode
}

// SeenSet is a thread-safe, capacity-bounded LRU set with per-key expiry.
// Add, Contains and eviction are O(1).
type SeenSet struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*seenNode

	// head.next is the most recent entry, tail.prev the least recent.
	head, tail *seenNode

	hits, misses int64
}

// NewSeenSet creates a set. Non-positive arguments fall back to
// 10000 entries and a 6h TTL.
func NewSeenSet(capacity int, ttl time.Duration) *SeenSet {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}

	s := &SeenSet{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*seenNode, capacity),
		head:     &seenNode{},
		tail:     &seenNode{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	return s
}

// Contains reports whether key was added and has not expired. A hit
// refreshes the key's recency but not its expiry.
func (s *SeenSet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[key]
	if !ok {
		s.misses++
		return false
	}
	if time.Now().After(n.expiresAt) {
		s.remove(n)
		s.misses++
		return false
	}
	s.unlink(n)
	s.pushFront(n)
	s.hits++
	return true
}

// Add records keys, evicting the least recently used entries past capacity.
func (s *SeenSet) Add(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := time.Now().Add(s.ttl)
	for _, key := range keys {
		if n, ok := s.items[key]; ok {
			n.expiresAt = expiresAt
			s.unlink(n)
			s.pushFront(n)
			continue
		}
		n := &seenNode{key: key, expiresAt: expiresAt}
		s.pushFront(n)
		s.items[key] = n
		for len(s.items) > s.capacity {
			s.remove(s.tail.prev)
		}
	}
}

// Len returns the number of entries, expired ones included.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Stats returns hit and miss counts.
func (s *SeenSet) Stats() (hits, misses int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

// Must be called with mu held.
func (s *SeenSet) pushFront(n *seenNode) {
	n.prev = s.head
	n.next = s.head.next
	s.head.next.prev = n
	s.head.next = n
}

func (s *SeenSet) unlink(n *seenNode) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (s *SeenSet) remove(n *seenNode) {
	if n == s.head {
		return
	}
	s.unlink(n)
	delete(s.items, n.key)
}
