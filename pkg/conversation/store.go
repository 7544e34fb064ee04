// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"sync"
	"time"
)

// =============================================================================
// Conversation Store
// =============================================================================

// Store is the ordered list of turns in a conversation.
//
// Turns keep their insertion order forever; updates replace a turn's
// snapshot in place, keyed by ID, and never reorder the list. All
// methods are safe for concurrent use, which matters because the stream
// driver writes from its own goroutine while the UI reads.
type Store struct {
	mu     sync.Mutex
	turns  []Turn
	lastID int64

	subscribers []chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append creates a new turn at the end of the conversation and returns
// its snapshot. IDs are milliseconds-since-epoch, bumped when two turns
// land within the same millisecond, so they are unique and increase
// with creation order.
func (s *Store) Append(role Role, content string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	turn := Turn{ID: id, Role: role, Content: content}
	s.turns = append(s.turns, turn)
	s.notifyLocked()
	return turn
}

// Update replaces the turn with the given ID by applying transform to
// its current snapshot. The turn's ID and position are preserved
// regardless of what transform returns. Returns the new snapshot, or
// false when no turn has that ID; an unknown ID changes nothing.
func (s *Store) Update(id int64, transform func(Turn) Turn) (Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.turns {
		if s.turns[i].ID != id {
			continue
		}
		next := transform(s.turns[i])
		next.ID = id
		s.turns[i] = next
		s.notifyLocked()
		return next, true
	}
	return Turn{}, false
}

// Turns returns a copy of all turns in conversation order.
func (s *Store) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Subscribe returns a channel that receives a signal after every store
// mutation. The channel has a one-element buffer and signals coalesce:
// a slow reader misses intermediate notifications but always learns
// that something changed. Intended for UI refresh loops.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// notifyLocked signals every subscriber without blocking. Callers must
// hold s.mu.
func (s *Store) notifyLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
