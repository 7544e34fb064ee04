// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"sync"
	"testing"
)

// =============================================================================
// Conversation Store Tests
// =============================================================================

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := NewStore()

	s.Append(RoleUser, "soru 1")
	s.Append(RoleAssistant, "")
	s.Append(RoleUser, "soru 2")

	turns := s.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Content != "soru 1" || turns[2].Content != "soru 2" {
		t.Errorf("order lost: %+v", turns)
	}
}

func TestStore_IDsAreUniqueAndIncreasing(t *testing.T) {
	s := NewStore()

	var prev int64
	for i := 0; i < 100; i++ {
		turn := s.Append(RoleUser, "")
		if turn.ID <= prev {
			t.Fatalf("turn %d: id %d not greater than previous %d", i, turn.ID, prev)
		}
		prev = turn.ID
	}
}

func TestStore_UpdateReplacesOnlyTheTarget(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "soru")
	assistant := s.Append(RoleAssistant, "")

	updated, ok := s.Update(assistant.ID, func(turn Turn) Turn {
		turn.Content = "cevap"
		return turn
	})
	if !ok {
		t.Fatal("update missed an existing turn")
	}
	if updated.Content != "cevap" {
		t.Errorf("unexpected snapshot: %+v", updated)
	}

	turns := s.Turns()
	if turns[0].Content != "soru" {
		t.Errorf("neighbor turn disturbed: %+v", turns[0])
	}
	if turns[1].ID != assistant.ID {
		t.Errorf("update changed position or identity: %+v", turns[1])
	}
}

func TestStore_UpdatePreservesIDAgainstTransform(t *testing.T) {
	s := NewStore()
	turn := s.Append(RoleAssistant, "")

	updated, ok := s.Update(turn.ID, func(t Turn) Turn {
		t.ID = -1
		return t
	})
	if !ok || updated.ID != turn.ID {
		t.Errorf("transform was allowed to change the id: %+v", updated)
	}
}

func TestStore_UpdateUnknownIDIsNoOp(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "soru")
	before := s.Turns()

	if _, ok := s.Update(999, func(t Turn) Turn { t.Content = "x"; return t }); ok {
		t.Fatal("update reported success for an unknown id")
	}
	after := s.Turns()
	if len(after) != len(before) || after[0].Content != before[0].Content {
		t.Errorf("unknown id mutated the store: %+v", after)
	}
}

func TestStore_TurnsReturnsACopy(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "orijinal")

	turns := s.Turns()
	turns[0].Content = "değiştirildi"

	if s.Turns()[0].Content != "orijinal" {
		t.Error("caller got a reference into the store's slice")
	}
}

func TestStore_SubscribeSignalsOnMutation(t *testing.T) {
	s := NewStore()
	ch := s.Subscribe()

	s.Append(RoleUser, "soru")
	select {
	case <-ch:
	default:
		t.Fatal("append did not signal the subscriber")
	}

	turn := s.Append(RoleAssistant, "")
	<-ch
	s.Update(turn.ID, func(t Turn) Turn { t.Content = "a"; return t })
	select {
	case <-ch:
	default:
		t.Fatal("update did not signal the subscriber")
	}
}

func TestStore_SlowSubscriberDoesNotBlockWriters(t *testing.T) {
	s := NewStore()
	s.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			s.Append(RoleUser, "")
		}
		close(done)
	}()
	<-done
	if s.Len() != 50 {
		t.Errorf("expected 50 turns, got %d", s.Len())
	}
}

func TestStore_ConcurrentAppendAndRead(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				s.Append(RoleUser, "")
				s.Turns()
			}
		}()
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Fatalf("expected 100 turns, got %d", s.Len())
	}
	turns := s.Turns()
	for i := 1; i < len(turns); i++ {
		if turns[i].ID <= turns[i-1].ID {
			t.Fatalf("ids out of order at %d: %d then %d", i, turns[i-1].ID, turns[i].ID)
		}
	}
}
