// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"slices"

	"github.com/mevzuai/enerji-asistan/pkg/sse"
)

// Apply folds one decoded event into a turn and returns the resulting
// snapshot. The input turn is never modified.
//
// Merge rules:
//   - token events append to Content, even when the token is empty;
//   - sources events replace the Sources list wholesale, last list wins;
//   - done and ignorable events return the turn unchanged.
//
// An errored turn is frozen: its Content is a user-facing error message
// and no late event may overwrite it.
func Apply(turn Turn, event sse.Event) Turn {
	if turn.Errored {
		return turn
	}

	switch event.Type {
	case sse.EventToken:
		turn.Content += event.Token
	case sse.EventSources:
		turn.Sources = slices.Clone(event.Sources)
	}
	return turn
}
