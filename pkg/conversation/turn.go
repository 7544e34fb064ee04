// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package conversation holds the client-side conversation state: turn
// snapshots, the pure event merge, and the ordered store the stream
// driver writes into and the presentation layer reads from.
//
// Turns are passed and stored by value. Mutation happens by replacing a
// turn's snapshot in the store, keyed by its identity, never by editing
// shared memory in place. This is what lets the renderer observe a
// half-streamed answer without ever seeing a torn update.
package conversation

import "github.com/mevzuai/enerji-asistan/pkg/sse"

// Role distinguishes who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversation entry.
//
// For assistant turns Content grows by append while the stream is live
// and Sources is replaced wholesale when a citation list arrives. The
// single exception to monotonic growth is the transport-failure path,
// which overwrites Content with a fixed error message and sets Errored.
// Once Errored is set, Content is a user-facing error, not answer text.
type Turn struct {
	// ID is assigned at creation and never changes. It is unique
	// within a conversation and increases with creation order.
	ID int64

	Role    Role
	Content string

	// Sources is empty until the producer sends a citation list. The
	// last list received wins; lists are never concatenated.
	Sources []sse.Source

	Errored bool
}
