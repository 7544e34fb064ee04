// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sse implements the wire layer of the streaming chat client:
// reassembling delimiter-bounded frames from arbitrary transport chunks
// and decoding each frame into a typed event.
//
// The package is deliberately split into a stateful splitter and a
// stateless decoder:
//
//	bytes → FrameSplitter → frames → Decoder → events
//
// The splitter owns the residual buffer that survives chunk boundaries;
// the decoder classifies exactly one complete frame at a time and never
// carries state between frames, so a malformed frame can only ever
// poison itself.
package sse

import "encoding/json"

// =============================================================================
// Event Types
// =============================================================================

// EventType identifies the kind of instruction decoded from one frame.
type EventType string

const (
	// EventToken carries one increment of assistant answer text.
	EventToken EventType = "token"

	// EventSources carries the citation list for the current answer.
	// A later sources event replaces an earlier one wholesale.
	EventSources EventType = "sources"

	// EventDone signals the producer's intent to close the stream.
	// It carries no content and must never be rendered.
	EventDone EventType = "done"

	// EventIgnorable marks a frame that carries nothing for the client:
	// unrecognized prefix, unrecognized shape, or malformed payload.
	EventIgnorable EventType = "ignorable"
)

// Event is one decoded instruction derived from a single frame.
//
// Exactly one field beyond Type is meaningful, selected by Type:
// Token for EventToken, Sources for EventSources, neither for the rest.
type Event struct {
	Type    EventType
	Token   string
	Sources []Source
}

// IsTerminal reports whether the event ends the stream from the
// producer's point of view.
func (e Event) IsTerminal() bool {
	return e.Type == EventDone
}

// =============================================================================
// Wire Model
// =============================================================================

// Source is one citation attached to an assistant answer, referencing
// an origin document and a locator within it.
type Source struct {
	SourceFile    string        `json:"source_file"`
	ArticleNumber ArticleNumber `json:"article_number"`
	Section       string        `json:"section,omitempty"`
	Content       string        `json:"content"`
}

// ArticleNumber is a locator within a source document. Producers emit
// it either as a JSON string or as a bare number; both decode to the
// string form.
type ArticleNumber string

// UnmarshalJSON accepts `"7"` and `7` alike.
func (a *ArticleNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = ArticleNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = ArticleNumber(n.String())
	return nil
}

func (a ArticleNumber) String() string {
	return string(a)
}
