// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sse

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const (
	// dataPrefix marks a frame as relevant to the client. Frames that
	// do not start with it (comments, `event:` lines, keep-alives) are
	// ignorable, not errors.
	dataPrefix = "data: "

	// doneSentinel is the literal payload announcing end of stream.
	doneSentinel = "[DONE]"
)

// Decoder classifies one complete frame into exactly one Event.
//
// Decode never fails: anything it cannot understand collapses into
// EventIgnorable so that a single bad frame cannot abort the stream.
// Malformed payloads are reported to the decoder's logger and nowhere
// else; they are invisible to the user.
//
// A Decoder holds no per-frame state and is safe for concurrent use.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a decoder reporting decode failures to logger.
// A nil logger falls back to slog.Default.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// framePayload is the recognized shape of a data frame. Token is a
// pointer so that presence can be told apart from an empty string.
type framePayload struct {
	Token   *string  `json:"token"`
	Sources []Source `json:"sources"`
}

// Decode turns one complete frame into an Event.
//
// Classification order:
//  1. no "data: " prefix          → EventIgnorable
//  2. payload equals "[DONE]"     → EventDone
//  3. JSON with a "token" field   → EventToken (preferred when both)
//  4. JSON with a "sources" field → EventSources
//  5. anything else, or bad JSON  → EventIgnorable
func (d *Decoder) Decode(frame string) Event {
	if !strings.HasPrefix(frame, dataPrefix) {
		return Event{Type: EventIgnorable}
	}

	payload := strings.TrimPrefix(frame, dataPrefix)
	if strings.TrimSpace(payload) == doneSentinel {
		return Event{Type: EventDone}
	}

	var body framePayload
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		d.logger.Warn("discarding malformed frame",
			"error", err,
			"frame", excerpt(frame, 120),
		)
		return Event{Type: EventIgnorable}
	}

	switch {
	case body.Token != nil:
		return Event{Type: EventToken, Token: *body.Token}
	case body.Sources != nil:
		return Event{Type: EventSources, Sources: body.Sources}
	default:
		return Event{Type: EventIgnorable}
	}
}

// excerpt truncates s for log output.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
