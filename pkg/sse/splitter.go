// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sse

import "strings"

// FrameDelimiter separates frames on the wire. A frame is only complete
// once its trailing delimiter has been received.
const FrameDelimiter = "\n\n"

// FrameSplitter turns arbitrary, non-aligned chunks of streamed text
// into complete frames.
//
// The splitter keeps a single residual buffer across calls: each chunk
// is appended, the buffer is split on FrameDelimiter, every piece but
// the last is emitted, and the last piece is retained because it may be
// the prefix of a frame still in flight. It never blocks, never drops
// bytes, and never looks past data it has actually received.
//
// The zero value is ready to use. A FrameSplitter is not safe for
// concurrent use; it belongs to exactly one stream.
type FrameSplitter struct {
	residual string
}

// NewFrameSplitter returns a splitter with an empty residual buffer.
func NewFrameSplitter() *FrameSplitter {
	return &FrameSplitter{}
}

// Feed appends one chunk and returns every frame completed by it, in
// arrival order. An empty chunk yields no frames and leaves the buffer
// untouched. The returned frames do not include the delimiter.
func (s *FrameSplitter) Feed(chunk string) []string {
	if chunk == "" {
		return nil
	}
	s.residual += chunk
	if !strings.Contains(s.residual, FrameDelimiter) {
		return nil
	}
	pieces := strings.Split(s.residual, FrameDelimiter)
	s.residual = pieces[len(pieces)-1]
	return pieces[:len(pieces)-1]
}

// Flush surrenders the residual buffer as one final candidate frame at
// stream end. It reports false when the residual is empty, in which
// case there is nothing left to process.
func (s *FrameSplitter) Flush() (string, bool) {
	frame := s.residual
	s.residual = ""
	return frame, frame != ""
}
