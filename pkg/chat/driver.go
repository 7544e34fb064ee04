// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package chat drives a single streamed question/answer exchange
// against the assistant backend.
//
// The driver owns the network leg: it opens the stream, feeds raw
// chunks through the frame splitter and event decoder, and folds each
// decoded event into the conversation store. Presentation code never
// sees a socket; it watches the store.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mevzuai/enerji-asistan/pkg/conversation"
	"github.com/mevzuai/enerji-asistan/pkg/sse"
)

// =============================================================================
// Driver State
// =============================================================================

// State is the lifecycle phase of the driver's current or most recent
// exchange.
type State string

const (
	// StateIdle means no exchange has been started yet.
	StateIdle State = "idle"

	// StateStreaming means an exchange is in flight. Submit rejects
	// new queries in this state.
	StateStreaming State = "streaming"

	// StateCompleted means the last exchange drained to its natural
	// end, via the terminator or end of stream.
	StateCompleted State = "completed"

	// StateCancelled means the last exchange was cut off by context
	// cancellation. The partial answer stays as-is.
	StateCancelled State = "cancelled"

	// StateErrored means the last exchange failed in transport and the
	// assistant turn now carries ErrorMessage.
	StateErrored State = "errored"
)

// ErrorMessage replaces the assistant turn's content when the stream
// fails. It is shown to the user verbatim.
const ErrorMessage = "Üzgünüm, bir hata oluştu. Lütfen bağlantınızı kontrol edip tekrar deneyin."

var (
	// ErrEmptyQuery is returned when the query is empty or whitespace.
	ErrEmptyQuery = errors.New("chat: empty query")

	// ErrTurnInFlight is returned when Submit is called while a
	// previous exchange is still streaming.
	ErrTurnInFlight = errors.New("chat: a turn is already streaming")
)

// =============================================================================
// Driver
// =============================================================================

// Config configures a Driver.
type Config struct {
	// BaseURL is the backend root, e.g. "http://127.0.0.1:8000". The
	// driver appends the stream path itself.
	BaseURL string

	// Client issues the stream request. Nil uses a default client
	// around http.DefaultClient.
	Client HTTPClient

	// Logger receives stream telemetry. Nil falls back to
	// slog.Default.
	Logger *slog.Logger
}

// Driver runs one exchange at a time against the backend and writes
// every observable step into the conversation store.
type Driver struct {
	baseURL string
	client  HTTPClient
	logger  *slog.Logger
	store   *conversation.Store

	mu    sync.Mutex
	state State
}

// NewDriver creates a driver writing into store.
func NewDriver(config Config, store *conversation.Store) *Driver {
	client := config.Client
	if client == nil {
		client = NewHTTPClient(nil)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client:  client,
		logger:  logger,
		store:   store,
		state:   StateIdle,
	}
}

// State reports the current lifecycle phase.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Store exposes the conversation store the driver writes into.
func (d *Driver) Store() *conversation.Store {
	return d.store
}

// Submit runs one full exchange: it records the user turn, opens the
// stream, and merges events into a fresh assistant turn until the
// stream ends. It blocks until the exchange reaches a terminal state.
//
// Outcomes:
//   - natural end (terminator or EOF): the residual buffer is flushed
//     through the decoder first, then the state becomes StateCompleted;
//   - context cancellation: whatever has been merged so far stays
//     untouched and the state becomes StateCancelled;
//   - transport failure or non-200 status: the assistant turn's content
//     is replaced wholesale with ErrorMessage, sources already received
//     are kept, and the state becomes StateErrored.
//
// Only one exchange may be in flight; concurrent calls get
// ErrTurnInFlight and leave the conversation untouched.
func (d *Driver) Submit(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	d.mu.Lock()
	if d.state == StateStreaming {
		d.mu.Unlock()
		return ErrTurnInFlight
	}
	d.state = StateStreaming
	d.mu.Unlock()

	requestID := uuid.NewString()
	logger := d.logger.With("request_id", requestID)

	d.store.Append(conversation.RoleUser, query)
	assistant := d.store.Append(conversation.RoleAssistant, "")

	err := d.stream(ctx, logger, assistant.ID, query)
	switch {
	case err == nil:
		d.setState(StateCompleted)
		logger.Info("stream completed")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		d.setState(StateCancelled)
		logger.Info("stream cancelled")
	default:
		d.failTurn(assistant.ID)
		d.setState(StateErrored)
		logger.Error("stream failed", "error", err)
	}
	return err
}

// stream opens the connection and pumps chunks until a terminal
// condition. It returns nil on natural completion.
func (d *Driver) stream(ctx context.Context, logger *slog.Logger, turnID int64, query string) error {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	resp, err := d.client.Post(ctx, d.baseURL+"/chat/stream", "application/json", bytes.NewReader(payload))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: backend returned %s", resp.Status)
	}

	splitter := sse.NewFrameSplitter()
	decoder := sse.NewDecoder(logger)
	buf := make([]byte, 4096)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, frame := range splitter.Feed(string(buf[:n])) {
				event := decoder.Decode(frame)
				if event.IsTerminal() {
					return nil
				}
				d.merge(turnID, event)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				d.drainResidual(splitter, decoder, turnID)
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("read stream: %w", readErr)
		}
	}
}

// drainResidual pushes a leftover unterminated frame through the
// decoder so a producer that forgot the final delimiter still gets its
// last frame counted.
func (d *Driver) drainResidual(splitter *sse.FrameSplitter, decoder *sse.Decoder, turnID int64) {
	frame, ok := splitter.Flush()
	if !ok {
		return
	}
	if event := decoder.Decode(frame); !event.IsTerminal() {
		d.merge(turnID, event)
	}
}

// merge folds one event into the assistant turn.
func (d *Driver) merge(turnID int64, event sse.Event) {
	d.store.Update(turnID, func(turn conversation.Turn) conversation.Turn {
		return conversation.Apply(turn, event)
	})
}

// failTurn replaces the assistant turn's content with the user-facing
// error message. Sources already received stay: a citation list that
// arrived intact is still valid even when the answer text was cut off.
func (d *Driver) failTurn(turnID int64) {
	d.store.Update(turnID, func(turn conversation.Turn) conversation.Turn {
		turn.Content = ErrorMessage
		turn.Errored = true
		return turn
	})
}

func (d *Driver) setState(state State) {
	d.mu.Lock()
	d.state = state
	d.mu.Unlock()
}
