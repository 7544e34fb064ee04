// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mevzuai/enerji-asistan/pkg/conversation"
)

// =============================================================================
// Test Doubles
// =============================================================================

// scriptedBody hands out one scripted chunk per Read call, then ends
// the stream with EOF or a scripted transport error.
type scriptedBody struct {
	chunks   []string
	finalErr error // nil means clean EOF
	next     int
	onDrain  func() // called once when the chunks run out
}

func (b *scriptedBody) Read(p []byte) (int, error) {
	if b.next >= len(b.chunks) {
		if b.onDrain != nil {
			b.onDrain()
			b.onDrain = nil
		}
		if b.finalErr != nil {
			return 0, b.finalErr
		}
		return 0, io.EOF
	}
	n := copy(p, b.chunks[b.next])
	b.next++
	return n, nil
}

func (b *scriptedBody) Close() error { return nil }

// blockingBody parks every Read until release is closed, then EOFs.
type blockingBody struct {
	release chan struct{}
}

func (b *blockingBody) Read([]byte) (int, error) {
	<-b.release
	return 0, io.EOF
}

func (b *blockingBody) Close() error { return nil }

// mockClient returns a canned response and records the request.
type mockClient struct {
	status int
	body   io.ReadCloser
	err    error

	gotURL  string
	gotBody string
}

func (m *mockClient) Post(_ context.Context, url, _ string, body io.Reader) (*http.Response, error) {
	m.gotURL = url
	if body != nil {
		raw, _ := io.ReadAll(body)
		m.gotBody = string(raw)
	}
	if m.err != nil {
		return nil, m.err
	}
	status := m.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       m.body,
	}, nil
}

func newDriverWith(client HTTPClient) (*Driver, *conversation.Store) {
	store := conversation.NewStore()
	driver := NewDriver(Config{BaseURL: "http://backend:8000", Client: client}, store)
	return driver, store
}

// assistantTurn returns the single assistant turn in the store.
func assistantTurn(t *testing.T, store *conversation.Store) conversation.Turn {
	t.Helper()
	for _, turn := range store.Turns() {
		if turn.Role == conversation.RoleAssistant {
			return turn
		}
	}
	t.Fatal("no assistant turn in store")
	return conversation.Turn{}
}

// =============================================================================
// Stream Driver Tests
// =============================================================================

func TestDriver_HappyPath(t *testing.T) {
	client := &mockClient{body: &scriptedBody{chunks: []string{
		"data: {\"token\":\"Lisans\"}\n\n",
		"data: {\"token\":\" başvurusu\"}\n\n",
		"data: {\"sources\":[{\"source_file\":\"epk.pdf\",\"article_number\":\"7\"}]}\n\n",
		"event: end\ndata: [DONE]\n\n",
	}}}
	driver, store := newDriverWith(client)

	err := driver.Submit(context.Background(), "Lisans başvurusu nasıl yapılır?")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, driver.State())

	assert.Equal(t, "http://backend:8000/chat/stream", client.gotURL)
	assert.JSONEq(t, `{"query":"Lisans başvurusu nasıl yapılır?"}`, client.gotBody)

	turns := store.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, conversation.RoleUser, turns[0].Role)
	assert.Equal(t, "Lisans başvurusu nasıl yapılır?", turns[0].Content)

	answer := assistantTurn(t, store)
	assert.Equal(t, "Lisans başvurusu", answer.Content)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "epk.pdf", answer.Sources[0].SourceFile)
	assert.False(t, answer.Errored)
}

func TestDriver_FrameSplitAcrossChunks(t *testing.T) {
	client := &mockClient{body: &scriptedBody{chunks: []string{
		"data: {\"tok",
		"en\":\"Mer",
		"haba\"}\n\ndata: {\"token\":\" dünya\"}\n",
		"\ndata: [DONE]\n\n",
	}}}
	driver, store := newDriverWith(client)

	require.NoError(t, driver.Submit(context.Background(), "selam"))
	assert.Equal(t, "Merhaba dünya", assistantTurn(t, store).Content)
}

func TestDriver_ResidualFlushedOnEOF(t *testing.T) {
	// Producer dropped the final delimiter; the last frame must still
	// be merged when the stream ends.
	client := &mockClient{body: &scriptedBody{chunks: []string{
		"data: {\"token\":\"Yarım\"}\n\ndata: {\"token\":\" kalan\"}",
	}}}
	driver, store := newDriverWith(client)

	require.NoError(t, driver.Submit(context.Background(), "soru"))
	assert.Equal(t, StateCompleted, driver.State())
	assert.Equal(t, "Yarım kalan", assistantTurn(t, store).Content)
}

func TestDriver_MalformedFrameIsSkipped(t *testing.T) {
	client := &mockClient{body: &scriptedBody{chunks: []string{
		"data: {\"token\":\"a\"}\n\n",
		"data: not-json\n\n",
		"data: {\"token\":\"b\"}\n\n",
		"data: [DONE]\n\n",
	}}}
	driver, store := newDriverWith(client)

	require.NoError(t, driver.Submit(context.Background(), "soru"))
	assert.Equal(t, "ab", assistantTurn(t, store).Content)
}

func TestDriver_NothingAfterTerminator(t *testing.T) {
	client := &mockClient{body: &scriptedBody{chunks: []string{
		"data: {\"token\":\"son\"}\n\ndata: [DONE]\n\ndata: {\"token\":\" fazlalık\"}\n\n",
	}}}
	driver, store := newDriverWith(client)

	require.NoError(t, driver.Submit(context.Background(), "soru"))
	assert.Equal(t, "son", assistantTurn(t, store).Content)
}

// -----------------------------------------------------------------------------
// Failure paths
// -----------------------------------------------------------------------------

func TestDriver_TransportFailureMidStream(t *testing.T) {
	client := &mockClient{body: &scriptedBody{
		chunks:   []string{"data: {\"token\":\"Me\"}\n\n"},
		finalErr: errors.New("connection reset by peer"),
	}}
	driver, store := newDriverWith(client)

	err := driver.Submit(context.Background(), "soru")
	require.Error(t, err)
	assert.Equal(t, StateErrored, driver.State())

	answer := assistantTurn(t, store)
	assert.Equal(t, ErrorMessage, answer.Content, "partial text must be replaced wholesale")
	assert.True(t, answer.Errored)
}

func TestDriver_TransportFailurePreservesSources(t *testing.T) {
	client := &mockClient{body: &scriptedBody{
		chunks: []string{
			"data: {\"token\":\"cevap\"}\n\n",
			"data: {\"sources\":[{\"source_file\":\"epk.pdf\",\"article_number\":\"4\"}]}\n\n",
		},
		finalErr: errors.New("connection reset by peer"),
	}}
	driver, store := newDriverWith(client)

	require.Error(t, driver.Submit(context.Background(), "soru"))

	answer := assistantTurn(t, store)
	assert.Equal(t, ErrorMessage, answer.Content)
	require.Len(t, answer.Sources, 1, "sources received intact survive the failure")
	assert.Equal(t, "epk.pdf", answer.Sources[0].SourceFile)
}

func TestDriver_ConnectFailure(t *testing.T) {
	client := &mockClient{err: errors.New("dial tcp: connection refused")}
	driver, store := newDriverWith(client)

	err := driver.Submit(context.Background(), "soru")
	require.Error(t, err)
	assert.Equal(t, StateErrored, driver.State())
	assert.Equal(t, ErrorMessage, assistantTurn(t, store).Content)
}

func TestDriver_Non200Status(t *testing.T) {
	client := &mockClient{
		status: http.StatusInternalServerError,
		body:   io.NopCloser(strings.NewReader("")),
	}
	driver, store := newDriverWith(client)

	err := driver.Submit(context.Background(), "soru")
	require.Error(t, err)
	assert.Equal(t, StateErrored, driver.State())
	assert.Equal(t, ErrorMessage, assistantTurn(t, store).Content)
}

func TestDriver_CancellationKeepsPartialAnswer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &mockClient{body: &scriptedBody{
		chunks:   []string{"data: {\"token\":\"Kısmi\"}\n\n"},
		finalErr: errors.New("read aborted"),
		onDrain:  cancel,
	}}
	driver, store := newDriverWith(client)

	err := driver.Submit(ctx, "soru")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, driver.State())

	answer := assistantTurn(t, store)
	assert.Equal(t, "Kısmi", answer.Content, "cancellation must not touch the partial answer")
	assert.False(t, answer.Errored)
}

// -----------------------------------------------------------------------------
// Submission guards
// -----------------------------------------------------------------------------

func TestDriver_RejectsEmptyQuery(t *testing.T) {
	driver, store := newDriverWith(&mockClient{})

	for _, query := range []string{"", "   ", "\n\t"} {
		err := driver.Submit(context.Background(), query)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
	assert.Zero(t, store.Len(), "rejected queries must not create turns")
	assert.Equal(t, StateIdle, driver.State())
}

func TestDriver_RejectsConcurrentSubmission(t *testing.T) {
	body := &blockingBody{release: make(chan struct{})}
	driver, _ := newDriverWith(&mockClient{body: body})

	first := make(chan error, 1)
	go func() { first <- driver.Submit(context.Background(), "ilk soru") }()

	require.Eventually(t, func() bool {
		return driver.State() == StateStreaming
	}, time.Second, time.Millisecond)

	err := driver.Submit(context.Background(), "ikinci soru")
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(body.release)
	require.NoError(t, <-first)
	assert.Equal(t, StateCompleted, driver.State())
}

func TestDriver_SubmitAllowedAfterTerminalState(t *testing.T) {
	client := &mockClient{body: &scriptedBody{chunks: []string{"data: [DONE]\n\n"}}}
	driver, store := newDriverWith(client)
	require.NoError(t, driver.Submit(context.Background(), "bir"))

	client.body = &scriptedBody{chunks: []string{"data: {\"token\":\"iki\"}\n\ndata: [DONE]\n\n"}}
	require.NoError(t, driver.Submit(context.Background(), "iki"))
	assert.Equal(t, 4, store.Len())
}

// -----------------------------------------------------------------------------
// Wiring
// -----------------------------------------------------------------------------

func TestDriver_TrimsTrailingSlashInBaseURL(t *testing.T) {
	client := &mockClient{body: &scriptedBody{chunks: []string{"data: [DONE]\n\n"}}}
	store := conversation.NewStore()
	driver := NewDriver(Config{BaseURL: "http://backend:8000/", Client: client}, store)

	require.NoError(t, driver.Submit(context.Background(), "soru"))
	assert.Equal(t, "http://backend:8000/chat/stream", client.gotURL)
}

func TestDriver_StoreNotificationsDuringStream(t *testing.T) {
	client := &mockClient{body: &scriptedBody{chunks: []string{
		"data: {\"token\":\"a\"}\n\ndata: [DONE]\n\n",
	}}}
	driver, store := newDriverWith(client)
	updates := store.Subscribe()

	require.NoError(t, driver.Submit(context.Background(), "soru"))
	select {
	case <-updates:
	default:
		t.Fatal("streaming produced no store notification")
	}
}
