// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package chat

import (
	"context"
	"io"
	"net/http"
)

// =============================================================================
// HTTP Client Abstraction
// =============================================================================

// HTTPClient abstracts the POST used to open a chat stream so tests can
// substitute scripted responses without a network.
type HTTPClient interface {
	// Post issues a POST request and returns the raw response. The
	// caller owns the response body. The request is bound to ctx, so
	// cancelling the context aborts both the dial and the body reads.
	Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error)
}

// defaultHTTPClient adapts a *http.Client to the HTTPClient interface.
type defaultHTTPClient struct {
	client *http.Client
}

// NewHTTPClient wraps client for use by the driver. A nil client uses
// http.DefaultClient. No timeout is set here: a chat stream legitimately
// stays open for as long as the answer takes, and cancellation is the
// caller's job through the context.
func NewHTTPClient(client *http.Client) HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &defaultHTTPClient{client: client}
}

func (c *defaultHTTPClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/event-stream")
	return c.client.Do(req)
}

var _ HTTPClient = (*defaultHTTPClient)(nil)
