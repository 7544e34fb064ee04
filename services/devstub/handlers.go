// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package devstub is a stand-in for the retrieval backend. It speaks
// the same streaming wire protocol from a canned corpus, so the client
// can be developed and demoed without the real service running.
package devstub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mevzuai/enerji-asistan/pkg/sse"
)

// =============================================================================
// Server
// =============================================================================

// Config configures the stub server.
type Config struct {
	// TokenDelay is the pause between token frames, to make streaming
	// visible in a terminal. Zero streams as fast as the socket allows.
	TokenDelay time.Duration

	// Logger receives request telemetry. Nil falls back to
	// slog.Default.
	Logger *slog.Logger
}

// Server serves the stub API.
type Server struct {
	config Config
	logger *slog.Logger
}

// NewServer creates a stub server.
func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{config: config, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleHealth)
	router.POST("/chat/stream", s.handleChatStream)
	return router
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("dev stub listening", "addr", addr)
	return s.Router().Run(addr)
}

// =============================================================================
// Handlers
// =============================================================================

// handleHealth reports service status.
//
// # Description
//
//	Mirrors the production health probe so clients can point at either
//	backend without branching.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "active",
		"message": "Enerji Mevzuatı Asistanı (dev stub)",
	})
}

// chatRequest is the body of a stream request.
type chatRequest struct {
	Query string `json:"query" binding:"required"`
}

// handleChatStream streams a canned answer token by token.
//
// # Description
//
//	Emits the protocol the client assembles: token frames, one sources
//	frame with the deduplicated citation list, then the terminator
//	frame. Every frame ends with a blank line.
//
// # Limitations
//
//   - Answers come from a fixed keyword corpus, not retrieval.
func (s *Server) handleChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.logger.Info("stream request", "query_length", len(req.Query))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	writer := c.Writer
	answer := lookup(req.Query)

	for _, token := range strings.SplitAfter(answer.answer, " ") {
		if token == "" {
			continue
		}
		if err := writeFrame(writer, map[string]string{"token": token}); err != nil {
			s.logger.Warn("client went away mid-stream", "error", err)
			return
		}
		if s.config.TokenDelay > 0 {
			time.Sleep(s.config.TokenDelay)
		}
	}

	if sources := dedupeSources(answer.sources); len(sources) > 0 {
		if err := writeFrame(writer, map[string][]sse.Source{"sources": sources}); err != nil {
			s.logger.Warn("client went away before sources", "error", err)
			return
		}
	}

	fmt.Fprint(writer, "event: end\ndata: [DONE]\n\n")
	writer.Flush()
}

// writeFrame sends one data frame and flushes it to the socket.
func writeFrame(writer gin.ResponseWriter, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "data: %s\n\n", encoded); err != nil {
		return err
	}
	writer.Flush()
	return nil
}
