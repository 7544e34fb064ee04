// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mevzuai/enerji-asistan/services/devstub"
)

// =============================================================================
// serve-stub — canned backend for development
// =============================================================================

var (
	flagStubAddr       string
	flagStubTokenDelay time.Duration
)

var serveStubCmd = &cobra.Command{
	Use:   "serve-stub",
	Short: "Run a canned backend speaking the chat stream protocol",
	Long: "serve-stub answers from a small built-in corpus of Turkish energy " +
		"legislation topics. Point the chat client at it with " +
		"--backend-url when the real backend is unavailable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(false)
		defer logger.Close()

		server := devstub.NewServer(devstub.Config{
			TokenDelay: flagStubTokenDelay,
			Logger:     logger.Slog(),
		})
		return server.Run(flagStubAddr)
	},
}

func init() {
	serveStubCmd.Flags().StringVar(&flagStubAddr, "addr", "127.0.0.1:8000",
		"listen address")
	serveStubCmd.Flags().DurationVar(&flagStubTokenDelay, "token-delay", 30*time.Millisecond,
		"pause between token frames")
	rootCmd.AddCommand(serveStubCmd)
}
