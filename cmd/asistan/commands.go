// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mevzuai/enerji-asistan/pkg/logging"
)

// version is stamped by the release build via -ldflags.
var version = "dev"

// =============================================================================
// Root Command
// =============================================================================

var (
	flagBackendURL string
	flagLogDir     string
	flagDebug      bool
)

var rootCmd = &cobra.Command{
	Use:   "asistan",
	Short: "Türkiye enerji mevzuatı asistanı",
	Long: "asistan is a terminal client for a retrieval-backed assistant on " +
		"Turkish energy market legislation. Answers stream in token by " +
		"token with the legislation articles they cite.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend-url",
		envOr("ASISTAN_BACKEND_URL", "http://127.0.0.1:8000"),
		"backend base URL (env: ASISTAN_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir",
		os.Getenv("ASISTAN_LOG_DIR"),
		"directory for JSON log files (env: ASISTAN_LOG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"log at debug level")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("asistan %s\n", version)
		},
	})
}

// envOr reads an environment variable with a fallback.
func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// newLogger builds the process logger from the persistent flags. Quiet
// suppresses stderr, which the interactive screen needs because stray
// log lines would corrupt it.
func newLogger(quiet bool) *logging.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  flagLogDir,
		Service: "asistan",
		Quiet:   quiet,
	})
}
