// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mevzuai/enerji-asistan/pkg/chat"
	"github.com/mevzuai/enerji-asistan/pkg/conversation"
	"github.com/mevzuai/enerji-asistan/pkg/tui"
)

// =============================================================================
// chat — interactive session
// =============================================================================

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("chat needs a terminal; use `asistan ask` for scripted runs")
		}

		logger := newLogger(true)
		defer logger.Close()

		driver := chat.NewDriver(chat.Config{
			BaseURL: flagBackendURL,
			Logger:  logger.Slog(),
		}, conversation.NewStore())
		return tui.Run(driver)
	},
}

// =============================================================================
// ask — one-shot question
// =============================================================================

var askCmd = &cobra.Command{
	Use:   "ask <soru>",
	Short: "Ask one question and print the streamed answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(false)
		defer logger.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		store := conversation.NewStore()
		driver := chat.NewDriver(chat.Config{
			BaseURL: flagBackendURL,
			Logger:  logger.Slog(),
		}, store)

		return runAsk(ctx, driver, strings.Join(args, " "), os.Stdout)
	},
}

// runAsk streams one answer to out, printing each content delta as the
// store picks it up.
func runAsk(ctx context.Context, driver *chat.Driver, query string, out io.Writer) error {
	store := driver.Store()
	updates := store.Subscribe()

	done := make(chan error, 1)
	go func() { done <- driver.Submit(ctx, query) }()

	var printed int
	printDelta := func() {
		turn, ok := latestAssistant(store)
		if !ok || turn.Errored {
			return
		}
		if len(turn.Content) > printed {
			fmt.Fprint(out, turn.Content[printed:])
			printed = len(turn.Content)
		}
	}

	for {
		select {
		case <-updates:
			printDelta()
		case err := <-done:
			printDelta()
			fmt.Fprintln(out)
			if turn, ok := latestAssistant(store); ok {
				if turn.Errored {
					fmt.Fprintln(out, turn.Content)
				}
				printSources(out, turn)
			}
			return err
		}
	}
}

// latestAssistant returns the most recent assistant turn.
func latestAssistant(store *conversation.Store) (conversation.Turn, bool) {
	turns := store.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == conversation.RoleAssistant {
			return turns[i], true
		}
	}
	return conversation.Turn{}, false
}

// printSources lists the citations under the answer.
func printSources(out io.Writer, turn conversation.Turn) {
	if len(turn.Sources) == 0 {
		return
	}
	fmt.Fprintln(out, "\nKaynaklar:")
	for _, source := range turn.Sources {
		name := strings.TrimSuffix(source.SourceFile, ".pdf")
		if source.ArticleNumber != "" {
			fmt.Fprintf(out, "  - %s, Md. %s\n", name, source.ArticleNumber)
		} else {
			fmt.Fprintf(out, "  - %s\n", name)
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
}
