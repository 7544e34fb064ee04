// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tui is the interactive terminal client. It renders the
// conversation store as a scrolling transcript and feeds typed queries
// to the stream driver; token-by-token growth shows up through the
// store's change notifications.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mevzuai/enerji-asistan/pkg/chat"
	"github.com/mevzuai/enerji-asistan/pkg/conversation"
)

// suggestions are shown while the conversation is still empty.
var suggestions = []string{
	"Lisans başvuru süreci nasıl işler?",
	"Önlisans süreleri nelerdir?",
	"Yeka yarışma şartları",
	"Teminat mektubu tutarları",
}

// =============================================================================
// Messages
// =============================================================================

// storeUpdateMsg signals that the conversation store changed.
type storeUpdateMsg struct{}

// streamFinishedMsg carries the outcome of a finished exchange.
type streamFinishedMsg struct {
	err error
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for the chat screen.
type Model struct {
	driver  *chat.Driver
	store   *conversation.Store
	updates <-chan struct{}

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	streaming bool
	cancel    context.CancelFunc

	width  int
	height int
	ready  bool
}

// NewModel builds the chat screen around an existing driver.
func NewModel(driver *chat.Driver) Model {
	input := textinput.New()
	input.Placeholder = "Enerji mevzuatı hakkında bir soru yazın..."
	input.Focus()
	input.CharLimit = 500

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	return Model{
		driver:  driver,
		store:   driver.Store(),
		updates: driver.Store().Subscribe(),
		input:   input,
		spinner: spin,
	}
}

// Init starts the store watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForUpdate())
}

// waitForUpdate blocks on the store's notification channel and turns
// the signal into a bubbletea message.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return storeUpdateMsg{}
	}
}

// submit runs the exchange on its own goroutine via tea's command
// runner; the transcript refreshes through store notifications while
// this command is still in flight.
func (m Model) submit(ctx context.Context, query string) tea.Cmd {
	return func() tea.Msg {
		return streamFinishedMsg{err: m.driver.Submit(ctx, query)}
	}
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - 4
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case tea.KeyEsc:
			if m.streaming && m.cancel != nil {
				m.cancel()
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyEnter:
			query := strings.TrimSpace(m.input.Value())
			if query == "" || m.streaming {
				return m, nil
			}
			m.input.Reset()
			m.streaming = true
			ctx, cancel := context.WithCancel(context.Background())
			m.cancel = cancel
			return m, tea.Batch(m.submit(ctx, query), m.spinner.Tick)
		}

	case storeUpdateMsg:
		m.refreshTranscript()
		return m, m.waitForUpdate()

	case streamFinishedMsg:
		m.streaming = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshTranscript re-renders the store into the viewport and keeps
// the latest turn visible.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.store.Turns(), m.viewport.Width))
	m.viewport.GotoBottom()
}

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "yükleniyor..."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("⚡ Enerji Mevzuatı Asistanı"))
	b.WriteString("\n")
	if m.store.Len() == 0 {
		b.WriteString(suggestionStyle.Render("Örnek sorular:"))
		b.WriteString("\n")
		for _, s := range suggestions {
			b.WriteString(suggestionStyle.Render("  • " + s))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	if m.streaming {
		b.WriteString(m.spinner.View())
		b.WriteString(" yanıt akıyor (iptal için esc)\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

// Run starts the interactive session and blocks until it ends.
func Run(driver *chat.Driver) error {
	program := tea.NewProgram(NewModel(driver), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
