// Copyright (C) 2025 Mevzu AI (dev@mevzu.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/mevzuai/enerji-asistan/pkg/conversation"
	"github.com/mevzuai/enerji-asistan/pkg/sse"
)

// =============================================================================
// Styles
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	sourceChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	sourceHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Italic(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// fallbackSection labels a citation whose section name was not sent.
const fallbackSection = "İlgili Bölüm"

// =============================================================================
// Rendering
// =============================================================================

// renderTurn formats one turn for the transcript viewport.
func renderTurn(turn conversation.Turn, width int) string {
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	switch turn.Role {
	case conversation.RoleUser:
		b.WriteString(userLabelStyle.Render("Siz"))
	default:
		b.WriteString(assistantLabelStyle.Render("Asistan"))
	}
	b.WriteString("\n")

	content := turn.Content
	if turn.Errored {
		content = errorStyle.Render(content)
	}
	b.WriteString(wordwrap.String(content, width))

	if len(turn.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceHeaderStyle.Render("Kaynaklar"))
		b.WriteString("\n")
		b.WriteString(renderSourceChips(turn.Sources, width))
	}
	return b.String()
}

// renderSourceChips renders one line per citation: the document chip
// followed by the section it came from.
func renderSourceChips(sources []sse.Source, width int) string {
	lines := make([]string, 0, len(sources))
	for _, source := range sources {
		chip := sourceChipStyle.Render(sourceLabel(source))
		section := sourceHeaderStyle.Render(sectionLabel(source))
		line := chip + " " + section
		if lipgloss.Width(line) > width {
			line = chip
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// sourceLabel builds the chip text for one citation: the document name
// without its extension, plus the article number when present.
func sourceLabel(source sse.Source) string {
	name := strings.TrimSuffix(source.SourceFile, ".pdf")
	if name == "" {
		name = fallbackSection
	}
	if source.ArticleNumber == "" {
		return name
	}
	return fmt.Sprintf("%s • Md. %s", name, source.ArticleNumber)
}

// sectionLabel returns the citation's section, or the generic fallback.
func sectionLabel(source sse.Source) string {
	if source.Section == "" {
		return fallbackSection
	}
	return source.Section
}

// renderTranscript joins all turns with blank lines between them.
func renderTranscript(turns []conversation.Turn, width int) string {
	if len(turns) == 0 {
		return ""
	}
	parts := make([]string, 0, len(turns))
	for _, turn := range turns {
		parts = append(parts, renderTurn(turn, width))
	}
	return strings.Join(parts, "\n\n")
}
