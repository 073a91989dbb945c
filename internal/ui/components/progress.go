// Package components renders small reusable pieces of terminal output.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutor/internal/ui/theme"
)

// Bar is a horizontal meter such as a concept's mastery or level progress.
type Bar struct {
	Label string
	Value int
	Max   int
	Width int
}

// View renders the label, the filled bar and "value/max".
func (b Bar) View() string {
	width := max(b.Width, 4)
	filled := 0
	if b.Max > 0 {
		filled = width * min(max(b.Value, 0), b.Max) / b.Max
	}

	var s strings.Builder
	if b.Label != "" {
		s.WriteString(theme.Body.Render(b.Label))
		s.WriteString("  ")
	}
	s.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("█", filled)))
	s.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", width-filled)))
	s.WriteString(theme.Dim.Render(fmt.Sprintf("  %d/%d", b.Value, b.Max)))
	return s.String()
}
