package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestBarView(t *testing.T) {
	tests := []struct {
		name       string
		bar        Bar
		wantFilled int
		wantSuffix string
	}{
		{"half", Bar{Value: 50, Max: 100, Width: 10}, 5, "50/100"},
		{"over max", Bar{Value: 150, Max: 100, Width: 10}, 10, "150/100"},
		{"negative", Bar{Value: -5, Max: 100, Width: 10}, 0, "-5/100"},
		{"no max", Bar{Value: 3, Width: 8}, 0, "3/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.bar.View()
			if got := strings.Count(out, "█"); got != tt.wantFilled {
				t.Errorf("filled = %d, want %d", got, tt.wantFilled)
			}
			if !strings.Contains(out, tt.wantSuffix) {
				t.Errorf("view %q missing %q", out, tt.wantSuffix)
			}
		})
	}
}

func TestBarView_Label(t *testing.T) {
	out := Bar{Label: "Fractions", Value: 1, Max: 4, Width: 4}.View()
	if !strings.Contains(out, "Fractions") {
		t.Errorf("label missing from %q", out)
	}
	if w := lipgloss.Width(out); w < len("Fractions")+4 {
		t.Errorf("width = %d, too narrow", w)
	}
}
