package summarize

import "testing"

func TestCleanModelText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Resumen del fallo.", "Resumen del fallo."},
		{"fenced", "```\nResumen del fallo.\n```", "Resumen del fallo."},
		{"fenced with language", "```text\nResumen del fallo.\n```", "Resumen del fallo."},
		{"surrounding whitespace", "  Resumen del fallo.\n", "Resumen del fallo."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelText(tt.in); got != tt.want {
				t.Errorf("cleanModelText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
