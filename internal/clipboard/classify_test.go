package clipboard

import (
	"testing"

	"clipvault/pkg/types"
)

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.ItemType
	}{
		{"plain", "just some words", types.TypeText},
		{"empty", "", types.TypeText},
		{"whitespace only", "   \n", types.TypeText},
		{"hex color short", "#fff", types.TypeColor},
		{"hex color long", "#1A2B3C", types.TypeColor},
		{"hex color alpha", "#1a2b3c4d", types.TypeColor},
		{"not a color", "#1234", types.TypeText},
		{"email", "ada@example.com", types.TypeEmail},
		{"email trimmed", "  ada@example.com\n", types.TypeEmail},
		{"not email", "ada@example", types.TypeText},
		{"phone", "+1 (555) 123-4567", types.TypePhone},
		{"phone bare digits", "5551234567", types.TypePhone},
		{"not phone", "12", types.TypeText},
		{"url", "https://example.com/path?q=1", types.TypeURL},
		{"url http", "http://example.com", types.TypeURL},
		{"url no scheme", "example.com/path", types.TypeText},
		{"url with spaces", "https://example.com/a b", types.TypeText},
		{"json object", `{"a":1}`, types.TypeJSON},
		{"json array", `[1,2,3]`, types.TypeJSON},
		{"broken json", `{"a":`, types.TypeText},
		{"json-ish prose", "a {b} c", types.TypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyText(tt.text); got != tt.want {
				t.Errorf("ClassifyText(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}
