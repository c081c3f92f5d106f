package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"numbered steps", "1. Boil water\n2. Add pasta", []string{"<ol>", "<li>Boil water</li>", "<li>Add pasta</li>"}},
		{"hard wraps", "Chop the onion\nFry until golden", []string{"Chop the onion<br"}},
		{"raw html escaped", "<script>alert(1)</script>\n\nStir", []string{"<!-- raw HTML omitted -->", "<p>Stir</p>"}},
		{"emphasis", "Serve **hot**", []string{"<strong>hot</strong>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ToHTML(%q) = %q, missing %q", tt.in, got, w)
				}
			}
			if strings.Contains(got, "<script>") {
				t.Errorf("raw script passed through: %q", got)
			}
		})
	}
}
