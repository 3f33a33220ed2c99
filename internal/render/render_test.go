package render

import (
	"strings"
	"testing"
)

func TestRenderer_ToHTML(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		body     string
		contains []string
		excludes []string
	}{
		{
			name:     "empty body",
			body:     "",
			contains: nil,
		},
		{
			name:     "paragraph and emphasis",
			body:     "The **lessee** shall pay rent.",
			contains: []string{"<p>", "<strong>lessee</strong>"},
		},
		{
			name:     "heading gets an id",
			body:     "## Scope\n\ntext",
			contains: []string{`<h2 id="scope">Scope</h2>`},
		},
		{
			name:     "table extension",
			body:     "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "script stripped",
			body:     "text <script>alert(1)</script>",
			excludes: []string{"<script", "alert(1)"},
		},
		{
			name:     "event handler stripped",
			body:     `<a href="https://example.com" onclick="x()">link</a>`,
			contains: []string{`href="https://example.com"`},
			excludes: []string{"onclick"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ToHTML(tt.body)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			if tt.body == "" && got != "" {
				t.Errorf("ToHTML(\"\") = %q, want empty", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() = %q, want it to contain %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("ToHTML() = %q, must not contain %q", got, bad)
				}
			}
		})
	}
}

func TestStrictSanitizer(t *testing.T) {
	s := NewStrictHTMLSanitizer()
	if got := s.Sanitize("<b>Art. 1</b>"); got != "Art. 1" {
		t.Errorf("Sanitize() = %q, want %q", got, "Art. 1")
	}
}

func TestImporter_ToMarkdown(t *testing.T) {
	im := NewImporter()

	tests := []struct {
		name    string
		format  BodyFormat
		body    string
		want    string
		wantErr bool
	}{
		{name: "default is markdown", format: "", body: "# T", want: "# T"},
		{name: "text passthrough", format: FormatText, body: "plain", want: "plain"},
		{name: "html to markdown", format: FormatHTML, body: "<p>The <strong>lessee</strong></p>", want: "The **lessee**"},
		{name: "html is sanitized first", format: FormatHTML, body: "<p>ok</p><script>bad()</script>", want: "ok"},
		{name: "case insensitive format", format: "HTML", body: "<em>x</em>", want: "_x_"},
		{name: "unknown format", format: "docx", body: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := im.ToMarkdown(tt.format, tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToMarkdown() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && strings.TrimSpace(got) != tt.want {
				t.Errorf("ToMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImporter_Supports(t *testing.T) {
	im := NewImporter()
	for _, f := range []BodyFormat{FormatMarkdown, FormatHTML, FormatText} {
		if !im.Supports(f) {
			t.Errorf("Supports(%q) = false", f)
		}
	}
	if im.Supports("rtf") {
		t.Error("Supports(rtf) = true")
	}
}
