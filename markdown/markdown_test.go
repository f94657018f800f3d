package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestToHTMLInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"~~gone~~", "<del>gone</del>"},
	}
	for _, tt := range tests {
		got, err := ToHTML(tt.input)
		if err != nil {
			t.Fatalf("ToHTML(%q): %v", tt.input, err)
		}
		if !strings.Contains(got, tt.expected) {
			t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestToHTMLBoldNotMatchedAsItalic(t *testing.T) {
	got, err := ToHTML("**bold**")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<em>") {
		t.Errorf("ToHTML(**bold**) = %q, should not contain <em>", got)
	}
}

func TestToHTMLShiftsHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Title", "<h2>Title</h2>"},
		{"## Section", "<h3>Section</h3>"},
		{"### Sub", "<h4>Sub</h4>"},
		{"###### Deep", "<h6>Deep</h6>"},
	}
	for _, tt := range tests {
		got, err := ToHTML(tt.input)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, tt.expected) {
			t.Errorf("ToHTML(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
	got, _ := ToHTML("# Title")
	if strings.Contains(got, "<h1") {
		t.Errorf("expected no <h1>, got %q", got)
	}
}

func TestToHTMLLists(t *testing.T) {
	got, err := ToHTML("- one\n- two\n\n1. first\n2. second")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<ul>", "<li>one</li>", "<ol>", "<li>second</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestToHTMLBlockquote(t *testing.T) {
	got, err := ToHTML("> quoted")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<blockquote>") || !strings.Contains(got, "quoted") {
		t.Errorf("unexpected blockquote output %q", got)
	}
}

func TestToHTMLHardWraps(t *testing.T) {
	got, err := ToHTML("line one\nline two")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<br>") {
		t.Errorf("expected a hard break, got %q", got)
	}
}

func TestToHTMLTypographer(t *testing.T) {
	got, err := ToHTML("Wait... -- \"quoted\"")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"&hellip;", "&ldquo;", "&rdquo;"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestToHTMLOmitsRawHTML(t *testing.T) {
	got, err := ToHTML("<script>alert(1)</script>\n\nhello")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML leaked into output: %q", got)
	}
}

func TestToHTMLDropsJavascriptLinks(t *testing.T) {
	got, err := ToHTML("[x](javascript:alert(1))")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("dangerous href kept: %q", got)
	}
}

func TestToHTMLLinks(t *testing.T) {
	got, err := ToHTML("[home](/blog) and https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `<a href="/blog">home</a>`) {
		t.Errorf("missing relative link in %q", got)
	}
	if !strings.Contains(got, `<a href="https://example.com">https://example.com</a>`) {
		t.Errorf("missing linkified URL in %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**hi**").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<strong>hi</strong>") {
		t.Errorf("component output = %q", buf.String())
	}
}

func TestToHTMLEmpty(t *testing.T) {
	got, err := ToHTML("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("ToHTML(\"\") = %q, want empty", got)
	}
}
