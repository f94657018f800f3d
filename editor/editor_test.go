package editor

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeRichText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"marks", "<p>Hello <b>world</b></p>", "<p>Hello <strong>world</strong></p>"},
		{"italic alias", "<p><i>a</i> <em>b</em></p>", "<p><em>a</em> <em>b</em></p>"},
		{"script dropped", "<p>a</p><script>alert(1)</script>", "<p>a</p>"},
		{"style dropped", "<style>p{}</style><p>a</p>", "<p>a</p>"},
		{"loose text wrapped", "hello <em>there</em>", "<p>hello <em>there</em></p>"},
		{"headings clamped", "<h1>A</h1><h3>B</h3><h6>C</h6>", "<h2>A</h2><h3>B</h3><h4>C</h4>"},
		{"heading marks stripped", "<h2><b>A</b></h2>", "<h2>A</h2>"},
		{"list items", "<ul><li>one</li><li><p>two</p></li></ul>", "<ul><li><p>one</p></li><li><p>two</p></li></ul>"},
		{"ordered start", `<ol start="3"><li>x</li></ol>`, `<ol start="3"><li><p>x</p></li></ol>`},
		{"blockquote", "<blockquote>quote</blockquote>", "<blockquote><p>quote</p></blockquote>"},
		{"unsafe link unwrapped", `<a href="javascript:alert(1)">x</a>`, "<p>x</p>"},
		{"link attrs filtered", `<a href="https://e.com" onclick="x">y</a>`, `<p><a href="https://e.com">y</a></p>`},
		{"divs unwrapped", "<div>a</div><div>b</div>", "<p>a</p><p>b</p>"},
		{"entities kept escaped", "<p>1 &lt; 2 &amp; 3</p>", "<p>1 &lt; 2 &amp; 3</p>"},
		{"hard break", "<p>a<br>b</p>", "<p>a<br>b</p>"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(MultiLineRichText, tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeLiftsImagesOutOfParagraphs(t *testing.T) {
	got := Sanitize(MultiLineRichText, `<p>text<img src="/assets/a.png" width="10" onerror="x"></p>`)
	want := `<p>text</p><img src="/assets/a.png" width="10">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeDropsUnsafeImages(t *testing.T) {
	got := Sanitize(MultiLineRichText, `<img src="javascript:x"><p>a</p>`)
	if got != "<p>a</p>" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeMultiLinePlainText(t *testing.T) {
	got := Sanitize(MultiLinePlainText, "<h2>T</h2><p><b>x</b><br>y</p><img src=\"/a.png\">")
	want := "<p>T</p><p>x<br>y</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeMultiLinePlainTextFlattensLists(t *testing.T) {
	got := Sanitize(MultiLinePlainText, "<ul><li>a</li><li>b</li></ul>")
	if got != "<p>a</p><p>b</p>" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeSingleLine(t *testing.T) {
	if got := Sanitize(SingleLinePlainText, "<p>Hello <b>big</b></p><p>world</p>"); got != "Hello big world" {
		t.Errorf("plain: got %q", got)
	}
	if got := Sanitize(SingleLineRichText, "<p>a <em>b</em></p>"); got != "a <em>b</em>" {
		t.Errorf("rich: got %q", got)
	}
	if got := Sanitize(SingleLinePlainText, "a<br>b"); got != "a b" {
		t.Errorf("break: got %q", got)
	}
}

func TestExtractTeaser(t *testing.T) {
	got := ExtractTeaser("<p>One</p><ul><li><p>Two</p></li></ul><h2>No</h2><p>Th<em>ree</em></p>")
	if got != "One Two Three" {
		t.Errorf("ExtractTeaser = %q", got)
	}
}

func TestExtractTeaserTruncates(t *testing.T) {
	got := ExtractTeaser("<p>" + strings.Repeat("ä", 600) + "</p>")
	if n := utf8.RuneCountInString(got); n != TeaserLength+1 {
		t.Fatalf("teaser length = %d, want %d", n, TeaserLength+1)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
}

func TestExtractTeaserShortIsUnchanged(t *testing.T) {
	if got := ExtractTeaser("<p>short</p>"); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := ExtractTeaser("<h2>no paragraphs</h2>"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestFromMarkdown(t *testing.T) {
	got, err := FromMarkdown("# Title\n\nSome **bold** text...\n\n- a\n- b")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<h2>Title</h2>", "<strong>bold</strong>", "…", "<ul><li><p>a</p></li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func keys(bindings []Binding) map[string]Binding {
	out := make(map[string]Binding, len(bindings))
	for _, b := range bindings {
		out[b.Key] = b
	}
	return out
}

func TestBuildKeymapPlatform(t *testing.T) {
	pc := keys(BuildKeymap(MultiLineRichText, false, nil))
	if pc["Mod-y"].Command != "redo" {
		t.Errorf("expected Mod-y redo off Mac")
	}
	if _, ok := pc["Ctrl-Enter"]; ok {
		t.Errorf("Ctrl-Enter should only be bound on Mac")
	}

	mac := keys(BuildKeymap(MultiLineRichText, true, nil))
	if _, ok := mac["Mod-y"]; ok {
		t.Errorf("Mod-y should not be bound on Mac")
	}
	if mac["Ctrl-Enter"].Command != "insertHardBreak" {
		t.Errorf("expected Ctrl-Enter hard break on Mac")
	}
}

func TestBuildKeymapRemap(t *testing.T) {
	km := keys(BuildKeymap(MultiLineRichText, false, map[string]string{
		"Mod-z": "",
		"Mod-b": "Alt-b",
	}))
	if _, ok := km["Mod-z"]; ok {
		t.Errorf("Mod-z should be dropped")
	}
	if _, ok := km["Mod-b"]; ok {
		t.Errorf("Mod-b should be renamed")
	}
	if b := km["Alt-b"]; b.Command != "toggleMark" || b.Type != "strong" {
		t.Errorf("Alt-b = %+v", b)
	}
}

func TestBuildKeymapFollowsSchema(t *testing.T) {
	km := keys(BuildKeymap(SingleLinePlainText, false, nil))
	for _, b := range km {
		if b.Type != "" {
			t.Errorf("plain schema should not bind %s to %s", b.Key, b.Type)
		}
	}

	rich := keys(BuildKeymap(MultiLineRichText, false, nil))
	if b := rich["Shift-Ctrl-3"]; b.Type != "heading" || b.Attrs["level"] != 3 {
		t.Errorf("Shift-Ctrl-3 = %+v", b)
	}
	if _, ok := rich["Shift-Ctrl-4"]; ok {
		t.Errorf("heading levels beyond %d should not be bound", MaxHeadingLevel)
	}
	if rich["Enter"].Command != "splitListItem" {
		t.Errorf("Enter = %+v", rich["Enter"])
	}
}

func findRule(rules []InputRule, name string) (InputRule, bool) {
	for _, r := range rules {
		if r.Name == name {
			return r, true
		}
	}
	return InputRule{}, false
}

func TestBuildInputRules(t *testing.T) {
	rules := BuildInputRules(MultiLineRichText)

	heading, ok := findRule(rules, "heading")
	if !ok {
		t.Fatal("missing heading rule")
	}
	m, ok := heading.Match("## ")
	if !ok {
		t.Fatal("expected ## to match")
	}
	if heading.Attrs(m)["level"] != 2 {
		t.Errorf("level = %v", heading.Attrs(m)["level"])
	}
	if _, ok := heading.Match("#### "); ok {
		t.Errorf("#### should not match")
	}

	list, _ := findRule(rules, "orderedList")
	m, ok = list.Match("3. ")
	if !ok || list.Attrs(m)["order"] != 3 {
		t.Errorf("ordered list match = %v %v", m, ok)
	}

	dash, _ := findRule(rules, "emDash")
	if _, ok := dash.Match("foo--"); !ok {
		t.Errorf("expected -- to match")
	}

	open, _ := findRule(rules, "openDoubleQuote")
	if _, ok := open.Match(`say "`); !ok {
		t.Errorf("expected opening quote after space")
	}
	if _, ok := open.Match(`say"`); ok {
		t.Errorf("quote after a letter is a closing quote")
	}

	if _, ok := findRule(rules, "codeBlock"); ok {
		t.Errorf("schema has no code_block, rule should be absent")
	}
}

func TestBuildInputRulesPlainSchema(t *testing.T) {
	rules := BuildInputRules(SingleLinePlainText)
	if len(rules) != len(typographyRules) {
		t.Errorf("got %d rules, want only the %d typography rules", len(rules), len(typographyRules))
	}
}

func TestConfigFor(t *testing.T) {
	if _, err := ConfigFor("nope", false); err == nil {
		t.Fatal("expected error for unknown schema")
	}
	cfg, err := ConfigFor("multi_line_rich_text", true)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"name":"multi_line_rich_text"`, `"keymap":`, `"inputRules":`, `"parseTags":["h2","h3","h4"]`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("config JSON missing %s", want)
		}
	}
}

func TestSchemaNames(t *testing.T) {
	got := strings.Join(SchemaNames(), ",")
	want := "multi_line_plain_text,multi_line_rich_text,single_line_plain_text,single_line_rich_text"
	if got != want {
		t.Errorf("SchemaNames = %s", got)
	}
	for _, name := range SchemaNames() {
		s, _ := Lookup(name)
		if s.Multiline() != strings.HasPrefix(name, "multi") {
			t.Errorf("%s Multiline() = %v", name, s.Multiline())
		}
	}
}
