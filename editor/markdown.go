package editor

import "github.com/eringen/quillpress/markdown"

// FromMarkdown converts Markdown to article HTML that fits the
// MultiLineRichText schema.
func FromMarkdown(src string) (string, error) {
	out, err := markdown.ToHTML(src)
	if err != nil {
		return "", err
	}
	return Sanitize(MultiLineRichText, out), nil
}
