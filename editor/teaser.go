package editor

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TeaserLength is the number of characters kept by ExtractTeaser.
const TeaserLength = 512

// ExtractTeaser derives a plain-text teaser from article HTML: the text of
// every paragraph joined by spaces, cut to TeaserLength characters with an
// ellipsis appended when cut.
func ExtractTeaser(content string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return ""
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			var sb strings.Builder
			textContent(n, &sb)
			parts = append(parts, sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	teaser := strings.Join(parts, " ")
	if utf8.RuneCountInString(teaser) <= TeaserLength {
		return teaser
	}
	return string([]rune(teaser)[:TeaserLength]) + "…"
}

func textContent(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textContent(c, sb)
	}
}
