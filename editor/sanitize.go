package editor

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type kind int

const (
	kindDrop kind = iota
	kindUnwrap
	kindText
	kindBlock
	kindInline
	kindMark
)

// element is an HTML node classified against a schema.
type element struct {
	kind  kind
	name  string // node or mark type
	level int    // heading level
}

var droppedTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Title:    true,
	atom.Meta:     true,
	atom.Link:     true,
	atom.Svg:      true,
	atom.Math:     true,
	atom.Form:     true,
	atom.Input:    true,
	atom.Button:   true,
	atom.Select:   true,
	atom.Textarea: true,
}

var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Li:         true,
	atom.Blockquote: true,
	atom.Div:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Pre:        true,
	atom.Table:      true,
	atom.Tr:         true,
	atom.Hr:         true,
}

func classify(s *Schema, n *html.Node) element {
	switch n.Type {
	case html.TextNode:
		return element{kind: kindText}
	case html.ElementNode:
	default:
		return element{kind: kindDrop}
	}
	if droppedTags[n.DataAtom] {
		return element{kind: kindDrop}
	}

	var e element
	switch n.DataAtom {
	case atom.P:
		e = element{kind: kindBlock, name: "paragraph"}
	case atom.H1, atom.H2:
		e = element{kind: kindBlock, name: "heading", level: 1}
	case atom.H3:
		e = element{kind: kindBlock, name: "heading", level: 2}
	case atom.H4, atom.H5, atom.H6:
		e = element{kind: kindBlock, name: "heading", level: 3}
	case atom.Ul:
		e = element{kind: kindBlock, name: "bullet_list"}
	case atom.Ol:
		e = element{kind: kindBlock, name: "ordered_list"}
	case atom.Li:
		e = element{kind: kindBlock, name: "list_item"}
	case atom.Blockquote:
		e = element{kind: kindBlock, name: "blockquote"}
	case atom.Img:
		if !s.HasNode("image") {
			return element{kind: kindDrop}
		}
		return element{kind: kindBlock, name: "image"}
	case atom.Br:
		if !s.HasNode("hard_break") {
			return element{kind: kindText}
		}
		return element{kind: kindInline, name: "hard_break"}
	case atom.A:
		e = element{kind: kindMark, name: "link"}
	case atom.Em, atom.I:
		e = element{kind: kindMark, name: "em"}
	case atom.Strong, atom.B:
		e = element{kind: kindMark, name: "strong"}
	default:
		return element{kind: kindUnwrap}
	}

	switch e.kind {
	case kindBlock:
		if !s.HasNode(e.name) {
			return element{kind: kindUnwrap}
		}
	case kindMark:
		if !s.HasMark(e.name) {
			return element{kind: kindUnwrap}
		}
	}
	return e
}

// Sanitize parses src as an HTML fragment and re-serializes it keeping only
// what the schema can represent. Elements outside the schema are unwrapped,
// executable content is dropped, and loose inline content in block
// documents is wrapped into paragraphs.
func Sanitize(schema *Schema, src string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return ""
	}
	w := &writer{schema: schema}
	if schema.Multiline() {
		w.blocks(nodes, false)
	} else {
		w.inline(nodes, true)
		return strings.Join(strings.Fields(w.b.String()), " ")
	}
	return w.b.String()
}

type writer struct {
	schema  *Schema
	b       strings.Builder
	pending []*html.Node
}

// blocks writes nodes as block content. With paragraphsOnly set, as inside
// list items and quotes, other block types are flattened into paragraphs.
func (w *writer) blocks(nodes []*html.Node, paragraphsOnly bool) {
	saved := w.pending
	w.pending = nil
	w.blockRun(nodes, paragraphsOnly)
	w.flush()
	w.pending = saved
}

func (w *writer) blockRun(nodes []*html.Node, paragraphsOnly bool) {
	for _, n := range nodes {
		e := classify(w.schema, n)
		switch e.kind {
		case kindDrop:
		case kindUnwrap:
			if blockTags[n.DataAtom] {
				w.flush()
				w.blockRun(children(n), paragraphsOnly)
				w.flush()
				continue
			}
			w.blockRun(children(n), paragraphsOnly)
		case kindText, kindInline, kindMark:
			w.pending = append(w.pending, n)
		case kindBlock:
			switch {
			case e.name == "paragraph":
				w.flush()
				w.blockRun(children(n), paragraphsOnly)
				w.flush()
			case e.name == "image":
				w.flush()
				if !paragraphsOnly {
					w.image(n)
				}
			case paragraphsOnly:
				w.flush()
				w.blockRun(children(n), paragraphsOnly)
				w.flush()
			default:
				w.flush()
				w.block(n, e)
			}
		}
	}
}

// flush writes the pending inline run as a paragraph.
func (w *writer) flush() {
	if len(w.pending) == 0 {
		return
	}
	run := w.pending
	w.pending = nil

	sub := &writer{schema: w.schema}
	sub.inline(run, true)
	out := sub.b.String()
	if strings.TrimSpace(out) == "" {
		return
	}
	w.b.WriteString("<p>")
	w.b.WriteString(trimBreaks(out))
	w.b.WriteString("</p>")
}

func (w *writer) block(n *html.Node, e element) {
	switch e.name {
	case "heading":
		w.b.WriteString("<h" + strconv.Itoa(e.level+1) + ">")
		w.inline(children(n), false)
		w.b.WriteString("</h" + strconv.Itoa(e.level+1) + ">")
	case "bullet_list", "ordered_list":
		items := w.listItems(children(n))
		if len(items) == 0 {
			return
		}
		if e.name == "bullet_list" {
			w.b.WriteString("<ul>")
		} else if start := listStart(n); start != 1 {
			w.b.WriteString(`<ol start="` + strconv.Itoa(start) + `">`)
		} else {
			w.b.WriteString("<ol>")
		}
		for _, item := range items {
			w.b.WriteString("<li>")
			w.paragraphs(item)
			w.b.WriteString("</li>")
		}
		if e.name == "bullet_list" {
			w.b.WriteString("</ul>")
		} else {
			w.b.WriteString("</ol>")
		}
	case "list_item":
		// A stray item outside a list keeps its content as paragraphs.
		w.blockRun(children(n), false)
		w.flush()
	case "blockquote":
		w.b.WriteString("<blockquote>")
		w.paragraphs(children(n))
		w.b.WriteString("</blockquote>")
	}
}

// paragraphs writes content that must hold at least one paragraph.
func (w *writer) paragraphs(nodes []*html.Node) {
	before := w.b.Len()
	w.blocks(nodes, true)
	if w.b.Len() == before {
		w.b.WriteString("<p></p>")
	}
}

// listItems groups list children into items. Content outside an <li> joins
// an implicit item.
func (w *writer) listItems(nodes []*html.Node) [][]*html.Node {
	var items [][]*html.Node
	var loose []*html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li {
			if len(loose) > 0 {
				items = append(items, loose)
				loose = nil
			}
			items = append(items, children(n))
			continue
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		loose = append(loose, n)
	}
	if len(loose) > 0 {
		items = append(items, loose)
	}
	return items
}

func (w *writer) image(n *html.Node) {
	src, ok := safeURL(attr(n, "src"), false)
	if !ok {
		return
	}
	w.b.WriteString(`<img src="` + html.EscapeString(src) + `"`)
	for _, name := range []string{"width", "height"} {
		if v := strings.TrimSpace(attr(n, name)); isDigits(v) {
			w.b.WriteString(" " + name + `="` + v + `"`)
		}
	}
	w.b.WriteString(">")
}

// inline writes nodes as inline content. Marks are kept only when marks is
// set and the schema defines them.
func (w *writer) inline(nodes []*html.Node, marks bool) {
	for _, n := range nodes {
		e := classify(w.schema, n)
		switch e.kind {
		case kindDrop:
		case kindText:
			if n.Type == html.TextNode {
				w.b.WriteString(html.EscapeString(n.Data))
			} else {
				w.b.WriteString(" ")
			}
		case kindInline:
			w.b.WriteString("<br>")
		case kindMark:
			if !marks {
				w.inline(children(n), marks)
				continue
			}
			w.mark(n, e)
		default:
			w.inline(children(n), marks)
			if !w.schema.Multiline() && blockTags[n.DataAtom] {
				w.b.WriteString(" ")
			}
		}
	}
}

func (w *writer) mark(n *html.Node, e element) {
	switch e.name {
	case "link":
		href, ok := safeURL(attr(n, "href"), true)
		if !ok {
			w.inline(children(n), true)
			return
		}
		w.b.WriteString(`<a href="` + html.EscapeString(href) + `"`)
		if title := attr(n, "title"); title != "" {
			w.b.WriteString(` title="` + html.EscapeString(title) + `"`)
		}
		w.b.WriteString(">")
		w.inline(children(n), true)
		w.b.WriteString("</a>")
	case "em", "strong":
		w.b.WriteString("<" + e.name + ">")
		w.inline(children(n), true)
		w.b.WriteString("</" + e.name + ">")
	}
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func listStart(n *html.Node) int {
	start, err := strconv.Atoi(strings.TrimSpace(attr(n, "start")))
	if err != nil || start < 0 {
		return 1
	}
	return start
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// safeURL accepts relative URLs and absolute http(s) URLs. Links may also
// use mailto and tel.
func safeURL(raw string, link bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return raw, true
	case "mailto", "tel":
		return raw, link
	}
	return "", false
}

// trimBreaks drops whitespace and line breaks at the edges of a paragraph.
func trimBreaks(s string) string {
	for {
		t := strings.TrimSpace(s)
		t = strings.TrimPrefix(t, "<br>")
		t = strings.TrimSuffix(t, "<br>")
		if t == s {
			return t
		}
		s = t
	}
}
