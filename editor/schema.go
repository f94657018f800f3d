// Package editor holds the configuration of the rich-text editing widget:
// document schemas, the keymap, input rules and the server-side sanitizer
// that keeps stored HTML within what a schema can represent.
//
// The browser widget owns all editing behavior. This package only supplies
// the tables it is configured with, served as JSON by the API, and
// enforces the same schema on HTML submitted to the server.
package editor

import "sort"

// Attr is a node or mark attribute. A nil Default makes the attribute
// required.
type Attr struct {
	Name    string `json:"name"`
	Default any    `json:"default,omitempty"`
}

// NodeSpec describes a node type.
type NodeSpec struct {
	Name          string   `json:"name"`
	Content       string   `json:"content,omitempty"`
	Group         string   `json:"group,omitempty"`
	Inline        bool     `json:"inline,omitempty"`
	Defining      bool     `json:"defining,omitempty"`
	Draggable     bool     `json:"draggable,omitempty"`
	NotSelectable bool     `json:"notSelectable,omitempty"`
	NoMarks       bool     `json:"noMarks,omitempty"`
	Attrs         []Attr   `json:"attrs,omitempty"`
	ParseTags     []string `json:"parseTags,omitempty"`
	RenderTag     string   `json:"renderTag,omitempty"`
}

// MarkSpec describes a mark type.
type MarkSpec struct {
	Name         string   `json:"name"`
	Attrs        []Attr   `json:"attrs,omitempty"`
	NotInclusive bool     `json:"notInclusive,omitempty"`
	ParseTags    []string `json:"parseTags,omitempty"`
	RenderTag    string   `json:"renderTag,omitempty"`
}

// Schema is an ordered set of node and mark types. The first node is the
// top-level document node.
type Schema struct {
	Name  string     `json:"name"`
	Nodes []NodeSpec `json:"nodes"`
	Marks []MarkSpec `json:"marks,omitempty"`
}

// Node returns the node type called name.
func (s *Schema) Node(name string) (NodeSpec, bool) {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeSpec{}, false
}

// Mark returns the mark type called name.
func (s *Schema) Mark(name string) (MarkSpec, bool) {
	for _, m := range s.Marks {
		if m.Name == name {
			return m, true
		}
	}
	return MarkSpec{}, false
}

// HasNode reports whether the schema defines the node type.
func (s *Schema) HasNode(name string) bool {
	_, ok := s.Node(name)
	return ok
}

// HasMark reports whether the schema defines the mark type.
func (s *Schema) HasMark(name string) bool {
	_, ok := s.Mark(name)
	return ok
}

// Multiline reports whether documents are made of blocks rather than a
// single run of text.
func (s *Schema) Multiline() bool {
	return len(s.Nodes) > 0 && s.Nodes[0].Content == "block+"
}

// MaxHeadingLevel is the deepest heading level the schema can hold. Level n
// renders as <h(n+1)>, the page title being the only <h1>.
const MaxHeadingLevel = 3

var (
	linkMark = MarkSpec{
		Name:         "link",
		Attrs:        []Attr{{Name: "href"}, {Name: "title", Default: ""}},
		NotInclusive: true,
		ParseTags:    []string{"a[href]"},
		RenderTag:    "a",
	}
	emMark = MarkSpec{
		Name:      "em",
		ParseTags: []string{"i", "em", "style=font-style:italic"},
		RenderTag: "em",
	}
	strongMark = MarkSpec{
		Name:      "strong",
		ParseTags: []string{"strong", "b", "style=font-weight:bold"},
		RenderTag: "strong",
	}

	textNode      = NodeSpec{Name: "text", Group: "inline"}
	paragraphNode = NodeSpec{
		Name:      "paragraph",
		Content:   "inline*",
		Group:     "block",
		ParseTags: []string{"p"},
		RenderTag: "p",
	}
	hardBreakNode = NodeSpec{
		Name:          "hard_break",
		Inline:        true,
		Group:         "inline",
		NotSelectable: true,
		ParseTags:     []string{"br"},
		RenderTag:     "br",
	}
)

// Built-in schemas.
var (
	// SingleLinePlainText holds one line of unformatted text.
	SingleLinePlainText = &Schema{
		Name: "single_line_plain_text",
		Nodes: []NodeSpec{
			{Name: "doc", Content: "text*"},
			{Name: "text", Inline: true},
		},
	}

	// SingleLineRichText holds one line of text with links and emphasis.
	SingleLineRichText = &Schema{
		Name: "single_line_rich_text",
		Nodes: []NodeSpec{
			{Name: "doc", Content: "text*"},
			{Name: "text", Inline: true},
		},
		Marks: []MarkSpec{linkMark, emMark, strongMark},
	}

	// MultiLineRichText is the article body schema.
	MultiLineRichText = &Schema{
		Name: "multi_line_rich_text",
		Nodes: []NodeSpec{
			{Name: "doc", Content: "block+"},
			paragraphNode,
			{
				Name:      "ordered_list",
				Content:   "list_item+",
				Group:     "block",
				Attrs:     []Attr{{Name: "order", Default: 1}},
				ParseTags: []string{"ol"},
				RenderTag: "ol",
			},
			{
				Name:      "bullet_list",
				Content:   "list_item+",
				Group:     "block",
				ParseTags: []string{"ul"},
				RenderTag: "ul",
			},
			{
				Name:      "list_item",
				Content:   "paragraph+",
				Defining:  true,
				ParseTags: []string{"li"},
				RenderTag: "li",
			},
			{
				Name:      "blockquote",
				Content:   "paragraph+",
				Group:     "block",
				Defining:  true,
				ParseTags: []string{"blockquote"},
				RenderTag: "blockquote",
			},
			{
				Name:      "heading",
				Content:   "inline*",
				Group:     "block",
				Defining:  true,
				NoMarks:   true,
				Attrs:     []Attr{{Name: "level", Default: 1}},
				ParseTags: []string{"h2", "h3", "h4"},
			},
			textNode,
			{
				Name:      "image",
				Group:     "block",
				Draggable: true,
				Attrs:     []Attr{{Name: "src"}, {Name: "width"}, {Name: "height"}},
				ParseTags: []string{"img"},
				RenderTag: "img",
			},
			hardBreakNode,
		},
		Marks: []MarkSpec{linkMark, emMark, strongMark},
	}

	// MultiLinePlainText holds paragraphs and line breaks only.
	MultiLinePlainText = &Schema{
		Name: "multi_line_plain_text",
		Nodes: []NodeSpec{
			{Name: "doc", Content: "block+"},
			paragraphNode,
			textNode,
			hardBreakNode,
		},
	}
)

var schemas = map[string]*Schema{
	SingleLinePlainText.Name: SingleLinePlainText,
	SingleLineRichText.Name:  SingleLineRichText,
	MultiLineRichText.Name:   MultiLineRichText,
	MultiLinePlainText.Name:  MultiLinePlainText,
}

// Lookup returns the built-in schema with the given name.
func Lookup(name string) (*Schema, bool) {
	s, ok := schemas[name]
	return s, ok
}

// SchemaNames lists the built-in schemas in alphabetical order.
func SchemaNames() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
