package editor

import (
	"regexp"
	"strconv"
)

// Input rule kinds.
const (
	RuleReplace       = "replace"
	RuleWrapping      = "wrapping"
	RuleTextblockType = "textblockType"
)

// InputRule rewrites the text before the cursor when it matches Pattern.
// Patterns are written in the subset of regular-expression syntax shared by
// Go and JavaScript so the widget can compile them as served.
type InputRule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
	Replace string `json:"replace,omitempty"`
	Type    string `json:"type,omitempty"`
	// AttrFromGroup names the node attribute filled from the first capture
	// group: the ordered list start or the heading level.
	AttrFromGroup string `json:"attrFromGroup,omitempty"`
	// JoinAdjacent joins a new list with a directly preceding list of the
	// same type.
	JoinAdjacent bool `json:"joinAdjacent,omitempty"`

	re *regexp.Regexp
}

// Match reports whether the rule fires for text typed so far in a block and
// returns the submatches.
func (r InputRule) Match(text string) ([]string, bool) {
	re := r.re
	if re == nil {
		re = regexp.MustCompile(r.Pattern)
	}
	m := re.FindStringSubmatch(text)
	return m, m != nil
}

// Attrs returns the node attributes the rule sets for a match.
func (r InputRule) Attrs(match []string) map[string]any {
	if r.AttrFromGroup == "" || len(match) < 2 {
		return nil
	}
	switch r.AttrFromGroup {
	case "order":
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return nil
		}
		return map[string]any{"order": n}
	case "level":
		return map[string]any{"level": len(match[1])}
	}
	return nil
}

func rule(r InputRule) InputRule {
	r.re = regexp.MustCompile(r.Pattern)
	return r
}

var typographyRules = []InputRule{
	rule(InputRule{Name: "ellipsis", Pattern: `\.\.\.$`, Kind: RuleReplace, Replace: "…"}),
	rule(InputRule{Name: "emDash", Pattern: `--$`, Kind: RuleReplace, Replace: "—"}),
	rule(InputRule{Name: "openDoubleQuote", Pattern: `(?:^|[\s{\[(<'"‘“])(")$`, Kind: RuleReplace, Replace: "“"}),
	rule(InputRule{Name: "closeDoubleQuote", Pattern: `"$`, Kind: RuleReplace, Replace: "”"}),
	rule(InputRule{Name: "openSingleQuote", Pattern: `(?:^|[\s{\[(<'"‘“])(')$`, Kind: RuleReplace, Replace: "‘"}),
	rule(InputRule{Name: "closeSingleQuote", Pattern: `'$`, Kind: RuleReplace, Replace: "’"}),
}

// BuildInputRules returns the input rules for a schema: smart quotes,
// ellipsis and em dash, plus the markdown-like block shortcuts for the
// block types the schema defines. Headings go as deep as MaxHeadingLevel.
func BuildInputRules(s *Schema) []InputRule {
	rules := append([]InputRule(nil), typographyRules...)
	if s.HasNode("blockquote") {
		rules = append(rules, rule(InputRule{
			Name:    "blockquote",
			Pattern: `^\s*>\s$`,
			Kind:    RuleWrapping,
			Type:    "blockquote",
		}))
	}
	if s.HasNode("ordered_list") {
		rules = append(rules, rule(InputRule{
			Name:          "orderedList",
			Pattern:       `^(\d+)\.\s$`,
			Kind:          RuleWrapping,
			Type:          "ordered_list",
			AttrFromGroup: "order",
			JoinAdjacent:  true,
		}))
	}
	if s.HasNode("bullet_list") {
		rules = append(rules, rule(InputRule{
			Name:    "bulletList",
			Pattern: `^\s*([-+*])\s$`,
			Kind:    RuleWrapping,
			Type:    "bullet_list",
		}))
	}
	if s.HasNode("code_block") {
		rules = append(rules, rule(InputRule{
			Name:    "codeBlock",
			Pattern: "^```$",
			Kind:    RuleTextblockType,
			Type:    "code_block",
		}))
	}
	if s.HasNode("heading") {
		rules = append(rules, rule(InputRule{
			Name:          "heading",
			Pattern:       `^(#{1,` + strconv.Itoa(MaxHeadingLevel) + `})\s$`,
			Kind:          RuleTextblockType,
			Type:          "heading",
			AttrFromGroup: "level",
		}))
	}
	return rules
}
