package editor

import "strconv"

// Binding maps a key to an editor command. Type names the node or mark
// type the command acts on, when it takes one.
type Binding struct {
	Key     string         `json:"key"`
	Command string         `json:"command"`
	Type    string         `json:"type,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// BuildKeymap returns the key bindings for a schema. Bindings whose node or
// mark type the schema lacks are left out. mac selects the Mac variants
// (Mod-Shift-z for redo, no Mod-y). remap renames keys: an entry mapping a
// key to the empty string drops its binding.
func BuildKeymap(s *Schema, mac bool, remap map[string]string) []Binding {
	var out []Binding
	bind := func(key string, b Binding) {
		if remap != nil {
			if to, ok := remap[key]; ok {
				if to == "" {
					return
				}
				key = to
			}
		}
		b.Key = key
		out = append(out, b)
	}

	bind("Mod-z", Binding{Command: "undo"})
	bind("Shift-Mod-z", Binding{Command: "redo"})
	bind("Backspace", Binding{Command: "undoInputRule"})
	if !mac {
		bind("Mod-y", Binding{Command: "redo"})
	}

	bind("Alt-ArrowUp", Binding{Command: "joinUp"})
	bind("Alt-ArrowDown", Binding{Command: "joinDown"})
	bind("Mod-BracketLeft", Binding{Command: "lift"})
	bind("Escape", Binding{Command: "selectParentNode"})

	if s.HasMark("strong") {
		bind("Mod-b", Binding{Command: "toggleMark", Type: "strong"})
		bind("Mod-B", Binding{Command: "toggleMark", Type: "strong"})
	}
	if s.HasMark("em") {
		bind("Mod-i", Binding{Command: "toggleMark", Type: "em"})
		bind("Mod-I", Binding{Command: "toggleMark", Type: "em"})
	}
	if s.HasMark("code") {
		bind("Mod-`", Binding{Command: "toggleMark", Type: "code"})
	}

	if s.HasNode("bullet_list") {
		bind("Shift-Ctrl-8", Binding{Command: "wrapInList", Type: "bullet_list"})
	}
	if s.HasNode("ordered_list") {
		bind("Shift-Ctrl-9", Binding{Command: "wrapInList", Type: "ordered_list"})
	}
	if s.HasNode("blockquote") {
		bind("Ctrl->", Binding{Command: "wrapIn", Type: "blockquote"})
	}
	if s.HasNode("hard_break") {
		br := Binding{Command: "insertHardBreak", Type: "hard_break"}
		bind("Mod-Enter", br)
		bind("Shift-Enter", br)
		if mac {
			bind("Ctrl-Enter", br)
		}
	}
	if s.HasNode("list_item") {
		bind("Enter", Binding{Command: "splitListItem", Type: "list_item"})
		bind("Mod-[", Binding{Command: "liftListItem", Type: "list_item"})
		bind("Mod-]", Binding{Command: "sinkListItem", Type: "list_item"})
	}
	if s.HasNode("paragraph") {
		bind("Shift-Ctrl-0", Binding{Command: "setBlockType", Type: "paragraph"})
	}
	if s.HasNode("code_block") {
		bind("Shift-Ctrl-\\", Binding{Command: "setBlockType", Type: "code_block"})
	}
	if s.HasNode("heading") {
		for level := 1; level <= MaxHeadingLevel; level++ {
			bind("Shift-Ctrl-"+strconv.Itoa(level), Binding{
				Command: "setBlockType",
				Type:    "heading",
				Attrs:   map[string]any{"level": level},
			})
		}
	}
	if s.HasNode("horizontal_rule") {
		bind("Mod-_", Binding{Command: "insertHorizontalRule", Type: "horizontal_rule"})
	}
	return out
}
