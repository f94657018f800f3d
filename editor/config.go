package editor

import "fmt"

// Config is everything the widget needs to set up an editor for one
// schema.
type Config struct {
	Schema     *Schema     `json:"schema"`
	Keymap     []Binding   `json:"keymap"`
	InputRules []InputRule `json:"inputRules"`
}

// ConfigFor builds the widget configuration for the named schema.
func ConfigFor(name string, mac bool) (Config, error) {
	s, ok := Lookup(name)
	if !ok {
		return Config{}, fmt.Errorf("editor: unknown schema %q", name)
	}
	return Config{
		Schema:     s,
		Keymap:     BuildKeymap(s, mac, nil),
		InputRules: BuildInputRules(s),
	}, nil
}
