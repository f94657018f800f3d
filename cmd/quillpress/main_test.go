package main

import (
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args     []string
		wantCmd  string
		wantArgs string
	}{
		{nil, "serve", ""},
		{[]string{}, "serve", ""},
		{[]string{"serve"}, "serve", ""},
		{[]string{"sessions", "prune"}, "sessions", "prune"},
		{[]string{"version"}, "version", ""},
	}
	for _, tt := range tests {
		cmd, args := parseCommand(tt.args)
		if cmd != tt.wantCmd || strings.Join(args, " ") != tt.wantArgs {
			t.Errorf("parseCommand(%q) = %q %q, want %q %q", tt.args, cmd, args, tt.wantCmd, tt.wantArgs)
		}
	}
}
