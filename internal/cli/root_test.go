package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	if cmd.Use != "majorcompass" {
		t.Fatalf("Use=%q", cmd.Use)
	}
	want := map[string]bool{"serve": false, "migrate": false, "take": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestTakeRequiresOwner(t *testing.T) {
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"take"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "owner") {
		t.Fatalf("expected missing owner error, got %v", err)
	}
}
