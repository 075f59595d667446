package main

import (
	"testing"
)

func TestRunCommandRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"run"})
	if err != nil {
		t.Fatalf("run command not registered: %v", err)
	}
	if cmd.Use != "run" {
		t.Errorf("found command %q, want run", cmd.Use)
	}
}

func TestRunCommandFlagDefaults(t *testing.T) {
	flags := runCmd.Flags()

	tests := []struct {
		name string
		want string
	}{
		{"config", "config/queries.yml"},
		{"settings", ""},
		{"out", "out"},
		{"dry-run", "false"},
		{"max-runtime", "0"},
	}

	for _, tt := range tests {
		f := flags.Lookup(tt.name)
		if f == nil {
			t.Errorf("flag --%s not registered", tt.name)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("flag --%s default = %q, want %q", tt.name, f.DefValue, tt.want)
		}
	}
}
