package cmd

import (
	"os"
	"strings"
	"testing"
)

func TestExecute_UnknownCommand(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"ragflow-assistant", "bogus"}

	err := Execute()
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v, want unknown command", err)
	}
}

func TestExecute_HelpAndVersion(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	for _, arg := range []string{"help", "--help", "-h", "version", "--version", "-v"} {
		os.Args = []string{"ragflow-assistant", arg}
		if err := Execute(); err != nil {
			t.Errorf("Execute(%q) = %v, want nil", arg, err)
		}
	}
}

func TestRunConfig_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"set-key without value", []string{"set-key"}},
		{"set-url without value", []string{"set-url"}},
		{"unknown subcommand", []string{"bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runConfig(tt.args); err == nil {
				t.Error("expected usage error")
			}
		})
	}
}
