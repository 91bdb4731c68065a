package cfg

import (
	"flag"
	"strings"
	"testing"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return &c, c.Validate()
}

func TestDefaultsAreValid(t *testing.T) {
	t.Parallel()

	c, err := parse(t)
	if err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if c.APIPort != 8080 {
		t.Errorf("default port = %d, want 8080", c.APIPort)
	}
	if c.DatabaseURL != "" {
		t.Errorf("default database url = %q, want empty (memory store)", c.DatabaseURL)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"valid overrides", []string{"-http-port=9000", "-admin-token=t", "-database-url=postgres://x"}, ""},
		{"port too high", []string{"-http-port=70000"}, "HTTP_PORT"},
		{"port zero", []string{"-http-port=0"}, "HTTP_PORT"},
		{"drain out of range", []string{"-drain-seconds=0"}, "DRAIN_SECONDS"},
		{"budget below drain", []string{"-drain-seconds=100", "-shutdown-budget-seconds=50"}, "SHUTDOWN_BUDGET_SECONDS"},
		{"claude key without model", []string{"-claude-api-key=k", "-claude-model="}, "CLAUDE_MODEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parse(t, tt.args...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
