package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/adamwoolhether/pacer/config"
)

const limitsYAML = `
limiters:
  reject:
    limit: 3
    interval: 1h
  wait:
    limit: 2
    interval: 10ms
    wait: true
  stuck:
    limit: 1
    interval: 1h
    wait: true
`

func TestRunLimits(t *testing.T) {
	cfg, err := config.Parse([]byte(limitsYAML))
	if err != nil {
		t.Fatal(err)
	}

	results, err := runLimits(context.Background(), discard(), cfg, limitsOptions{timeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	exp := []limitsResult{
		{Name: "reject", Allowed: 3, Rejected: 3},
		{Name: "stuck", Allowed: 1, Abandoned: 1},
		{Name: "wait", Allowed: 3, Waited: 1},
	}
	if diff := cmp.Diff(exp, results, cmpopts.IgnoreFields(limitsResult{}, "Config")); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintLimits(t *testing.T) {
	var buf bytes.Buffer
	err := printLimits(&buf, []limitsResult{{Name: "api", Allowed: 10, Rejected: 2}})
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "LIMITER") || !strings.HasPrefix(lines[1], "api") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Pacer "+Version) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
