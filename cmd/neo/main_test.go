package main

import "testing"

func TestParseBuildFlagsDefaults(t *testing.T) {
	f, err := parseBuildFlags([]string{"main.neo"})
	if err != nil {
		t.Fatalf("parseBuildFlags: %v", err)
	}
	if f.output != "a.out" || f.file != "main.neo" || f.nofold || f.verbose {
		t.Fatalf("unexpected defaults: %+v", f)
	}
}

func TestParseBuildFlagsAll(t *testing.T) {
	f, err := parseBuildFlags([]string{"-o", "out", "-d", "ast,ir", "-f", "no-fold", "-v", "main.neo"})
	if err != nil {
		t.Fatalf("parseBuildFlags: %v", err)
	}
	if f.output != "out" || !f.nofold || !f.verbose {
		t.Fatalf("unexpected flags: %+v", f)
	}
	if !wantsDump(f.dumps, "ast") || !wantsDump(f.dumps, "ir") {
		t.Fatalf("expected both ast and ir dumps, got %v", f.dumps)
	}
}

func TestParseBuildFlagsMissingFile(t *testing.T) {
	if _, err := parseBuildFlags([]string{"-o", "out"}); err == nil {
		t.Fatalf("expected an error when no source file is given")
	}
}
