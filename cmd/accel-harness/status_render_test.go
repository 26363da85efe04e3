package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("fakes3", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "fakes3:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("pip", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Dependencies", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %d lines", len(lines))
	}
	if lines[0] != "== Dependencies ==" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("rule length mismatch: %q under %q", lines[1], lines[0])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
