package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), err
}

func TestTable(t *testing.T) {
	out, err := runCommand(t, "table")
	if err != nil {
		t.Fatalf("table failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 256 {
		t.Fatalf("Expected 256 lines, got %d", len(lines))
	}
	if lines[0] != "  0\t0" {
		t.Errorf("Expected first entry 0, got %q", lines[0])
	}
	if lines[124] != "124\t1" {
		t.Errorf("Expected entry 124 to be 1, got %q", lines[124])
	}
}

func TestEncodeDecode(t *testing.T) {
	out, err := runCommand(t, "encode", "1", "0.5")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.HasPrefix(out, "1\t124\t1\n") {
		t.Errorf("Expected 1 to encode to 124, got %q", out)
	}

	out, err = runCommand(t, "decode", "0", "124")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out != "0\t0\n124\t1\n" {
		t.Errorf("Unexpected decode output %q", out)
	}

	if _, err := runCommand(t, "decode", "256"); err == nil {
		t.Error("Expected error for out-of-range byte")
	}
	if _, err := runCommand(t, "encode", "abc"); err == nil {
		t.Error("Expected error for non-numeric value")
	}
	if _, err := runCommand(t, "encode"); err == nil {
		t.Error("Expected error without values")
	}
}

func TestScore(t *testing.T) {
	out, err := runCommand(t, "score", "--num-terms", "4", "--freq", "4", "--overlap", "2", "--max-overlap", "4", "--sum-of-squares", "16", "--distance", "3")
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	for _, want := range []string{
		"length_norm\t0.5\n",
		"query_norm\t0.25\n",
		"tf\t2\n",
		"sloppy_freq\t0.25\n",
		"coord\t0.5\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestScoreWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranksim.yaml")
	data := []byte("similarity:\n  type: expression\n  expressions:\n    tf: \"freq\"\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	out, err := runCommand(t, "--config", path, "score", "--freq", "9")
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if !strings.Contains(out, "tf\t9\n") {
		t.Errorf("Expected linear tf from config, got %q", out)
	}
}

func TestExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.snap")

	if _, err := runCommand(t, "export", "--field", "body", "-o", path); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := runCommand(t, "import", "-i", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if _, err := runCommand(t, "export"); err == nil {
		t.Error("Expected error without --field")
	}
	if _, err := runCommand(t, "import"); err == nil {
		t.Error("Expected error for empty stdin")
	}
}

func TestUsageErrors(t *testing.T) {
	if _, err := runCommand(t); err == nil {
		t.Error("Expected error without a command")
	}
	if _, err := runCommand(t, "frobnicate"); err == nil {
		t.Error("Expected error for unknown command")
	}
	if _, err := runCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "table"); err == nil {
		t.Error("Expected error for missing config")
	}
	if _, err := runCommand(t, "--help"); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("Expected ErrHelp, got %v", err)
	}
}
