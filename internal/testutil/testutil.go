// Package testutil provides helper functions for testing ccgate components
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteReport writes a report.json fixture into a fresh temp directory
func WriteReport(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write report: %v", err)
	}
	return path
}

// FakeTool writes an executable /bin/sh script standing in for the per-method
// analyzer. The script sees the arguments "-l <language> <file>".
func FakeTool(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(dir, "fake-lizard")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("Failed to write fake tool: %v", err)
	}
	return path
}
