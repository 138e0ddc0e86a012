package fileutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteLimitedWithinLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "a.bin")
	n, err := WriteLimited(path, strings.NewReader("12345"), 5)
	if err != nil {
		t.Fatalf("WriteLimited: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 bytes, got %d", n)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "12345" {
		t.Fatalf("unexpected content %q (%v)", got, err)
	}
}

func TestWriteLimitedRejectsOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	_, err := WriteLimited(path, bytes.NewReader(make([]byte, 11)), 10)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected partial file removed, stat err %v", statErr)
	}
}

func TestWriteLimitedWithoutCeiling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "any.bin")
	n, err := WriteLimited(path, bytes.NewReader(make([]byte, 4096)), 0)
	if err != nil || n != 4096 {
		t.Fatalf("unexpected result n=%d err=%v", n, err)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(file) {
		t.Fatal("expected file to exist")
	}
	if Exists(dir) || Exists("") || Exists(filepath.Join(dir, "missing")) {
		t.Fatal("expected false for directory, empty and missing paths")
	}
}
