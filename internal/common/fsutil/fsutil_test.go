package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	// Configure both env vars for cross-platform behavior of os.UserHomeDir.
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	p, err := ExpandHome("~")
	if err != nil || p != home {
		t.Fatalf("expected %q, got %q err=%v", home, p, err)
	}
	exp, err := ExpandHome("~/probe.yaml")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "probe.yaml" || filepath.Dir(exp) != home {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
	// another user's home is not ours to guess
	if got, err := ExpandHome("~bob/probe.yaml"); err != nil || got != "~bob/probe.yaml" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestFirstFile(t *testing.T) {
	d := t.TempDir()
	f := filepath.Join(d, "b.toml")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FirstFile("", filepath.Join(d, "a.yaml"), d, f); got != f {
		t.Fatalf("expected %q, got %q", f, got)
	}
	if got := FirstFile(filepath.Join(d, "none")); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if !PathExists(d) || PathExists(filepath.Join(d, "none")) {
		t.Fatalf("PathExists mismatch")
	}
	if IsFile(d) {
		t.Fatalf("directory reported as file")
	}
}
