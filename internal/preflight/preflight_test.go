package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chmatch/internal/config"
	"chmatch/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "input.xlsx")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckFileReadable("input", f); !r.Passed {
		t.Fatalf("expected readable file to pass, got %s", r.Detail)
	}
	if r := CheckFileReadable("input", filepath.Join(dir, "missing.xlsx")); r.Passed {
		t.Fatal("expected missing file to fail")
	}
	if r := CheckFileReadable("input", dir); r.Passed {
		t.Fatal("expected directory to fail")
	}
}

func TestCheckOutputPath(t *testing.T) {
	dir := t.TempDir()
	if r := CheckOutputPath("output", filepath.Join(dir, "nested", "deeper", "out.xlsx")); !r.Passed {
		t.Fatalf("expected creatable nested path to pass, got %s", r.Detail)
	}
	if r := CheckOutputPath("output", dir); r.Passed {
		t.Fatal("expected directory output path to fail")
	}
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckOutputPath("output", filepath.Join(blocker, "out.xlsx")); r.Passed {
		t.Fatal("expected file parent to fail")
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckRegistry(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		passed bool
	}{
		{"ok", nil, true},
		{"bad key", services.Wrap(services.ErrConfiguration, "registry", "ping", "api key rejected", nil), false},
		{"timeout", services.Wrap(services.ErrTimeout, "registry", "ping", "", context.DeadlineExceeded), false},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckRegistry(context.Background(), pingFunc(func(context.Context) error { return tt.err }))
			if r.Passed != tt.passed {
				t.Fatalf("Passed = %v, want %v (%s)", r.Passed, tt.passed, r.Detail)
			}
		})
	}
}

func TestRunAllAndErr(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = base
	cfg.Paths.LogDir = base

	input := filepath.Join(base, "in.xlsx")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	results := RunAll(context.Background(), &cfg, Paths{Input: input, Output: filepath.Join(base, "out.xlsx")}, nil)
	if len(results) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}

	results = RunAll(context.Background(), &cfg, Paths{Input: filepath.Join(base, "missing.xlsx")}, nil)
	err := Err(results)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
