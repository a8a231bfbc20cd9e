package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/spyglass/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if !cfg.Codegen.Enabled || !cfg.Chunks.Enabled {
		t.Error("codegen and chunking should be enabled by default")
	}
	if cfg.Limits.MaxMemory() != 256<<20 {
		t.Errorf("MaxMemory() = %d", cfg.Limits.MaxMemory())
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
[limits]
max_depth = 2
timeout = "250ms"

[codegen]
enabled = false

[analysis]
getters = true
`
	cfg, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Limits.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", cfg.Limits.MaxDepth)
	}
	if cfg.Limits.Timeout.Duration != 250*time.Millisecond {
		t.Errorf("Timeout = %v, want 250ms", cfg.Limits.Timeout)
	}
	if cfg.Codegen.Enabled {
		t.Error("codegen should be disabled")
	}
	if cfg.Codegen.MaxParamChars != 60 {
		t.Errorf("untouched MaxParamChars = %d, want default 60", cfg.Codegen.MaxParamChars)
	}
	if !cfg.Analysis.Getters || !cfg.Analysis.Methods {
		t.Error("getters should be set and methods should keep its default")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "[limits\nmax_depth = 1"},
		{"unknown key", "[limits]\nmax_dpeth = 1"},
		{"bad duration", "[limits]\ntimeout = \"soon\""},
		{"negative timeout", "[limits]\ntimeout = \"-1s\""},
		{"bad backend", "[chunks]\nbackend = \"s3\""},
		{"redis without addr", "[chunks]\nbackend = \"redis\""},
		{"mongo without uri", "[chunks]\nbackend = \"mongo\""},
		{"negative children", "[analysis]\nmax_children = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[chunks]\nbackend = \"file\"\ndir = \"/tmp/x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunks.Backend != BackendFile || cfg.Chunks.Dir != "/tmp/x" {
		t.Errorf("Chunks = %+v", cfg.Chunks)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) = %v, want NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Limits.MaxDepth = 7
	cfg.Limits.Timeout = Duration{time.Minute}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), `timeout = "1m0s"`) {
		t.Errorf("encoded config should carry the duration string:\n%s", buf.String())
	}

	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode()): %v", err)
	}
	if back.Limits.MaxDepth != 7 || back.Limits.Timeout.Duration != time.Minute {
		t.Errorf("round trip lost values: %+v", back.Limits)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/xdg", "spyglass", "config.toml") {
		t.Errorf("DefaultPath() = %q", p)
	}
}
