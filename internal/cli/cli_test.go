package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"

	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/errors"
)

// quietConfig writes a config file that disables the memory limits, so that
// results do not depend on the machine running the tests.
func quietConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[limits]\nmax_memory_mb = 0\nmin_headroom_mb = 0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		data    string
		wantErr bool
	}{
		{"json object", "json", `{"a": [1, 2]}`, false},
		{"json invalid", "json", `{"a": `, true},
		{"toml table", "toml", "a = [1, 2]\n[b]\nc = true\n", false},
		{"toml invalid", "toml", "a = = 1", true},
		{"yaml unsupported", "yaml", "a: 1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decode(tt.format, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				m, ok := v.(map[string]any)
				if !ok || m["a"] == nil {
					t.Errorf("decode() = %#v", v)
				}
			}
		})
	}
}

func TestInputName(t *testing.T) {
	tests := map[string]string{
		"conf/app.json":       "app",
		"app.prod.toml":       "app_prod",
		"/tmp/2024-dump.json": "v2024_dump",
		"my service.json":     "my_service",
	}
	for in, want := range tests {
		if got := inputName(in); got != want {
			t.Errorf("inputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadInputMissing(t *testing.T) {
	_, err := loadInput(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("loadInput() error = %v, want NOT_FOUND", err)
	}
}

func TestLoadInputStdin(t *testing.T) {
	old := stdin
	stdin = strings.NewReader(`[1, 2, 3]`)
	t.Cleanup(func() { stdin = old })

	in, err := loadInput(stdinName)
	if err != nil {
		t.Fatal(err)
	}
	if in.name != "stdin" {
		t.Errorf("name = %q", in.name)
	}
	if xs, ok := in.value.([]any); !ok || len(xs) != 3 {
		t.Errorf("value = %#v", in.value)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, format, name string
		multiple             bool
		want                 string
	}{
		{"out.svg", "svg", "a", false, "out.svg"},
		{"out.svg", "svg", "a", true, "out_a.svg"},
		{"out.txt", "text", "b", true, "out_b.txt"},
		{"dumps/run", "json", "c", true, "dumps/run_c.json"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.format, tt.name, tt.multiple); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %v) = %q, want %q", tt.output, tt.format, tt.name, tt.multiple, got, tt.want)
		}
	}
}

func TestEngineOptsApply(t *testing.T) {
	var opts engineOpts
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.register(fs)
	if err := fs.Parse([]string{"--max-depth", "2", "--no-codegen", "--chunks", "none", "--getters"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	if err := opts.apply(fs, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Limits.MaxDepth != 2 || cfg.Codegen.Enabled || cfg.Chunks.Enabled || !cfg.Analysis.Getters {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Limits.Timeout != config.Default().Limits.Timeout {
		t.Error("unset flags must not override the config")
	}
}

func TestEngineOptsApplyInvalid(t *testing.T) {
	var opts engineOpts
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.register(fs)
	if err := fs.Parse([]string{"--chunks", "redis"}); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if err := opts.apply(fs, &cfg); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("apply() error = %v, want INVALID_CONFIG", err)
	}
}

func TestDumpCommandText(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "app.json", `{"name": "api", "ports": [80, 443]}`)

	out, err := execute(t, "--config", quietConfig(t), "dump", in)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"app: ", `"api"`, "= 443", `// app["name"]`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDumpCommandJSONFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"x": 1}`)
	b := writeFile(t, dir, "b.toml", "y = \"two\"\n")
	out := filepath.Join(dir, "out", "dump.json")

	if _, err := execute(t, "--config", quietConfig(t), "dump", a, b, "--format", "json", "-o", out); err != nil {
		t.Fatal(err)
	}
	for name, path := range map[string]string{"a": "dump_a.json", "b": "dump_b.json"} {
		data, err := os.ReadFile(filepath.Join(dir, "out", path))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !gjson.ValidBytes(data) {
			t.Errorf("%s: invalid JSON: %s", name, data)
		}
		if got := gjson.GetBytes(data, "name").String(); got != name {
			t.Errorf("%s: root name = %q", name, got)
		}
	}
}

func TestDumpCommandDemo(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out, err := execute(t, "--config", quietConfig(t), "dump", "--demo", "--chunks", "file")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"demo: ", "service: ", "↻", "demoRegistry", "Handler: ", "Events: "} {
		if !strings.Contains(out, want) {
			t.Errorf("demo output missing %q", want)
		}
	}
}

func TestDumpCommandErrors(t *testing.T) {
	cfg := quietConfig(t)
	if _, err := execute(t, "--config", cfg, "dump"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("no inputs: error = %v", err)
	}
	if _, err := execute(t, "--config", cfg, "dump", "--demo", "--format", "pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: error = %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spyglass", "config.toml")
	if _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", path, "config", "init"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("second init error = %v, want INVALID_PATH", err)
	}

	out, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Decode(strings.NewReader(out))
	if err != nil {
		t.Fatalf("shown config does not decode: %v\n%s", err, out)
	}
	if cfg != config.Default() {
		t.Errorf("round-tripped config = %+v", cfg)
	}
}

func TestCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out, err := execute(t, "--config", quietConfig(t), "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join(appName, chunkSubdir)) {
		t.Errorf("cache path = %q", out)
	}
}

func TestPagerModel(t *testing.T) {
	output := strings.Join([]string{
		"v: []int  // v",
		"  0: []int  // v[0]",
		"    0: int = 1  // v[0][0]",
		"  1: int = 2  // v[1]",
	}, "\n") + "\n"
	m := NewPagerModel("v", output, dump.Stats{Nodes: 4})
	if len(m.Lines) != 4 {
		t.Fatalf("lines = %d", len(m.Lines))
	}

	press := func(m PagerModel, key string) PagerModel {
		var msg tea.KeyMsg
		switch key {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		next, _ := m.Update(msg)
		return next.(PagerModel)
	}

	m = press(m, "down")
	if m.Cursor != 1 {
		t.Fatalf("cursor after down = %d", m.Cursor)
	}
	m = press(m, "n")
	if m.Cursor != 3 {
		t.Errorf("cursor after next sibling = %d, want 3", m.Cursor)
	}
	m = press(m, "G")
	m = press(m, "down")
	if m.Cursor != 3 {
		t.Errorf("cursor past end = %d", m.Cursor)
	}
	m = press(m, "g")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("cursor after top = %d/%d", m.Cursor, m.Offset)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Height: 6, Width: 80})
	m = next.(PagerModel)
	if m.Height != 3 {
		t.Errorf("height = %d", m.Height)
	}
	m = press(m, "G")
	if m.Offset != 1 {
		t.Errorf("offset at bottom = %d, want 1", m.Offset)
	}
	if view := m.View(); !strings.Contains(view, "[4/4]") || !strings.Contains(view, "4 nodes") {
		t.Errorf("view:\n%s", view)
	}
}
