package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "dev", "none", "unknown"
	fill(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})
	if Version != "v0.3.1" || Commit != "abc123" || Date != "2026-01-02T03:04:05Z" {
		t.Errorf("fill() = %q %q %q", Version, Commit, Date)
	}
}

func TestFillKeepsLdflags(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "v1.0.0", "fff", "today"
	fill(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})
	if Version != "v1.0.0" || Commit != "fff" || Date != "today" {
		t.Errorf("ldflags values overwritten: %q %q %q", Version, Commit, Date)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.Contains(String(), "commit: ") {
		t.Errorf("String() = %q", String())
	}
}
