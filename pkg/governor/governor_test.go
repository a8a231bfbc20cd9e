package governor

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type fakeProbe struct {
	heap uint64
	free uint64
}

func (p *fakeProbe) HeapBytes() uint64 { return p.heap }
func (p *fakeProbe) FreeBytes() uint64 { return p.free }

func TestLevels(t *testing.T) {
	g := New(Limits{MaxDepth: 2})

	if g.Level() != -1 {
		t.Fatalf("initial Level() = %d, want -1", g.Level())
	}
	if got := g.EnterLevel(); got != 0 {
		t.Errorf("root EnterLevel() = %d, want 0", got)
	}
	g.EnterLevel()
	g.LeaveLevel()
	g.LeaveLevel()
	g.LeaveLevel() // extra leave is ignored
	if g.Level() != -1 {
		t.Errorf("Level() after unwinding = %d, want -1", g.Level())
	}
}

func TestDepthCeiling(t *testing.T) {
	g := New(Limits{MaxDepth: 2})

	for want := 0; want <= 2; want++ {
		g.EnterLevel()
		if !g.CheckContinue() {
			t.Fatalf("level %d should be allowed", want)
		}
	}

	g.EnterLevel() // level 3
	if g.CheckContinue() {
		t.Fatal("level 3 should exceed MaxDepth 2")
	}
	if g.Reason() != ReasonDepth {
		t.Errorf("Reason() = %v, want %v", g.Reason(), ReasonDepth)
	}

	// Not latched: once the level unwinds, siblings proceed.
	g.LeaveLevel()
	if !g.CheckContinue() {
		t.Error("CheckContinue should recover after LeaveLevel")
	}
	if g.Reason() != ReasonNone {
		t.Errorf("Reason() = %v, want none", g.Reason())
	}
}

func TestNegativeDepthKeepsHardCeiling(t *testing.T) {
	g := New(Limits{MaxDepth: -1})
	for i := 0; i < 1000; i++ {
		g.EnterLevel()
	}
	if !g.CheckContinue() {
		t.Fatal("negative MaxDepth should lift the configured ceiling")
	}
	for g.Level() <= HardMaxDepth {
		g.EnterLevel()
	}
	if g.CheckContinue() || g.Reason() != ReasonDepth {
		t.Errorf("level %d passed the hard ceiling", g.Level())
	}
}

func TestDepthCappedAtHardCeiling(t *testing.T) {
	g := New(Limits{MaxDepth: HardMaxDepth * 4})
	for g.Level() <= HardMaxDepth {
		g.EnterLevel()
	}
	if g.CheckContinue() {
		t.Error("MaxDepth above HardMaxDepth should be capped")
	}
}

func TestTimeCeiling(t *testing.T) {
	mock := clock.NewMock()
	g := New(Limits{MaxDepth: -1, MaxDuration: time.Second}, WithClock(mock))

	if !g.CheckContinue() {
		t.Fatal("fresh governor should continue")
	}
	mock.Add(500 * time.Millisecond)
	if !g.CheckContinue() {
		t.Fatal("half the budget should continue")
	}
	mock.Add(time.Second)
	if g.CheckContinue() {
		t.Fatal("exceeded budget should stop")
	}
	if g.Reason() != ReasonTime {
		t.Errorf("Reason() = %v, want %v", g.Reason(), ReasonTime)
	}
	if g.Elapsed() != 1500*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 1.5s", g.Elapsed())
	}
}

func TestMemoryBudget(t *testing.T) {
	probe := &fakeProbe{heap: 100, free: 1 << 30}
	g := New(Limits{MaxDepth: -1, MaxMemory: 50, SampleEvery: 1}, WithProbe(probe))

	if !g.CheckContinue() {
		t.Fatal("no growth should continue")
	}
	probe.heap = 200
	if g.CheckContinue() {
		t.Fatal("growth of 100 should exceed budget 50")
	}
	if g.Reason() != ReasonMemory {
		t.Errorf("Reason() = %v, want %v", g.Reason(), ReasonMemory)
	}
	if g.HeapGrowth() != 100 {
		t.Errorf("HeapGrowth() = %d, want 100", g.HeapGrowth())
	}

	probe.heap = 120
	if !g.CheckContinue() {
		t.Error("memory verdict should recover when the heap shrinks")
	}
}

func TestMinHeadroom(t *testing.T) {
	probe := &fakeProbe{heap: 0, free: 10 << 20}
	g := New(Limits{MaxDepth: -1, MinHeadroom: 5 << 20, SampleEvery: 1}, WithProbe(probe))

	if !g.CheckContinue() {
		t.Fatal("10MiB free should satisfy a 5MiB floor")
	}
	probe.free = 1 << 20
	if g.CheckContinue() {
		t.Fatal("1MiB free should violate a 5MiB floor")
	}
}

func TestSampling(t *testing.T) {
	probe := &fakeProbe{heap: 0, free: 1 << 30}
	g := New(Limits{MaxDepth: -1, MaxMemory: 10, SampleEvery: 4}, WithProbe(probe))

	probe.heap = 100
	for i := 1; i < 4; i++ {
		if !g.CheckContinue() {
			t.Fatalf("check %d used a fresh sample, want cached", i)
		}
	}
	if g.CheckContinue() {
		t.Fatal("fourth check should resample and stop")
	}
}

func TestRuntimeProbe(t *testing.T) {
	var p RuntimeProbe
	if p.HeapBytes() == 0 {
		t.Error("HeapBytes() should report a live heap")
	}
	if p.FreeBytes() == 0 {
		t.Error("FreeBytes() should report some free memory")
	}
}

func TestReasonString(t *testing.T) {
	tests := map[Reason]string{
		ReasonNone:   "none",
		ReasonDepth:  "nesting limit",
		ReasonTime:   "time limit",
		ReasonMemory: "memory limit",
	}
	for r, want := range tests {
		if got := r.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", r, got, want)
		}
	}
}
