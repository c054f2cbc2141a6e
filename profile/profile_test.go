package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Disabled(t *testing.T) {
	for _, p := range []Profiler{
		{},
		{Mode: "no-such-mode", Path: t.TempDir(), Quiet: true},
	} {
		stop := p.Start()
		if _, ok := stop.(ignore); !ok {
			t.Errorf("Profiler%+v.Start() = %T, want no-op", p, stop)
		}

		stop.Stop()
	}
}

func TestModes_Sorted(t *testing.T) {
	if modes := Modes(); !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v, not sorted", modes)
	}
}
