package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerAccumulatesConcurrentStages(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("analyze", time.Millisecond)
		}()
	}
	wg.Wait()
	idx := tm.Begin("aggregate")
	tm.End(idx, "3 files")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(rep.Phases))
	}
	if rep.Phases[0].Count != 8 || rep.Phases[0].DurationMs != 8 {
		t.Fatalf("analyze = %+v", rep.Phases[0])
	}
	if rep.TotalMs < 8 {
		t.Fatalf("total = %v", rep.TotalMs)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "x8") || !strings.Contains(sum, "# 3 files") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestTimerEmpty(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMs != 0 || rep.Phases != nil {
		t.Fatalf("empty report = %+v", rep)
	}
}
