package services

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/levilina/marine-data-backend/internal/types"
)

func TestProgressTallyConcurrent(t *testing.T) {
	tally := &progressTally{}
	const workers = 50

	results := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tally.inc()
		}(i)
	}
	wg.Wait()

	// Every worker must observe its own post-increment value: the counts
	// form the dense sequence 1..workers with no repeats.
	sort.Ints(results)
	for i, n := range results {
		if n != i+1 {
			t.Fatalf("counts not dense at %d: %v", i, results)
		}
	}
}

func TestDedupeByVessel(t *testing.T) {
	v1 := uuid.New()
	v2 := uuid.New()
	in := []*types.Assessment{
		{VesselID: &v1, Name: "KHADIM"},
		{Classification: types.ClassificationUnknown, Name: "GHOST ONE"},
		{VesselID: &v2, Name: "YELEEN"},
		{VesselID: &v1, Name: "KHADIM II"},
		{Classification: types.ClassificationUnknown, Name: "GHOST TWO"},
	}

	out := dedupeByVessel(in)
	if len(out) != 4 {
		t.Fatalf("expected 4 assessments, got %d", len(out))
	}
	// Two registry rows resolving to the same vessel keep only the first.
	for _, a := range out {
		if a.Name == "KHADIM II" {
			t.Fatalf("duplicate vessel assessment survived: %+v", out)
		}
	}
	unknowns := 0
	for _, a := range out {
		if a.VesselID == nil {
			unknowns++
		}
	}
	if unknowns != 2 {
		t.Fatalf("expected both unmatched assessments kept, got %d", unknowns)
	}
}
