package mask_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/parthubhe/DeepFakeStudio/internal/mask"
)

func TestAddPreservesOrderAndAllowsDuplicates(t *testing.T) {
	set := mask.NewPointSet()
	set.Add(mask.Positive, mask.Point{X: 1, Y: 2})
	set.Add(mask.Negative, mask.Point{X: 3, Y: 4})
	set.Add(mask.Positive, mask.Point{X: 1, Y: 2})

	if set.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", set.Len())
	}
	if len(set.Positive) != 2 || len(set.Negative) != 1 {
		t.Fatalf("unexpected split: %d positive, %d negative", len(set.Positive), len(set.Negative))
	}
	if set.Positive[0] != set.Positive[1] {
		t.Fatal("expected duplicate points to be retained verbatim")
	}
}

func TestEmptySetSerializesArraysNotNulls(t *testing.T) {
	data, err := json.Marshal(mask.NewPointSet())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Fatalf("expected empty arrays, got %s", data)
	}
}

func TestNormalizedReplacesNilSlices(t *testing.T) {
	var set mask.PointSet
	if err := json.Unmarshal([]byte(`{"positive":[{"x":5,"y":6}]}`), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	set = set.Normalized()
	if set.Negative == nil {
		t.Fatal("expected negative slice to be non-nil after Normalized")
	}
	if len(set.Positive) != 1 || set.Positive[0] != (mask.Point{X: 5, Y: 6}) {
		t.Fatalf("unexpected positive points: %+v", set.Positive)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	set := mask.NewPointSet()
	set.Add(mask.Positive, mask.Point{X: 10, Y: 20})

	clone := set.Clone()
	clone.Add(mask.Positive, mask.Point{X: 30, Y: 40})

	if set.Len() != 1 {
		t.Fatalf("clone mutation leaked into original: %+v", set)
	}
	if !set.Equal(set.Clone()) {
		t.Fatal("expected a fresh clone to compare equal")
	}
	if set.Equal(clone) {
		t.Fatal("expected diverged clone to compare unequal")
	}
}
