package percept

import (
	"math"
	"testing"
)

func TestComputeStats(t *testing.T) {
	data, err := NewDataset("stats", []Attribute{
		{Name: "x", Kind: Numeric},
		{Name: "y", Kind: Numeric},
		{Name: "class", Kind: Nominal, Values: []string{"a", "b"}},
	}, 2)
	if err != nil {
		t.Fatalf("creating dataset: %v", err)
	}
	data.Add(2, 10, 0)
	data.Add(6, Missing(), 1)
	data.Add(4, 20, 0)

	stats := computeStats(data)

	// x: min 2, max 6 -> rng 2, base 4
	if stats[0].rng != 2 || stats[0].base != 4 {
		t.Errorf("x stats = %+v, expected rng 2 base 4", stats[0])
	}
	// y ignores the missing value: min 10, max 20 -> rng 5, base 15
	if stats[1].rng != 5 || stats[1].base != 15 {
		t.Errorf("y stats = %+v, expected rng 5 base 15", stats[1])
	}
}

func TestNormalizeAttrs(t *testing.T) {
	data, err := NewDataset("norm", []Attribute{
		{Name: "x", Kind: Numeric},
		{Name: "fixed", Kind: Numeric},
		{Name: "class", Kind: Numeric},
	}, 2)
	if err != nil {
		t.Fatalf("creating dataset: %v", err)
	}
	data.Add(2, 7, 1)
	data.Add(6, 7, 2)

	stats := computeStats(data)
	normalizeAttrs(data, stats)

	// extremes map to -1 and 1
	if v := data.Instances[0].Vals[0]; v != -1 {
		t.Errorf("min normalized to %v, expected -1", v)
	}
	if v := data.Instances[1].Vals[0]; v != 1 {
		t.Errorf("max normalized to %v, expected 1", v)
	}

	// zero-range attribute only recenters, avoiding division by zero
	if v := data.Instances[0].Vals[1]; v != 0 {
		t.Errorf("zero-range value normalized to %v, expected 0", v)
	}

	// the class attribute is untouched
	if v := data.Instances[0].Vals[2]; v != 1 {
		t.Errorf("class value changed to %v", v)
	}
}

func TestBinaryFilter(t *testing.T) {
	attrs := []Attribute{
		{Name: "size", Kind: Numeric},
		{Name: "color", Kind: Nominal, Values: []string{"red", "green", "blue"}},
		{Name: "on", Kind: Nominal, Values: []string{"no", "yes"}},
		{Name: "class", Kind: Nominal, Values: []string{"x", "y"}},
	}

	f := newBinaryFilter(attrs, 3)
	if !f.needed() {
		t.Fatal("filter should be needed for nominal non-class attributes")
	}

	// size(1) + color(3 indicators) + on(1) + class(1)
	if len(f.attrs) != 6 {
		t.Fatalf("filtered schema has %d attributes, expected 6", len(f.attrs))
	}
	if f.class != 5 {
		t.Errorf("filtered class index = %d, expected 5", f.class)
	}

	out := f.apply([]float64{2.5, 1, 1, 0})
	want := []float64{2.5, 0, 1, 0, 1, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("filtered[%d] = %v, expected %v", i, out[i], want[i])
		}
	}

	// a missing wide nominal yields missing indicators
	out = f.apply([]float64{2.5, Missing(), 0, 1})
	for i := 1; i <= 3; i++ {
		if !IsMissing(out[i]) {
			t.Errorf("filtered[%d] = %v, expected missing", i, out[i])
		}
	}
}

func TestBinaryFilterNotNeeded(t *testing.T) {
	attrs := []Attribute{
		{Name: "x", Kind: Numeric},
		{Name: "class", Kind: Nominal, Values: []string{"a", "b"}},
	}

	if f := newBinaryFilter(attrs, 1); f.needed() {
		t.Error("filter should not be needed for all-numeric non-class attributes")
	}
}

func TestBaselineNominal(t *testing.T) {
	data, err := NewDataset("base", []Attribute{
		{Name: "class", Kind: Nominal, Values: []string{"a", "b"}},
	}, 0)
	if err != nil {
		t.Fatalf("creating dataset: %v", err)
	}
	data.Add(0)
	data.Add(0)
	data.Add(1)

	b := newBaseline(data)
	dist := b.distribution()
	if math.Abs(dist[0]-2.0/3) > 1e-12 || math.Abs(dist[1]-1.0/3) > 1e-12 {
		t.Errorf("baseline distribution = %v, expected [2/3 1/3]", dist)
	}
}

func TestBaselineNumericMean(t *testing.T) {
	data, err := NewDataset("base", []Attribute{
		{Name: "class", Kind: Numeric},
	}, 0)
	if err != nil {
		t.Fatalf("creating dataset: %v", err)
	}
	data.Add(2)
	data.Add(4)

	b := newBaseline(data)
	if out := b.distribution(); out[0] != 3 {
		t.Errorf("baseline mean = %v, expected 3", out[0])
	}
}
