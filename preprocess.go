package percept

import (
	"gonum.org/v1/gonum/floats"
)

// attrStats holds the normalization constants of one attribute, derived from
// its observed extremes: rng = (max-min)/2, base = (max+min)/2.
type attrStats struct {
	rng  float64
	base float64
}

// computeStats derives per-attribute stats over the non-missing values of
// the dataset. Attributes with no present values get rng = base = 0.
func computeStats(d *Dataset) []attrStats {
	stats := make([]attrStats, d.NumAttrs())

	col := make([]float64, 0, len(d.Instances))
	for i := range d.Attrs {
		col = col[:0]
		for _, inst := range d.Instances {
			if v := inst.Vals[i]; !IsMissing(v) {
				col = append(col, v)
			}
		}

		if len(col) == 0 {
			continue
		}

		max, min := floats.Max(col), floats.Min(col)
		stats[i] = attrStats{rng: (max - min) / 2, base: (max + min) / 2}
	}

	return stats
}

// normalizeValue maps v into [-1, 1] relative to the attribute's observed
// extremes. A degenerate range only recenters, to avoid division by zero.
func normalizeValue(v float64, s attrStats) float64 {
	if s.rng != 0 {
		return (v - s.base) / s.rng
	}

	return v - s.base
}

// normalizeAttrs destructively rewrites every numeric non-class attribute
// value of every instance. The caller is responsible for working on a copy.
func normalizeAttrs(d *Dataset, stats []attrStats) {
	for i, a := range d.Attrs {
		if i == d.ClassIndex || a.Kind != Numeric {
			continue
		}

		for _, inst := range d.Instances {
			if !IsMissing(inst.Vals[i]) {
				inst.Vals[i] = normalizeValue(inst.Vals[i], stats[i])
			}
		}
	}
}

// normalizeClassAttr destructively rewrites the (numeric) class values.
func normalizeClassAttr(d *Dataset, stats []attrStats) {
	i := d.ClassIndex
	for _, inst := range d.Instances {
		if !IsMissing(inst.Vals[i]) {
			inst.Vals[i] = normalizeValue(inst.Vals[i], stats[i])
		}
	}
}

// binaryFilter rewrites nominal non-class attributes into numeric 0/1
// indicators: binary nominals become a single indicator, wider ones one
// indicator per value. The filter is built once at training time and
// replayed on every instance handed to Predict.
type binaryFilter struct {
	srcAttrs []Attribute
	srcClass int

	attrs  []Attribute
	class  int
	offset []int
	active bool
}

func newBinaryFilter(attrs []Attribute, classIndex int) *binaryFilter {
	f := &binaryFilter{
		srcAttrs: attrs,
		srcClass: classIndex,
		offset:   make([]int, len(attrs)),
	}

	for i, a := range attrs {
		f.offset[i] = len(f.attrs)

		switch {
		case i == classIndex:
			f.class = len(f.attrs)
			f.attrs = append(f.attrs, a)
		case a.Kind == Numeric:
			f.attrs = append(f.attrs, a)
		case a.NumValues() <= 2:
			f.attrs = append(f.attrs, Attribute{Name: a.Name, Kind: Numeric})
			f.active = true
		default:
			for _, val := range a.Values {
				f.attrs = append(f.attrs, Attribute{Name: a.Name + "=" + val, Kind: Numeric})
			}
			f.active = true
		}
	}

	return f
}

// needed reports whether the filter would change anything.
func (f *binaryFilter) needed() bool {
	return f.active
}

// apply maps one instance's values into the filtered schema. A missing
// nominal value yields missing indicators.
func (f *binaryFilter) apply(vals []float64) []float64 {
	out := make([]float64, len(f.attrs))

	for i, a := range f.srcAttrs {
		at := f.offset[i]
		v := vals[i]

		switch {
		case i == f.srcClass || a.Kind == Numeric || a.NumValues() <= 2:
			out[at] = v
		case IsMissing(v):
			for j := 0; j < a.NumValues(); j++ {
				out[at+j] = Missing()
			}
		default:
			out[at+int(v)] = 1
		}
	}

	return out
}

// dataset returns the filtered form of the whole dataset.
func (f *binaryFilter) dataset(d *Dataset) *Dataset {
	out := &Dataset{Name: d.Name, Attrs: f.attrs, ClassIndex: f.class}
	out.Instances = make([]*Instance, len(d.Instances))
	for i, inst := range d.Instances {
		out.Instances[i] = &Instance{Vals: f.apply(inst.Vals), Weight: inst.Weight}
	}

	return out
}

// baseline is the trivial fallback predictor: the weighted class
// distribution for nominal classes, the weighted mean class value for
// numeric ones. It serves datasets with no predictive attributes and the
// all-non-positive case in Predict.
type baseline struct {
	numeric bool
	mean    float64
	dist    []float64
}

func newBaseline(d *Dataset) *baseline {
	b := &baseline{numeric: d.ClassIsNumeric()}

	if b.numeric {
		var sum, weight float64
		for _, inst := range d.Instances {
			if d.ClassMissing(inst) {
				continue
			}
			sum += inst.Vals[d.ClassIndex] * inst.Weight
			weight += inst.Weight
		}

		if weight != 0 {
			b.mean = sum / weight
		}
		return b
	}

	counts := make([]float64, d.NumClasses())
	for _, inst := range d.Instances {
		if d.ClassMissing(inst) {
			continue
		}
		counts[int(inst.Vals[d.ClassIndex])] += inst.Weight
	}

	if sum := floats.Sum(counts); sum > 0 {
		floats.Scale(1/sum, counts)
	} else {
		for i := range counts {
			counts[i] = 1 / float64(len(counts))
		}
	}

	b.dist = counts
	return b
}

func (b *baseline) distribution() []float64 {
	if b.numeric {
		return []float64{b.mean}
	}

	out := make([]float64, len(b.dist))
	copy(out, b.dist)
	return out
}
