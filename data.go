package percept

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// AttrKind distinguishes the two supported attribute types.
type AttrKind int8

const (
	Numeric AttrKind = iota
	Nominal
)

// Attribute describes one column of a Dataset. Nominal attributes carry the
// list of their possible values; instances store the index into that list.
type Attribute struct {
	Name   string
	Kind   AttrKind
	Values []string
}

// NumValues returns the arity of a nominal attribute, and 0 for numeric ones.
func (a Attribute) NumValues() int {
	return len(a.Values)
}

// Missing is the in-memory representation of a missing attribute value.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether a stored value represents a missing one.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Instance is a single row of a Dataset. Nominal values are stored as the
// float64 form of their value index; missing values are NaN.
type Instance struct {
	Vals   []float64
	Weight float64
}

// Clone returns a deep copy of the instance.
func (inst *Instance) Clone() *Instance {
	vals := make([]float64, len(inst.Vals))
	copy(vals, inst.Vals)
	return &Instance{Vals: vals, Weight: inst.Weight}
}

// Dataset is the in-memory table that the engine trains on.
type Dataset struct {
	Name       string
	Attrs      []Attribute
	ClassIndex int
	Instances  []*Instance
}

// NewDataset validates the schema and returns an empty dataset. Instances
// are appended by the caller; each must have exactly len(attrs) values.
func NewDataset(name string, attrs []Attribute, classIndex int) (*Dataset, error) {
	if len(attrs) == 0 {
		return nil, errors.Errorf("dataset must have at least one attribute")
	} else if classIndex < 0 || classIndex >= len(attrs) {
		return nil, errors.Errorf("class index out of range: %d (have %d attributes)", classIndex, len(attrs))
	}

	for i, a := range attrs {
		if a.Kind == Nominal && len(a.Values) == 0 {
			return nil, errors.Errorf("nominal attribute %d (%q) has no values", i, a.Name)
		}
	}

	return &Dataset{Name: name, Attrs: attrs, ClassIndex: classIndex}, nil
}

// Add appends an instance with the given values and weight 1.
func (d *Dataset) Add(vals ...float64) error {
	if len(vals) != len(d.Attrs) {
		return errors.Errorf("instance has %d values, dataset has %d attributes", len(vals), len(d.Attrs))
	}

	v := make([]float64, len(vals))
	copy(v, vals)
	d.Instances = append(d.Instances, &Instance{Vals: v, Weight: 1})
	return nil
}

// NumAttrs returns the number of attributes, including the class.
func (d *Dataset) NumAttrs() int {
	return len(d.Attrs)
}

// ClassAttr returns the class attribute.
func (d *Dataset) ClassAttr() Attribute {
	return d.Attrs[d.ClassIndex]
}

// ClassIsNumeric reports whether the class attribute is numeric.
func (d *Dataset) ClassIsNumeric() bool {
	return d.ClassAttr().Kind == Numeric
}

// NumClasses returns the arity of a nominal class, or 1 for a numeric class.
func (d *Dataset) NumClasses() int {
	if d.ClassIsNumeric() {
		return 1
	}

	return d.ClassAttr().NumValues()
}

// ClassMissing reports whether the instance is missing its class value.
func (d *Dataset) ClassMissing(inst *Instance) bool {
	return IsMissing(inst.Vals[d.ClassIndex])
}

// SumWeights returns the total weight of the given instances.
func SumWeights(insts []*Instance) float64 {
	var sum float64
	for _, inst := range insts {
		sum += inst.Weight
	}

	return sum
}

// Clone returns a deep copy of the dataset, including all instances.
// Normalization is destructive, so anything that must survive a training run
// (e.g. the original data retained for divergence rebuilds) is cloned first.
func (d *Dataset) Clone() *Dataset {
	attrs := make([]Attribute, len(d.Attrs))
	copy(attrs, d.Attrs)
	for i := range attrs {
		if attrs[i].Values != nil {
			vs := make([]string, len(attrs[i].Values))
			copy(vs, attrs[i].Values)
			attrs[i].Values = vs
		}
	}

	c := &Dataset{Name: d.Name, Attrs: attrs, ClassIndex: d.ClassIndex}
	c.Instances = make([]*Instance, len(d.Instances))
	for i, inst := range d.Instances {
		c.Instances[i] = inst.Clone()
	}

	return c
}

// Shuffle permutes the instances with the provided RNG. Weight updates are
// applied per instance, so the final weights depend on instance order; the
// seeded shuffle is what makes training runs reproducible.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Instances), func(i, j int) {
		d.Instances[i], d.Instances[j] = d.Instances[j], d.Instances[i]
	})
}

// DeleteMissingClass removes all instances whose class value is missing.
func (d *Dataset) DeleteMissingClass() {
	kept := d.Instances[:0]
	for _, inst := range d.Instances {
		if !d.ClassMissing(inst) {
			kept = append(kept, inst)
		}
	}

	d.Instances = kept
}
