package percept

import (
	"github.com/pkg/errors"

	"gonum.org/v1/gonum/floats"
)

// Predict runs the trained model on one instance. The instance must match
// the schema the classifier was trained on (pre-filtering); its class value
// may be missing. For nominal classes the result is the per-class output
// values normalized to sum to 1, falling back to the baseline predictor when
// every output is non-positive. For numeric classes it is the single
// (possibly rescaled) output value.
func (c *Classifier) Predict(inst *Instance) ([]float64, error) {
	if !c.initialized {
		return nil, errors.Errorf("classifier has not been trained")
	} else if c.trivial {
		return c.base.distribution(), nil
	}

	vals := inst.Vals
	if c.filter != nil {
		vals = c.filter.apply(vals)
	}
	if len(vals) != c.schema.NumAttrs() {
		return nil, errors.Errorf("instance has %d values, expected %d", len(vals), c.schema.NumAttrs())
	}

	// same preprocessing as at training time, replayed on a copy
	work := &Instance{Vals: make([]float64, len(vals)), Weight: inst.Weight}
	copy(work.Vals, vals)
	if c.opts.NormalizeAttrs {
		for i := range work.Vals {
			if i == c.schema.ClassIndex || c.schema.Attrs[i].Kind != Numeric || IsMissing(work.Vals[i]) {
				continue
			}
			work.Vals[i] = normalizeValue(work.Vals[i], c.stats[i])
		}
	}

	c.net.reset()
	c.net.cur = work
	c.net.forward()

	if c.schema.ClassIsNumeric() {
		v, _ := c.net.outputs[0].forwardValue(true)
		return []float64{v}, nil
	}

	dist := make([]float64, len(c.net.outputs))
	for _, out := range c.net.outputs {
		v, _ := out.forwardValue(true)
		if v < 0 {
			v = 0
		}
		dist[out.class] = v
	}

	sum := floats.Sum(dist)
	if sum <= 0 {
		return c.base.distribution(), nil
	}

	floats.Scale(1/sum, dist)
	return dist, nil
}
