package percept

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Halving below this during divergence recovery is treated as exhausted.
const minLearningRate = 1e-8

// Options holds the tunable hyperparameters of a training run.
type Options struct {
	LearningRate   float64
	Momentum       float64
	EpochLimit     int
	ValSizePercent int
	DriftThreshold int
	Seed           int64

	// HiddenLayers is the hidden-layer specification mini-language; see
	// resolveHiddenSpec.
	HiddenLayers string

	NormalizeAttrs  bool
	NormalizeClass  bool
	Decay           bool
	Reset           bool
	NominalToBinary bool
}

func defaultOptions() Options {
	return Options{
		LearningRate:    0.3,
		Momentum:        0.2,
		EpochLimit:      500,
		ValSizePercent:  0,
		DriftThreshold:  20,
		HiddenLayers:    "a",
		NormalizeAttrs:  true,
		NormalizeClass:  true,
		Reset:           true,
		NominalToBinary: true,
	}
}

// trainingState is the per-run bookkeeping, created at initialization and
// mutated every epoch.
type trainingState struct {
	epoch      int
	trainErr   float64
	bestValErr float64
	drift      int
	accepted   bool
}

// Classifier is the feed-forward network classifier. It is built by New,
// configured through setters or Configure, and driven either by Train or by
// the incremental Initialize / StepEpoch / Finish protocol.
type Classifier struct {
	opts Options
	ctl  *Controller
	rng  *rand.Rand

	net    *Network
	schema *Dataset // processed training data; instances dropped by Finish
	train  []*Instance
	val    []*Instance

	totalWeight    float64
	totalValWeight float64

	filter *binaryFilter
	stats  []attrStats

	// original unmodified dataset, retained for divergence-triggered
	// rebuilds when Options.Reset is on
	original *Dataset

	base        *baseline
	trivial     bool
	initialized bool

	st trainingState
}

// New returns a Classifier with default options: learning rate 0.3, momentum
// 0.2, 500 epochs, hidden layers "a", no validation partition, attribute and
// class normalization on, divergence recovery on.
func New() *Classifier {
	return &Classifier{opts: defaultOptions(), ctl: newController()}
}

// Configure replaces the full option set. It is refused mid-run unless the
// loop is suspended.
func (c *Classifier) Configure(opts Options) error {
	if err := c.ctl.editable(); err != nil {
		return err
	}

	if opts.LearningRate <= 0 {
		return errors.Errorf("learning rate must be positive (%v)", opts.LearningRate)
	} else if opts.Momentum < 0 || opts.Momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1) (%v)", opts.Momentum)
	} else if opts.EpochLimit < 1 {
		return errors.Errorf("epoch limit must be >= 1 (%d)", opts.EpochLimit)
	} else if opts.ValSizePercent < 0 || opts.ValSizePercent > 99 {
		return errors.Errorf("validation size percent must be in [0, 99] (%d)", opts.ValSizePercent)
	} else if opts.DriftThreshold < 1 {
		return errors.Errorf("drift threshold must be >= 1 (%d)", opts.DriftThreshold)
	} else if !validHiddenSpec(opts.HiddenLayers) {
		return errors.Errorf("invalid hidden-layer specification %q", opts.HiddenLayers)
	}

	c.opts = opts
	return nil
}

// Options returns a copy of the current option set.
func (c *Classifier) Options() Options {
	return c.opts
}

// SetLearningRate changes the learning rate, taking effect at the next epoch
// boundary. Legal only while suspended (or before/after a run).
func (c *Classifier) SetLearningRate(rate float64) error {
	if err := c.ctl.editable(); err != nil {
		return err
	} else if rate <= 0 {
		return errors.Errorf("learning rate must be positive (%v)", rate)
	}

	c.opts.LearningRate = rate
	return nil
}

// SetMomentum changes the momentum term, taking effect at the next epoch
// boundary.
func (c *Classifier) SetMomentum(momentum float64) error {
	if err := c.ctl.editable(); err != nil {
		return err
	} else if momentum < 0 || momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1) (%v)", momentum)
	}

	c.opts.Momentum = momentum
	return nil
}

// SetEpochLimit changes the epoch limit, taking effect at the next epoch
// boundary.
func (c *Classifier) SetEpochLimit(limit int) error {
	if err := c.ctl.editable(); err != nil {
		return err
	} else if limit < 1 {
		return errors.Errorf("epoch limit must be >= 1 (%d)", limit)
	}

	c.opts.EpochLimit = limit
	return nil
}

// SetHiddenLayers changes the hidden-layer specification used by the next
// Initialize. A malformed specification is rejected silently and the
// previously accepted one retained.
func (c *Classifier) SetHiddenLayers(spec string) error {
	if err := c.ctl.editable(); err != nil {
		return err
	}

	if validHiddenSpec(spec) {
		c.opts.HiddenLayers = spec
	}
	return nil
}

// Pause requests that the loop park at the next epoch boundary.
func (c *Classifier) Pause() { c.ctl.Pause() }

// Resume releases a parked loop.
func (c *Classifier) Resume() { c.ctl.Resume() }

// Cancel requests cooperative cancellation of the run.
func (c *Classifier) Cancel() { c.ctl.Cancel() }

// Suspended reports whether the loop is parked between epochs.
func (c *Classifier) Suspended() bool { return c.ctl.Suspended() }

// Accept marks the current weights as final, entering the accepted terminal
// state early. Legal only while suspended (or not running).
func (c *Classifier) Accept() error {
	if err := c.ctl.editable(); err != nil {
		return err
	}

	c.st.accepted = true
	return nil
}

// Epoch returns the number of completed epochs of the current run.
func (c *Classifier) Epoch() int { return c.st.epoch }

// TrainError returns the aggregate training error of the last epoch.
func (c *Classifier) TrainError() float64 { return c.st.trainErr }

// Accepted reports whether the run has reached the accepted terminal state.
func (c *Classifier) Accepted() bool { return c.st.accepted }

func checkCapabilities(data *Dataset) error {
	if data == nil {
		return CapabilityError{"no dataset"}
	} else if len(data.Attrs) == 0 {
		return CapabilityError{"no attributes"}
	} else if data.ClassIndex < 0 || data.ClassIndex >= len(data.Attrs) {
		return CapabilityError{"class index out of range"}
	} else if len(data.Instances) == 0 {
		return CapabilityError{"no instances"}
	}

	for _, a := range data.Attrs {
		if a.Kind != Numeric && a.Kind != Nominal {
			return CapabilityError{"unsupported attribute type"}
		} else if a.Kind == Nominal && a.NumValues() == 0 {
			return CapabilityError{"nominal attribute " + a.Name + " has no values"}
		}
	}

	if !data.ClassIsNumeric() && data.NumClasses() < 2 {
		return CapabilityError{"nominal class must have at least two values"}
	}
	return nil
}

// Initialize validates the dataset, preprocesses it, splits off the
// validation prefix, and builds the network. It must be called before
// StepEpoch. Datasets with no predictive attributes switch the classifier
// permanently to the trivial baseline predictor.
func (c *Classifier) Initialize(data *Dataset) error {
	if err := checkCapabilities(data); err != nil {
		return err
	}
	if err := c.ctl.cancelled(); err != nil {
		return err
	}

	c.original = nil
	if c.opts.Reset {
		c.original = data.Clone()
	}

	work := data.Clone()
	work.DeleteMissingClass()
	if len(work.Instances) == 0 {
		return CapabilityError{"no instances with a class value"}
	}

	c.st = trainingState{bestValErr: math.Inf(1)}
	c.trivial = false
	c.base = newBaseline(work)

	// with no predictive attributes, or with a single instance, no real
	// model can be built; switch permanently to the baseline predictor
	if work.NumAttrs() == 1 || len(work.Instances) < 2 {
		c.trivial = true
		c.net = nil
		c.filter = nil
		c.schema = work
		c.schema.Instances = nil
		c.initialized = true
		c.ctl.setRunning(true)
		return nil
	}

	c.rng = rand.New(rand.NewSource(c.opts.Seed))
	work.Shuffle(c.rng)

	c.filter = nil
	if c.opts.NominalToBinary {
		if f := newBinaryFilter(work.Attrs, work.ClassIndex); f.needed() {
			c.filter = f
			work = f.dataset(work)
		}
	}

	c.stats = computeStats(work)
	if c.opts.NormalizeAttrs {
		normalizeAttrs(work, c.stats)
	}
	if work.ClassIsNumeric() && c.opts.NormalizeClass {
		normalizeClassAttr(work, c.stats)
	}

	// validation prefix, clamped so at least one instance remains for
	// training and, when a nonzero percent is configured, at least one for
	// validation
	n := len(work.Instances)
	valSize := int(math.Round(float64(c.opts.ValSizePercent) / 100 * float64(n)))
	if c.opts.ValSizePercent > 0 && valSize < 1 {
		valSize = 1
	}
	if valSize > n-1 {
		valSize = n - 1
	}

	c.val = work.Instances[:valSize]
	c.train = work.Instances[valSize:]
	c.totalWeight = SumWeights(c.train)
	c.totalValWeight = SumWeights(c.val)
	c.schema = work

	net, err := buildNetwork(work, c.opts.HiddenLayers, c.rng, c.ctl)
	if err != nil {
		return errors.Wrapf(err, "building network failed")
	}

	cs := c.stats[work.ClassIndex]
	net.normalizeClass = c.opts.NormalizeClass
	net.classRng, net.classBase = cs.rng, cs.base
	c.net = net

	c.initialized = true
	c.ctl.setRunning(true)
	return nil
}

// StepEpoch runs one full pass over the non-validation instances, applying a
// weight update per instance, then scores the validation partition if one
// exists. It returns true while more epochs should run: the epoch limit has
// not been reached and the run has not been accepted.
func (c *Classifier) StepEpoch() (bool, error) {
	if !c.initialized {
		return false, errors.Errorf("classifier has not been initialized")
	} else if c.trivial || c.st.accepted {
		return false, nil
	}

	// epoch boundary: park if paused, observe hyperparameter edits
	c.ctl.maybeSuspend()
	if err := c.ctl.cancelled(); err != nil {
		return false, err
	}

	rate := c.opts.LearningRate
	if c.opts.Decay {
		rate /= float64(c.st.epoch + 1)
	}

	var acc float64
	for _, inst := range c.train {
		if err := c.ctl.cancelled(); err != nil {
			return false, err
		}
		if c.schema.ClassMissing(inst) {
			continue
		}

		c.net.reset()
		c.net.setInstance(inst, c.schema.ClassIndex)
		c.net.forward()
		acc += c.net.instanceError(inst.Weight)
		c.net.updateWeights(rate, c.opts.Momentum)
	}
	c.st.trainErr = acc / c.totalWeight

	if math.IsNaN(c.st.trainErr) || math.IsInf(c.st.trainErr, 0) {
		return c.recoverDivergence()
	}

	if len(c.val) > 0 {
		valErr, err := c.validate()
		if err != nil {
			return false, err
		}

		if valErr < c.st.bestValErr {
			c.st.bestValErr = valErr
			c.st.drift = 0
			c.net.saveWeights()
		} else {
			c.st.drift++
		}

		if c.st.drift > c.opts.DriftThreshold || c.st.epoch+1 >= c.opts.EpochLimit {
			c.net.restoreWeights()
			c.st.accepted = true
		}
	}

	c.st.epoch++
	return c.st.epoch < c.opts.EpochLimit && !c.st.accepted, nil
}

// recoverDivergence handles a NaN/infinite aggregate epoch error. When
// recovery is enabled and the original data was retained, the learning rate
// is halved and the entire run is rebuilt from scratch; otherwise the
// failure is fatal.
func (c *Classifier) recoverDivergence() (bool, error) {
	if !c.opts.Reset || c.original == nil {
		return false, errors.Wrapf(ErrDivergence, "epoch %d", c.st.epoch)
	}

	if c.opts.LearningRate/2 < minLearningRate {
		return false, ErrRateExhausted
	}
	c.opts.LearningRate /= 2

	orig := c.original
	c.net = nil
	if err := c.Initialize(orig); err != nil {
		return false, errors.Wrapf(err, "rebuilding after divergence failed")
	}

	return true, nil
}

// validate runs a forward-only pass (reset + forward, no weight update) over
// the validation partition and returns its aggregate error. Cancellation is
// polled per instance, the same as the training loop.
func (c *Classifier) validate() (float64, error) {
	var acc float64
	for _, inst := range c.val {
		if err := c.ctl.cancelled(); err != nil {
			return 0, err
		}
		if c.schema.ClassMissing(inst) {
			continue
		}

		c.net.reset()
		c.net.setInstance(inst, c.schema.ClassIndex)
		c.net.forward()
		acc += c.net.instanceError(inst.Weight)
	}

	if c.totalValWeight == 0 {
		return acc, nil
	}
	return acc / c.totalValWeight, nil
}

// Finish discards the training data except its schema, clears the instance
// cache, and releases the validation bookkeeping. The trained network is
// kept for prediction.
func (c *Classifier) Finish() {
	if c.schema != nil {
		c.schema.Instances = nil
	}
	c.train, c.val = nil, nil
	c.original = nil

	if c.net != nil {
		c.net.reset()
		c.net.cur = nil
	}
	c.ctl.setRunning(false)
}

// Train is the convenience form of the iterative protocol: Initialize, loop
// StepEpoch, Finish.
func (c *Classifier) Train(data *Dataset) error {
	if err := c.Initialize(data); err != nil {
		return err
	}

	for {
		more, err := c.StepEpoch()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	c.Finish()
	return nil
}
