package percept

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mfield/percept/units"
)

// resolveHiddenSpec parses the hidden-layer specification: a comma-separated
// sequence of tokens, each either a non-negative integer or one of the
// wildcards
//	a = (numInputs+numOutputs)/2
//	i = numInputs
//	o = numOutputs
//	t = numInputs+numOutputs
// A single literal "0" token means "no hidden layer"; a "0" alongside other
// tokens is rejected. Layers a wildcard resolves to size 0 are dropped.
func resolveHiddenSpec(spec string, numInputs, numOutputs int) ([]int, error) {
	tokens := strings.Split(spec, ",")

	sizes := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)

		var size int
		switch tok {
		case "a":
			size = (numInputs + numOutputs) / 2
		case "i":
			size = numInputs
		case "o":
			size = numOutputs
		case "t":
			size = numInputs + numOutputs
		default:
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, errors.Errorf("malformed hidden-layer token %q", tok)
			} else if n < 0 {
				return nil, errors.Errorf("hidden-layer size cannot be negative (%d)", n)
			} else if n == 0 {
				if len(tokens) > 1 {
					return nil, errors.Errorf(`"0" must be the only hidden-layer token`)
				}
				return nil, nil
			}
			size = n
		}

		if size > 0 {
			sizes = append(sizes, size)
		}
	}

	return sizes, nil
}

// validHiddenSpec reports whether the specification is syntactically valid.
// The counts do not matter for syntax, so placeholders are used.
func validHiddenSpec(spec string) bool {
	_, err := resolveHiddenSpec(spec, 1, 1)
	return err == nil
}

const initWeightSpread = 0.05

func initWeight(rng *rand.Rand) float64 {
	return initWeightSpread * (2*rng.Float64() - 1)
}

func (net *Network) newNode(kind nodeKind) *node {
	n := &node{
		id:    len(net.nodesByID),
		kind:  kind,
		host:  net,
		attr:  -1,
		class: -1,
	}
	net.nodesByID = append(net.nodesByID, n)

	switch kind {
	case inputTerminal:
		net.inputs = append(net.inputs, n)
	case outputTerminal:
		net.outputs = append(net.outputs, n)
	default:
		net.hidden = append(net.hidden, n)
	}

	return n
}

// connect wires a directed edge from -> to, keeping the two edge lists
// symmetric. Trainable consumers grow their weight vector by one entry.
func (net *Network) connect(from, to *node, rng *rand.Rand) {
	from.outs = append(from.outs, to)
	to.ins = append(to.ins, from)

	if to.kind == hiddenUnit {
		to.weights = append(to.weights, initWeight(rng))
		to.prevDelta = append(to.prevDelta, 0)
		to.saved = nil
	}
}

// buildNetwork constructs the graph for the given (already preprocessed)
// dataset: one input terminal per non-class attribute, one output terminal
// per class value (exactly one for a numeric class) each fed by a fresh
// trainable unit, and fully connected hidden layers per the spec string.
// Cancellation is polled at each node and edge creation step.
func buildNetwork(data *Dataset, hiddenSpec string, rng *rand.Rand, ctl *Controller) (*Network, error) {
	numInputs := data.NumAttrs() - 1
	numOutputs := data.NumClasses()

	sizes, err := resolveHiddenSpec(hiddenSpec, numInputs, numOutputs)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hidden-layer specification %q", hiddenSpec)
	}

	net := &Network{classNumeric: data.ClassIsNumeric()}

	// one input terminal per attribute, skipping exactly the class index
	for i := range data.Attrs {
		if i == data.ClassIndex {
			continue
		}
		if err := ctl.cancelled(); err != nil {
			return nil, err
		}

		in := net.newNode(inputTerminal)
		in.attr = i
	}

	// every output terminal is preceded by a trainable unit, never a raw sum
	// of inputs
	feeders := make([]*node, numOutputs)
	for class := 0; class < numOutputs; class++ {
		if err := ctl.cancelled(); err != nil {
			return nil, err
		}

		out := net.newNode(outputTerminal)
		out.class = class

		f := net.newNode(hiddenUnit)
		f.weights = []float64{initWeight(rng)}
		f.prevDelta = []float64{0}
		net.connect(f, out, rng)
		feeders[class] = f
	}

	prev := net.inputs
	for _, size := range sizes {
		layer := make([]*node, size)
		for i := range layer {
			if err := ctl.cancelled(); err != nil {
				return nil, err
			}

			h := net.newNode(hiddenUnit)
			h.weights = []float64{initWeight(rng)}
			h.prevDelta = []float64{0}
			layer[i] = h

			for _, p := range prev {
				if err := ctl.cancelled(); err != nil {
					return nil, err
				}
				net.connect(p, h, rng)
			}
		}
		prev = layer
	}

	// with zero hidden layers this connects inputs directly to the
	// output-feeding units
	for _, f := range feeders {
		for _, p := range prev {
			if err := ctl.cancelled(); err != nil {
				return nil, err
			}
			net.connect(p, f, rng)
		}
	}

	net.assignUnits()
	return net, nil
}

// assignUnits (re)establishes each trainable node's unit function from the
// numeric/nominal status of the class: nodes feeding a pure output terminal
// are linear when the class is numeric, everything else is sigmoid. Called
// whenever that status is (re)established.
func (net *Network) assignUnits() {
	for _, n := range net.hidden {
		var u units.Unit = units.Sigmoid()
		if net.classNumeric && n.feedsOutput() {
			u = units.Identity()
		}
		n.unit = u
	}
}

func (n *node) feedsOutput() bool {
	for _, out := range n.outs {
		if out.kind == outputTerminal {
			return true
		}
	}

	return false
}

// reaches reports whether 'to' is reachable from 'from' along forward edges.
func (net *Network) reaches(from, to *node) bool {
	found := from.search(to)
	net.resetCompletion()
	return found
}

func (n *node) search(target *node) bool {
	if n == target {
		return true
	} else if n.completed {
		return false
	}
	n.completed = true

	for _, out := range n.outs {
		if out.search(target) {
			return true
		}
	}

	return false
}

// The topology mutation API. All four operations are funneled through the
// same gate as the hyperparameter setters: they are only legal while the
// training loop is suspended between epochs (or not running at all).

// AddHiddenNode adds an unconnected sigmoid node and returns its id.
func (c *Classifier) AddHiddenNode() (int, error) {
	if err := c.ctl.editable(); err != nil {
		return 0, err
	} else if c.net == nil {
		return 0, errors.Errorf("no network has been built")
	}

	n := c.net.newNode(hiddenUnit)
	n.weights = []float64{initWeight(c.rng)}
	n.prevDelta = []float64{0}
	n.unit = units.Sigmoid()
	return n.id, nil
}

// RemoveNode deletes a hidden node and all of its edges. Terminal nodes
// cannot be removed.
func (c *Classifier) RemoveNode(id int) error {
	if err := c.ctl.editable(); err != nil {
		return err
	} else if c.net == nil {
		return errors.Errorf("no network has been built")
	}

	n, err := c.net.nodeByID(id)
	if err != nil {
		return err
	} else if n.kind != hiddenUnit {
		return errors.Errorf("cannot remove terminal node %v", n)
	}

	for _, in := range n.ins {
		in.outs = removeNode(in.outs, n)
	}
	for _, out := range n.outs {
		out.detachInput(n)
	}

	c.net.hidden = removeNode(c.net.hidden, n)
	c.net.nodesByID[id] = nil
	return nil
}

// Connect adds an edge between two existing nodes. Edges into input
// terminals, out of output terminals, duplicates, and edges that would close
// a cycle are refused; evaluation is only defined for a DAG.
func (c *Classifier) Connect(fromID, toID int) error {
	if err := c.ctl.editable(); err != nil {
		return err
	} else if c.net == nil {
		return errors.Errorf("no network has been built")
	}

	from, err := c.net.nodeByID(fromID)
	if err != nil {
		return err
	}
	to, err := c.net.nodeByID(toID)
	if err != nil {
		return err
	}

	if from == to {
		return errors.Errorf("cannot connect %v to itself", from)
	} else if to.kind == inputTerminal {
		return errors.Errorf("cannot connect into input terminal %v", to)
	} else if from.kind == outputTerminal {
		return errors.Errorf("cannot connect out of output terminal %v", from)
	}

	for _, out := range from.outs {
		if out == to {
			return errors.Errorf("%v is already connected to %v", from, to)
		}
	}

	if c.net.reaches(to, from) {
		return errors.Errorf("connecting %v to %v would create a cycle", from, to)
	}

	c.net.connect(from, to, c.rng)
	c.net.assignUnits()
	return nil
}

// Disconnect removes the edge between two nodes.
func (c *Classifier) Disconnect(fromID, toID int) error {
	if err := c.ctl.editable(); err != nil {
		return err
	} else if c.net == nil {
		return errors.Errorf("no network has been built")
	}

	from, err := c.net.nodeByID(fromID)
	if err != nil {
		return err
	}
	to, err := c.net.nodeByID(toID)
	if err != nil {
		return err
	}

	connected := false
	for _, out := range from.outs {
		if out == to {
			connected = true
			break
		}
	}
	if !connected {
		return errors.Errorf("%v is not connected to %v", from, to)
	}

	from.outs = removeNode(from.outs, to)
	to.detachInput(from)
	c.net.assignUnits()
	return nil
}

func (net *Network) nodeByID(id int) (*node, error) {
	if id < 0 || id >= len(net.nodesByID) || net.nodesByID[id] == nil {
		return nil, errors.Errorf("no node with id %d", id)
	}

	return net.nodesByID[id], nil
}

func removeNode(ns []*node, target *node) []*node {
	kept := ns[:0]
	for _, n := range ns {
		if n != target {
			kept = append(kept, n)
		}
	}

	return kept
}

// detachInput removes 'in' from the node's input list along with the weight
// vector entry that paired with it.
func (n *node) detachInput(in *node) {
	for i, candidate := range n.ins {
		if candidate != in {
			continue
		}

		n.ins = append(n.ins[:i], n.ins[i+1:]...)
		if n.kind == hiddenUnit {
			n.weights = append(n.weights[:i+1], n.weights[i+2:]...)
			n.prevDelta = append(n.prevDelta[:i+1], n.prevDelta[i+2:]...)
			n.saved = nil
		}
		return
	}
}
