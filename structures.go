package percept

import (
	"fmt"

	"github.com/mfield/percept/units"
)

type nodeKind int8

const (
	inputTerminal  nodeKind = iota // 0
	outputTerminal nodeKind = iota // 1
	hiddenUnit     nodeKind = iota // 2
)

// Network is the containing structure for the computation graph. It owns
// three disjoint node collections and the evaluation context shared by all
// of them: the instance currently loaded into the input terminals and the
// class normalization constants.
type Network struct {
	inputs  []*node
	outputs []*node
	hidden  []*node

	// a list of all of the nodes, stored such that their id is their index
	// in this slice. Removed nodes leave a nil entry so ids stay stable.
	nodesByID []*node

	// evaluation context for the instance currently being processed
	cur    *Instance
	target float64

	classNumeric   bool
	normalizeClass bool
	classRng       float64
	classBase      float64
}

// node is the fundamental building block of the Network. Each node caches a
// single scalar forward value and a single scalar backward error; both are
// unset until computed for the current instance.
type node struct {
	id   int
	kind nodeKind
	host *Network

	// attr is the dataset attribute index for input terminals; class is the
	// class value index for output terminals. Unused fields are -1.
	attr  int
	class int

	// The nodes this node receives values from and sends values to. The two
	// lists are kept symmetric across the whole graph.
	ins  []*node
	outs []*node

	// weights[0] is the bias/threshold weight (implicit input 1); weights[i+1]
	// pairs with ins[i]. Only hidden nodes have weights.
	weights   []float64
	prevDelta []float64
	saved     []float64

	unit units.Unit

	value    float64
	errVal   float64
	valueSet bool
	errSet   bool

	// Whether or not the current task assigned by the Network has been
	// completed. Reused by the traversals that are not value/error passes
	// (weight updates, checkpoints, dumps).
	completed bool
}

func (n *node) String() string {
	if n == nil {
		return "<nil>"
	}

	switch n.kind {
	case inputTerminal:
		return fmt.Sprintf("<input %d, attr %d>", n.id, n.attr)
	case outputTerminal:
		return fmt.Sprintf("<output %d, class %d>", n.id, n.class)
	default:
		return fmt.Sprintf("<hidden %d, unit %s>", n.id, n.unit.TypeString())
	}
}

// weightFor returns the weight that 'to' applies to values received from
// 'in'. Output terminals apply no weighting to their inputs.
func (n *node) weightFor(in *node) float64 {
	if n.kind == outputTerminal {
		return 1
	}

	for i, candidate := range n.ins {
		if candidate == in {
			return n.weights[i+1]
		}
	}

	return 0
}

// Sets all nodes' field 'completed' to false.
func (net *Network) resetCompletion() {
	for _, n := range net.nodesByID {
		if n != nil {
			n.completed = false
		}
	}
}

// setInstance loads one instance into the evaluation context. The caller
// must reset() first so that no cache from a previous instance survives.
func (net *Network) setInstance(inst *Instance, classIndex int) {
	net.cur = inst
	net.target = inst.Vals[classIndex]
}

// reset invalidates the cached value and error of every node reachable from
// the output terminals. The "only recurse if currently cached" guard is a
// correctness requirement: without it, resetting a diamond-shaped graph
// would re-walk shared ancestors exponentially.
func (net *Network) reset() {
	for _, out := range net.outputs {
		out.reset()
	}
}

func (n *node) reset() {
	if !n.valueSet && !n.errSet {
		return
	}

	n.valueSet = false
	n.errSet = false

	for _, in := range n.ins {
		in.reset()
	}
}

// NumInputs returns the number of input terminals.
func (net *Network) NumInputs() int {
	return len(net.inputs)
}

// NumOutputs returns the number of output terminals.
func (net *Network) NumOutputs() int {
	return len(net.outputs)
}

// NumHidden returns the number of hidden nodes.
func (net *Network) NumHidden() int {
	return len(net.hidden)
}
