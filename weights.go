package percept

// updateWeights applies one gradient step to every trainable node. The full
// backward pass runs first so that every cached error reflects the weights
// as they stood at forward time; the walk from the output terminals then
// mutates weights without invalidating errors it has yet to consume.
func (net *Network) updateWeights(learningRate, momentum float64) {
	net.backward()

	for _, out := range net.outputs {
		out.updateWeights(learningRate, momentum)
	}

	net.resetCompletion()
}

func (n *node) updateWeights(learningRate, momentum float64) {
	if n.completed {
		return
	}
	n.completed = true

	if n.kind == hiddenUnit {
		e, _ := n.backwardError(true)

		delta := learningRate*e + momentum*n.prevDelta[0]
		n.weights[0] += delta
		n.prevDelta[0] = delta

		for i, in := range n.ins {
			v, _ := in.forwardValue(true)
			delta = learningRate*e*v + momentum*n.prevDelta[i+1]
			n.weights[i+1] += delta
			n.prevDelta[i+1] = delta
		}
	}

	for _, in := range n.ins {
		in.updateWeights(learningRate, momentum)
	}
}

// saveWeights snapshots the weight vector of every reachable node. The
// snapshot is what restoreWeights rolls back to; the training loop uses it
// to retain the best-performing weights seen during validation.
func (net *Network) saveWeights() {
	for _, out := range net.outputs {
		out.saveWeights()
	}

	net.resetCompletion()
}

func (n *node) saveWeights() {
	if n.completed {
		return
	}
	n.completed = true

	if n.kind == hiddenUnit {
		if len(n.saved) != len(n.weights) {
			n.saved = make([]float64, len(n.weights))
		}
		copy(n.saved, n.weights)
	}

	for _, in := range n.ins {
		in.saveWeights()
	}
}

// restoreWeights rolls every reachable node back to its last snapshot. Nodes
// that were never snapshotted keep their current weights.
func (net *Network) restoreWeights() {
	for _, out := range net.outputs {
		out.restoreWeights()
	}

	net.resetCompletion()
}

func (n *node) restoreWeights() {
	if n.completed {
		return
	}
	n.completed = true

	if n.kind == hiddenUnit && len(n.saved) == len(n.weights) {
		copy(n.weights, n.saved)
	}

	for _, in := range n.ins {
		in.restoreWeights()
	}
}
