package percept

// forwardValue returns the node's value for the current instance. If the
// value is cached it is returned as-is; otherwise, when compute is true, it
// is pulled recursively from the node's inputs, cached, and returned.
// Repeated calls without an intervening reset return the identical cached
// value. The second return is false only when the value is unset and compute
// is false.
func (n *node) forwardValue(compute bool) (float64, bool) {
	if n.valueSet {
		return n.value, true
	} else if !compute {
		return 0, false
	}

	switch n.kind {
	case inputTerminal:
		// missing attribute values read as 0
		v := n.host.cur.Vals[n.attr]
		if IsMissing(v) {
			v = 0
		}
		n.value = v

	case outputTerminal:
		var sum float64
		for _, in := range n.ins {
			v, _ := in.forwardValue(true)
			sum += v
		}

		// rescale back into the original class range when the class was
		// normalized during preprocessing
		if n.host.classNumeric && n.host.normalizeClass && n.host.classRng != 0 {
			sum = sum*n.host.classRng + n.host.classBase
		}
		n.value = sum

	default:
		sum := n.weights[0] // bias, with implicit input 1
		for i, in := range n.ins {
			v, _ := in.forwardValue(true)
			sum += n.weights[i+1] * v
		}
		n.value = n.unit.Value(sum)
	}

	n.valueSet = true
	return n.value, true
}

// backwardError is symmetric to forwardValue but traverses the graph in the
// opposite direction, pulling errors from the nodes that consume this one.
func (n *node) backwardError(compute bool) (float64, bool) {
	if n.errSet {
		return n.errVal, true
	} else if !compute {
		return 0, false
	}

	switch n.kind {
	case outputTerminal:
		n.errVal = n.host.outputResidual(n)

	case inputTerminal:
		var sum float64
		for _, out := range n.outs {
			e, _ := out.backwardError(true)
			sum += e * out.weightFor(n)
		}
		n.errVal = sum

	default:
		var sum float64
		for _, out := range n.outs {
			e, _ := out.backwardError(true)
			sum += e * out.weightFor(n)
		}
		n.errVal = n.unit.Deriv(n.value) * sum
	}

	n.errSet = true
	return n.errVal, true
}

// outputResidual computes target-minus-prediction for one output terminal.
// For a nominal class the target is 1 if the terminal matches the true class
// and 0 otherwise. For a numeric class the residual is range-normalized when
// the class was normalized, and exactly 0 when the class range is degenerate.
func (net *Network) outputResidual(out *node) float64 {
	v, _ := out.forwardValue(true)

	if net.classNumeric {
		if net.normalizeClass {
			if net.classRng == 0 {
				return 0
			}
			return net.target - (v-net.classBase)/net.classRng
		}
		return net.target - v
	}

	if int(net.target) == out.class {
		return 1 - v
	}
	return -v
}

// forward force-evaluates every output terminal.
func (net *Network) forward() {
	for _, out := range net.outputs {
		out.forwardValue(true)
	}
}

// backward force-evaluates every node's error. This must complete before any
// weight mutation: each cached error has to be derived from the weights the
// forward pass used.
func (net *Network) backward() {
	for _, n := range net.nodesByID {
		if n != nil {
			n.backwardError(true)
		}
	}
}

// instanceError returns the weighted squared error of the current instance,
// summed over all output terminals.
func (net *Network) instanceError(weight float64) float64 {
	var sum float64
	for _, out := range net.outputs {
		r := net.outputResidual(out)
		sum += r * r
	}

	return sum * weight
}
