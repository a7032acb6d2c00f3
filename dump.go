package percept

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the topology and weight vectors for diagnostics. The
// output is not intended to be re-parsed.
func (c *Classifier) String() string {
	if c.trivial {
		if c.base.numeric {
			return fmt.Sprintf("baseline predictor (mean %v)", c.base.mean)
		}
		return fmt.Sprintf("baseline predictor (distribution %v)", c.base.dist)
	} else if c.net == nil {
		return "<untrained>"
	}

	return c.net.dump()
}

func (net *Network) dump() string {
	var b strings.Builder

	b.WriteString("inputs: " + idList(net.inputs) + "\n")
	b.WriteString("outputs: " + idList(net.outputs) + "\n")

	for _, n := range net.nodesByID {
		if n == nil {
			continue
		}

		b.WriteString(n.String())
		if len(n.ins) > 0 {
			b.WriteString(" <- " + idList(n.ins))
		}
		if n.kind == hiddenUnit {
			fmt.Fprintf(&b, " weights %v", n.weights)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func idList(ns []*node) string {
	var b strings.Builder
	for i, n := range ns {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strconv.Itoa(n.id))
	}

	return b.String()
}
