package percept

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

type savedNode struct {
	ID      int       `json:"id"`
	Weights []float64 `json:"weights"`
}

type savedWeights struct {
	Nodes []savedNode `json:"nodes"`
}

// SaveWeights encodes every trainable node's weight vector as JSON. The
// encoding carries node ids, so it can only be restored into an identically
// shaped network.
func (c *Classifier) SaveWeights(w io.Writer) error {
	if c.net == nil {
		return errors.Errorf("no network to save")
	}

	var sw savedWeights
	for _, n := range c.net.hidden {
		ws := make([]float64, len(n.weights))
		copy(ws, n.weights)
		sw.Nodes = append(sw.Nodes, savedNode{ID: n.id, Weights: ws})
	}

	if err := json.NewEncoder(w).Encode(sw); err != nil {
		return errors.Wrapf(err, "encoding weights failed")
	}
	return nil
}

// LoadWeights restores weight vectors written by SaveWeights. It is refused
// mid-run unless the loop is suspended, and fails without modifying anything
// if the saved shapes do not match the current network.
func (c *Classifier) LoadWeights(r io.Reader) error {
	if err := c.ctl.editable(); err != nil {
		return err
	} else if c.net == nil {
		return errors.Errorf("no network to load into")
	}

	var sw savedWeights
	if err := json.NewDecoder(r).Decode(&sw); err != nil {
		return errors.Wrapf(err, "decoding weights failed")
	}

	// validate everything before touching the network
	for _, sn := range sw.Nodes {
		n, err := c.net.nodeByID(sn.ID)
		if err != nil {
			return err
		} else if n.kind != hiddenUnit {
			return errors.Errorf("node %v has no weights", n)
		} else if len(n.weights) != len(sn.Weights) {
			return errors.Errorf("node %v expects %d weights, save has %d", n, len(n.weights), len(sn.Weights))
		}
	}

	for _, sn := range sw.Nodes {
		n, _ := c.net.nodeByID(sn.ID)
		copy(n.weights, sn.Weights)
	}
	return nil
}
