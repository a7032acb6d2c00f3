// Package percept implements a graph-based backpropagation engine for
// feed-forward neural-network classification.
//
// The Network
//
// Networks are explicit directed acyclic graphs of scalar computation nodes:
// input terminals bound to dataset attributes, output terminals bound to
// class values, and hidden nodes carrying a weight vector and a unit function
// from the subpackage "units". Evaluation is lazy and memoized: each node
// caches a single forward value and a single backward error per instance,
// and reset() invalidates both with a guard that only recurses into nodes
// that are currently cached.
//
// Training
//
// The Classifier drives an epoch-based incremental protocol:
//
//		c := percept.New()
//		if err := c.Initialize(data); err != nil {
//			return err
//		}
//		for {
//			more, err := c.StepEpoch()
//			if err != nil {
//				return err
//			}
//			if !more {
//				break
//			}
//		}
//		c.Finish()
//
// Train() wraps the three calls above. Each epoch makes one pass over the
// non-validation instances, applying a momentum gradient step per instance.
// When a validation partition is configured, the best-performing weights are
// checkpointed and restored once validation error stops improving. A NaN or
// infinite epoch error triggers recovery: the learning rate is halved and
// the entire run is rebuilt from the retained original data.
//
// Hidden layers are described by a small mini-language: comma-separated
// tokens, each a non-negative integer or one of the wildcards 'a', 'i', 'o',
// 't'. A lone "0" means no hidden layer.
//
// Control
//
// An external controller may pause the loop between epochs with Pause() and
// Resume(). Hyperparameter setters and the topology mutation methods
// (AddHiddenNode, RemoveNode, Connect, Disconnect) are only legal while the
// loop is suspended. Cancel() requests cooperative cancellation, observed at
// the head of the per-instance loop and during topology construction.
package percept
