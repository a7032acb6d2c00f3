// Package units provides the unit functions that computation nodes apply to
// their weighted input sums. Hidden nodes and the trainable units feeding
// output terminals each hold exactly one Unit.
package units

import "math"

// Unit is a scalar activation function together with its derivative. Deriv is
// given the unit's own output rather than its input, since for both provided
// units the derivative is cheapest to express that way.
type Unit interface {
	Value(sum float64) float64
	Deriv(out float64) float64
	TypeString() string
}

type sigmoid int8

// Sigmoid returns the logistic unit. Its output is always within (0, 1).
func Sigmoid() sigmoid {
	return sigmoid(0)
}

func (sigmoid) Value(sum float64) float64 {
	// equivalent to 1/(1+e^-x), but keeps precision for large |x|
	return 0.5 + 0.5*math.Tanh(0.5*sum)
}

func (sigmoid) Deriv(out float64) float64 {
	return out * (1 - out)
}

func (sigmoid) TypeString() string {
	return "sigmoid"
}

type identity int8

// Identity returns the linear unit, used ahead of output terminals when the
// class is numeric.
func Identity() identity {
	return identity(0)
}

func (identity) Value(sum float64) float64 {
	return sum
}

func (identity) Deriv(out float64) float64 {
	return 1
}

func (identity) TypeString() string {
	return "linear"
}
