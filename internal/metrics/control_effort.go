package metrics

import (
	"math"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// ActivationEffort is the mean over steps of the summed absolute
// activation across actuators.
type ActivationEffort struct {
	name    string
	sum     float64
	samples int
}

func NewActivationEffort() *ActivationEffort {
	return &ActivationEffort{
		name: "activation_effort",
	}
}

func (c *ActivationEffort) Name() string {
	return c.name
}

func (c *ActivationEffort) Observe(x dynamo.State, u dynamo.Control, t float64, out dynamo.Outputs) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ActivationEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ActivationEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
