package control

import (
	"sync"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// ManualController passes activations set from outside the simulation loop,
// such as key presses in the live view.
type ManualController struct {
	mu sync.Mutex
	U  dynamo.Control
}

func NewManual(dim int) *ManualController {
	return &ManualController{
		U: make(dynamo.Control, dim),
	}
}

// Nudge adds delta to channel i, keeping it in [0, 1].
func (c *ManualController) Nudge(i int, delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.U) {
		return
	}
	c.U[i] = clamp01(c.U[i] + delta)
}

// SetControl updates the control vector.
func (c *ManualController) SetControl(u dynamo.Control) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.U {
		if i < len(u) {
			c.U[i] = clamp01(u[i])
		}
	}
}

// Compute returns a copy of the stored control vector.
func (c *ManualController) Compute(state dynamo.State, t float64) dynamo.Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := make(dynamo.Control, len(c.U))
	copy(u, c.U)
	return u
}
