package control

import (
	"fmt"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// PID drives activation to hold the actuator length x[0] at Target. A
// length above the target calls for more activation. The output is clipped
// to [0, 1] and the integral stops growing while the output is saturated.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	Bias     float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) < 1 {
		return dynamo.Control{0}
	}

	err := x[0] - p.Target

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return dynamo.Control{clamp01(p.Bias + p.Kp*err)}
	}

	dt := t - p.prevT
	if dt <= 0 {
		return dynamo.Control{clamp01(p.Bias + p.Kp*err + p.Ki*p.integral)}
	}

	integral := p.integral + err*dt
	derivative := (err - p.prevErr) / dt
	u := p.Bias + p.Kp*err + p.Ki*integral + p.Kd*derivative
	if u > 0 && u < 1 {
		p.integral = integral
	}

	p.prevErr = err
	p.prevT = t

	return dynamo.Control{clamp01(u)}
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
		"Bias":   p.Bias,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	case "Bias":
		p.Bias = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
