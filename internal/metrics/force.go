package metrics

import (
	"math"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// DefaultForceKey is the output a single-actuator system reports its
// tension under.
const DefaultForceKey = "force"

type PeakForce struct {
	key  string
	peak float64
}

func NewPeakForce(key string) *PeakForce {
	return &PeakForce{key: key}
}

func (p *PeakForce) Name() string { return "peak_" + p.key }

func (p *PeakForce) Observe(x dynamo.State, u dynamo.Control, t float64, out dynamo.Outputs) {
	if f, ok := out[p.key]; ok {
		p.peak = math.Max(p.peak, f)
	}
}

func (p *PeakForce) Value() float64 { return p.peak }
func (p *PeakForce) Reset()         { p.peak = 0 }

type MeanForce struct {
	key     string
	sum     float64
	samples int
}

func NewMeanForce(key string) *MeanForce {
	return &MeanForce{key: key}
}

func (m *MeanForce) Name() string { return "mean_" + m.key }

func (m *MeanForce) Observe(x dynamo.State, u dynamo.Control, t float64, out dynamo.Outputs) {
	if f, ok := out[m.key]; ok {
		m.sum += f
		m.samples++
	}
}

func (m *MeanForce) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanForce) Reset() {
	m.sum = 0
	m.samples = 0
}

// Work is the mechanical work done by an actuator on its load, the
// integral of F * (-ldot) dt with the rate taken from x[1]. Shortening
// against a load is positive work.
type Work struct {
	key   string
	work  float64
	prevT float64
	prevP float64
	first bool
}

func NewWork(key string) *Work {
	return &Work{key: key, first: true}
}

func (w *Work) Name() string { return "work" }

func (w *Work) Observe(x dynamo.State, u dynamo.Control, t float64, out dynamo.Outputs) {
	f, ok := out[w.key]
	if !ok || len(x) < 2 {
		return
	}
	power := -f * x[1]
	if !w.first {
		w.work += 0.5 * (power + w.prevP) * (t - w.prevT)
	}
	w.prevT, w.prevP, w.first = t, power, false
}

func (w *Work) Value() float64 { return w.work }

func (w *Work) Reset() {
	w.work = 0
	w.first = true
}
