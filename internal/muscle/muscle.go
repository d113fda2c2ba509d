package muscle

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/musclesim/internal/curves"
)

// Muscle is a pennated Hill-type musculotendon actuator. It is not safe for
// concurrent use; give each goroutine its own Muscle.
type Muscle struct {
	params Params
	curves curves.CurveSet
	cfg    Config
	log    *slog.Logger

	geom      Geometry
	geomValid bool

	tendon  tendonModel
	version int
	last    evaluation
}

func New(p Params, cs curves.CurveSet, cfg Config) (*Muscle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	m := &Muscle{
		params: p,
		curves: cs,
		cfg:    cfg,
		log:    log,
	}
	if p.RigidTendon {
		m.tendon = rigidTendon{}
	} else {
		m.tendon = newElasticTendon()
	}
	return m, nil
}

// NewDefault builds a muscle with default parameters, curves and solver.
func NewDefault() *Muscle {
	m, err := New(DefaultParams(), curves.DeGroote2016(), DefaultConfig())
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Muscle) geometry() Geometry {
	if !m.geomValid {
		m.geom = NewGeometry(m.params.OptFiberLength, m.params.OptPennationAngle)
		m.geomValid = true
	}
	return m.geom
}

func (m *Muscle) Params() Params          { return m.params }
func (m *Muscle) Config() Config          { return m.cfg }
func (m *Muscle) Curves() curves.CurveSet { return m.curves }
func (m *Muscle) Geometry() Geometry      { return m.geometry() }

// SetParams replaces the parameters. The tendon mode is left alone; use
// SetRigidTendon to change it.
func (m *Muscle) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.RigidTendon = m.params.RigidTendon
	if p.OptFiberLength != m.params.OptFiberLength || p.OptPennationAngle != m.params.OptPennationAngle {
		m.geomValid = false
	}
	m.params = p
	if e, ok := m.tendon.(*elasticTendon); ok {
		e.st.LengthValid = false
		e.st.SteadyValid = false
	}
	return nil
}

func (m *Muscle) evaluate(l, ldot, a float64) (evaluation, error) {
	ev, err := m.tendon.evaluate(m, l, ldot, a)
	if err != nil {
		return evaluation{}, err
	}
	m.last = ev
	return ev, nil
}

// ComputeForce returns the tension along the muscle-tendon unit at total
// length l, lengthening rate ldot and activation a.
func (m *Muscle) ComputeForce(l, ldot, a float64) (float64, error) {
	ev, err := m.evaluate(l, ldot, a)
	return ev.force, err
}

func (m *Muscle) ComputeDForceDLength(l, ldot, a float64) (float64, error) {
	ev, err := m.evaluate(l, ldot, a)
	return ev.dForceDL, err
}

func (m *Muscle) ComputeDForceDRate(l, ldot, a float64) (float64, error) {
	ev, err := m.evaluate(l, ldot, a)
	return ev.dForceDRate, err
}

// ComputeTangent returns the force and both derivatives from one evaluation.
func (m *Muscle) ComputeTangent(l, ldot, a float64) (f, dl, drate float64, err error) {
	ev, err := m.evaluate(l, ldot, a)
	return ev.force, ev.dForceDL, ev.dForceDRate, err
}

// ComputePassiveForce returns the part of the fiber force that does not
// depend on activation, at the equilibrium for (l, ldot, a).
func (m *Muscle) ComputePassiveForce(l, ldot, a float64) (float64, error) {
	return m.tendon.passive(m, l, ldot, a)
}

func (m *Muscle) HasPersistentState() bool {
	return m.tendon.persistent()
}

// AdvanceState accepts the current equilibrium as the previous one for a
// step from t0 to t1. Call it once per accepted integrator step.
func (m *Muscle) AdvanceState(t0, t1 float64) {
	m.tendon.advance(t0, t1)
}

func (m *Muscle) RigidTendon() bool {
	_, ok := m.tendon.(rigidTendon)
	return ok
}

// SetRigidTendon switches the tendon mode. Any change increments the state
// version and an elastic tendon starts with empty history.
func (m *Muscle) SetRigidTendon(enable bool) {
	if enable == m.RigidTendon() {
		return
	}
	m.version++
	m.params.RigidTendon = enable
	if enable {
		m.tendon = rigidTendon{}
	} else {
		m.tendon = newElasticTendon()
	}
	m.log.Debug("tendon mode changed", "rigid", enable, "version", m.version)
}

func (m *Muscle) StateVersion() int {
	return m.version
}

// GetState appends the version, the mode and, for an elastic tendon, the
// equilibrium history to buf.
func (m *Muscle) GetState(buf *DataBuffer) {
	buf.ZPut(m.version)
	buf.ZPutBool(m.RigidTendon())
	if e, ok := m.tendon.(*elasticTendon); ok {
		e.st.encode(buf)
	}
}

// SetState restores what GetState wrote. Buffers from another version or
// mode are rejected with ErrStateVersion and leave the muscle untouched.
func (m *Muscle) SetState(buf *DataBuffer) error {
	version := buf.ZGet()
	rigid := buf.ZGetBool()
	if err := buf.Err(); err != nil {
		return err
	}
	if version != m.version || rigid != m.RigidTendon() {
		return fmt.Errorf("%w: buffer has version %d (rigid=%t), muscle has version %d (rigid=%t)",
			ErrStateVersion, version, rigid, m.version, m.RigidTendon())
	}
	if e, ok := m.tendon.(*elasticTendon); ok {
		return e.st.decode(buf)
	}
	return nil
}

// EquilibriumState returns a copy of the elastic history. ok is false for a
// rigid tendon.
func (m *Muscle) EquilibriumState() (st EquilibriumState, ok bool) {
	if e, ok := m.tendon.(*elasticTendon); ok {
		return e.st, true
	}
	return EquilibriumState{}, false
}

// The accessors below describe the most recent evaluation.

func (m *Muscle) Length() float64       { return m.last.length }
func (m *Muscle) MuscleLength() float64 { return m.last.muscleLength }
func (m *Muscle) Residual() float64     { return m.last.residual }
func (m *Muscle) Iterations() int       { return m.last.iterations }

func (m *Muscle) TendonLength() float64 {
	return m.last.length - m.last.muscleLength
}

func (m *Muscle) FiberLength() float64 {
	return m.geometry().FiberLength(m.last.muscleLength)
}

func (m *Muscle) PennationAngle() float64 {
	return m.geometry().PennationAngle(m.last.muscleLength)
}

func (m *Muscle) NormalizedFiberVelocity() float64 {
	ca, _ := m.geometry().CosPennation(m.last.muscleLength)
	return m.last.muscleVel * ca / (m.params.OptFiberLength * m.params.MaxContractionVelocity)
}
