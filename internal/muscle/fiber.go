package muscle

// fiberPartials is the normalized fiber force projected onto the tendon, with
// its partials with respect to muscle length (velocity held fixed) and
// muscle velocity.
type fiberPartials struct {
	force float64
	dlm   float64
	dvm   float64
}

func (m *Muscle) fiberForce(lm, vm, a float64) fiberPartials {
	p := &m.params
	g := m.geometry()
	lo := p.OptFiberLength
	vmax := lo * p.MaxContractionVelocity

	ca, dca := g.CosPennation(lm)
	ln := g.FiberLength(lm) / lo
	vn := vm * ca / vmax

	fa := m.curves.ActiveForceLength.Value(ln)
	dfa := m.curves.ActiveForceLength.Derivative(ln)
	fp := m.curves.PassiveForceLength.Value(ln)
	dfp := m.curves.PassiveForceLength.Derivative(ln)
	fv, dfv := m.forceVelocity(vn)

	ff := a*fa*fv + fp + p.FiberDamping*vn
	dln := ca / lo
	dvn := dca * vm / vmax
	vterm := p.FiberDamping + a*fa*dfv

	return fiberPartials{
		force: ff * ca,
		dlm:   ff*dca + (a*dfa*fv+dfp)*dln*ca + vterm*dvn*ca,
		dvm:   ca * ca * vterm / vmax,
	}
}

func (m *Muscle) forceVelocity(vn float64) (float64, float64) {
	if m.params.IgnoreForceVelocity {
		return 1, 0
	}
	if vn <= -1 {
		return 0, 0
	}
	return m.curves.ForceVelocity.Value(vn), m.curves.ForceVelocity.Derivative(vn)
}

// passiveFiberForce is the normalized fiber force at zero activation.
func (m *Muscle) passiveFiberForce(lm, vm float64) float64 {
	p := &m.params
	g := m.geometry()
	ca, _ := g.CosPennation(lm)
	ln := g.FiberLength(lm) / p.OptFiberLength
	vn := vm * ca / (p.OptFiberLength * p.MaxContractionVelocity)
	return (m.curves.PassiveForceLength.Value(ln) + p.FiberDamping*vn) * ca
}

// tendonForce returns the normalized tendon force at tendon length lt and
// its derivative with respect to lt.
func (m *Muscle) tendonForce(lt float64) (float64, float64) {
	T := m.params.TendonSlackLength
	x := lt / T
	return m.curves.TendonForceLength.Value(x), m.curves.TendonForceLength.Derivative(x) / T
}
