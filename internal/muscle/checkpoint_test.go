package muscle_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/musclesim/internal/curves"
	"github.com/san-kum/musclesim/internal/muscle"
)

const step = 1e-3

func newElastic() *muscle.Muscle {
	m, err := muscle.New(muscle.DefaultParams(), curves.DeGroote2016(), muscle.DefaultConfig())
	Expect(err).NotTo(HaveOccurred())
	return m
}

// drive runs n accepted steps of a slow lengthening ramp from t0 and returns
// the forces at each step.
func drive(m *muscle.Muscle, t0 float64, n int) []float64 {
	forces := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		t := t0 + float64(i)*step
		l := 0.32 + 0.05*t
		a := 0.5 + 0.5*math.Sin(20*t)
		f, err := m.ComputeForce(l, 0.05, a)
		Expect(err).NotTo(HaveOccurred())
		forces = append(forces, f)
		m.AdvanceState(t, t+step)
	}
	return forces
}

var _ = Describe("Checkpoints", func() {
	It("continues bit for bit from an elastic checkpoint", func() {
		a := newElastic()
		drive(a, 0, 5)

		buf := muscle.NewDataBuffer()
		a.GetState(buf)
		want := drive(a, 5*step, 5)

		b := newElastic()
		Expect(b.SetState(buf)).To(Succeed())
		got := drive(b, 5*step, 5)

		for i := range want {
			Expect(math.Float64bits(got[i])).To(Equal(math.Float64bits(want[i])), "step %d", i)
		}
	})

	It("writes identical buffers for identical histories", func() {
		a, b := newElastic(), newElastic()
		drive(a, 0, 3)
		drive(b, 0, 3)

		ba, bb := muscle.NewDataBuffer(), muscle.NewDataBuffer()
		a.GetState(ba)
		b.GetState(bb)
		Expect(ba.Equal(bb)).To(BeTrue())
	})

	It("keeps the steady velocity ratio of a first step in progress", func() {
		a := newElastic()
		_, err := a.ComputeForce(0.33, 0.05, 0.8)
		Expect(err).NotTo(HaveOccurred())

		buf := muscle.NewDataBuffer()
		a.GetState(buf)
		b := newElastic()
		Expect(b.SetState(buf)).To(Succeed())

		want, err := a.ComputeForce(0.34, -0.1, 0.6)
		Expect(err).NotTo(HaveOccurred())
		got, err := b.ComputeForce(0.34, -0.1, 0.6)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.Float64bits(got)).To(Equal(math.Float64bits(want)))
	})

	It("rejects a truncated buffer without touching the state", func() {
		a := newElastic()
		drive(a, 0, 4)
		buf := muscle.NewDataBuffer()
		a.GetState(buf)
		buf.D = buf.D[:len(buf.D)-1]

		b := newElastic()
		drive(b, 0, 2)
		before, _ := b.EquilibriumState()

		err := b.SetState(buf)
		Expect(err).To(MatchError(muscle.ErrStateBuffer))
		after, _ := b.EquilibriumState()
		Expect(after).To(Equal(before))
	})
})

var _ = Describe("Tendon mode switching", func() {
	var (
		m   *muscle.Muscle
		buf *muscle.DataBuffer
	)

	BeforeEach(func() {
		m = newElastic()
		_, err := m.ComputeForce(0.33, 0, 1)
		Expect(err).NotTo(HaveOccurred())
		m.AdvanceState(0, step)

		m.SetRigidTendon(true)
		m.AdvanceState(step, 2*step)

		buf = muscle.NewDataBuffer()
		m.GetState(buf)
	})

	It("drops the persistent state and bumps the version", func() {
		Expect(m.RigidTendon()).To(BeTrue())
		Expect(m.HasPersistentState()).To(BeFalse())
		Expect(m.StateVersion()).To(Equal(1))

		_, ok := m.EquilibriumState()
		Expect(ok).To(BeFalse())
	})

	It("ignores a toggle to the current mode", func() {
		m.SetRigidTendon(true)
		Expect(m.StateVersion()).To(Equal(1))
	})

	It("restores into a muscle toggled the same way", func() {
		other := newElastic()
		other.SetRigidTendon(true)
		Expect(other.SetState(buf)).To(Succeed())

		for _, l := range []float64{0.25, 0.31, 0.34} {
			want, err := m.ComputeForce(l, 0.02, 0.7)
			Expect(err).NotTo(HaveOccurred())
			got, err := other.ComputeForce(l, 0.02, 0.7)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		}
	})

	It("refuses the checkpoint in a muscle that was never toggled", func() {
		fresh := newElastic()
		Expect(fresh.SetState(buf)).To(MatchError(muscle.ErrStateVersion))
		Expect(fresh.StateVersion()).To(Equal(0))
	})

	It("starts an empty history when switched back to elastic", func() {
		m.SetRigidTendon(false)
		Expect(m.StateVersion()).To(Equal(2))
		Expect(m.HasPersistentState()).To(BeTrue())

		st, ok := m.EquilibriumState()
		Expect(ok).To(BeTrue())
		Expect(st.HistoryValid).To(BeFalse())
		Expect(st.LengthValid).To(BeFalse())
		Expect(st.H).To(BeZero())

		Expect(m.SetState(buf)).To(MatchError(muscle.ErrStateVersion))
	})
})
