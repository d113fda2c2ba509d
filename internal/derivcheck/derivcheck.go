// Package derivcheck compares a muscle's analytic force derivatives with
// central differences of its force.
package derivcheck

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
)

type Options struct {
	// Step is relative to max(|x|, 1).
	Step float64
	// Tolerance is the allowed relative error.
	Tolerance float64
	// Floor is an absolute error, as a fraction of the maximum isometric
	// force, below which derivatives count as equal.
	Floor float64
}

func DefaultOptions() Options {
	return Options{Step: 1e-6, Tolerance: 1e-6, Floor: 1e-6}
}

// Point is an input to check.
type Point struct {
	Length     float64
	Rate       float64
	Activation float64
}

// Grid spans lengths from 0.6 to 1.3 optimal fiber lengths beyond the
// tendon slack length, shortening, isometric and lengthening rates, and low,
// half and full activation.
func Grid(p muscle.Params) []Point {
	var points []Point
	for _, f := range []float64{0.6, 1, 1.3} {
		l := p.TendonSlackLength + f*p.OptFiberLength
		for _, ldot := range []float64{-0.05, 0, 0.05} {
			for _, a := range []float64{0.1, 0.5, 1} {
				points = append(points, Point{Length: l, Rate: ldot, Activation: a})
			}
		}
	}
	return points
}

type Result struct {
	Point
	Force float64

	AnalyticLength, NumericLength float64
	AnalyticRate, NumericRate     float64
	ErrLength, ErrRate            float64

	OK bool
}

func (r Result) String() string {
	status := "ok"
	if !r.OK {
		status = "FAIL"
	}
	return fmt.Sprintf("l=%.4f ldot=%.4f a=%.2f  dF/dl %.6g vs %.6g (%.2e)  dF/dldot %.6g vs %.6g (%.2e)  %s",
		r.Length, r.Rate, r.Activation,
		r.AnalyticLength, r.NumericLength, r.ErrLength,
		r.AnalyticRate, r.NumericRate, r.ErrRate, status)
}

// Check evaluates the analytic derivatives at p, differences the force
// around p, and finally evaluates p again so the muscle is left holding the
// solution at p. The muscle's history is never advanced.
func Check(m *muscle.Muscle, p Point, opts Options) (Result, error) {
	r := Result{Point: p}

	var err error
	r.Force, r.AnalyticLength, r.AnalyticRate, err = m.ComputeTangent(p.Length, p.Rate, p.Activation)
	if err != nil {
		return r, err
	}

	r.NumericLength, err = central(func(x float64) (float64, error) {
		return m.ComputeForce(x, p.Rate, p.Activation)
	}, p.Length, opts.Step)
	if err != nil {
		return r, fmt.Errorf("length difference: %w", err)
	}
	r.NumericRate, err = central(func(x float64) (float64, error) {
		return m.ComputeForce(p.Length, x, p.Activation)
	}, p.Rate, opts.Step)
	if err != nil {
		return r, fmt.Errorf("rate difference: %w", err)
	}

	if _, err := m.ComputeForce(p.Length, p.Rate, p.Activation); err != nil {
		return r, err
	}

	floor := opts.Floor * m.Params().MaxIsoForce
	var okL, okR bool
	r.ErrLength, okL = compare(r.AnalyticLength, r.NumericLength, opts.Tolerance, floor)
	r.ErrRate, okR = compare(r.AnalyticRate, r.NumericRate, opts.Tolerance, floor)
	r.OK = okL && okR
	return r, nil
}

// CheckAll runs Check over points in parallel, each on a muscle fresh from
// build. History-dependent checks need a builder that restores the history.
func CheckAll(build func() (*muscle.Muscle, error), points []Point, opts Options) ([]Result, error) {
	results := make([]Result, len(points))
	errs := make([]error, len(points))

	dynamo.ParallelFor(len(points), 4, func(start, end int) {
		for k := start; k < end; k++ {
			m, err := build()
			if err != nil {
				errs[k] = err
				continue
			}
			results[k], errs[k] = Check(m, points[k], opts)
		}
	})

	for k, err := range errs {
		if err != nil {
			return results, fmt.Errorf("point %d: %w", k, err)
		}
	}
	return results, nil
}

func central(f func(float64) (float64, error), x, rel float64) (float64, error) {
	var failed error
	d := fd.Derivative(func(x float64) float64 {
		v, err := f(x)
		if err != nil && failed == nil {
			failed = err
		}
		return v
	}, x, &fd.Settings{Formula: fd.Central, Step: rel * math.Max(math.Abs(x), 1)})
	return d, failed
}

// compare returns the relative error and whether it is within tol or the
// absolute difference is within floor.
func compare(analytic, numeric, tol, floor float64) (float64, bool) {
	diff := math.Abs(analytic - numeric)
	scale := math.Max(math.Abs(analytic), math.Abs(numeric))
	rel := 0.0
	if scale > 0 {
		rel = diff / scale
	}
	return rel, rel <= tol || diff <= floor
}
