// Package curves provides the normalized scalar curves that shape a
// Hill-type muscle.
//
// Every curve implements [Curve] and is consumed only through its value and
// first derivative:
//
//   - [Gaussian]: active force-length
//   - [ExponentialPassive]: passive force-length
//   - [AsinhVelocity]: force-velocity
//   - [ExponentialTendon]: tendon force-length, zero below slack
//   - [HermiteSpline]: tabulated curve with cubic Hermite segments
//
// A [CurveSet] bundles the four curves a muscle needs. [DeGroote2016]
// returns the closed-form set from De Groote et al. (2016); [Stiff] scales
// its tendon stiffness and [Tabulated] converts any set into splines.
//
// # Example
//
//	cs := curves.DeGroote2016()
//	f := cs.ActiveForceLength.Value(1.0) // 1.0 at optimal length
package curves
