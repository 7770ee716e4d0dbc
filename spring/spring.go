// Package spring animates a scalar value toward a moving goal using the exact
// closed-form solution of a damped harmonic oscillator. Because each step
// evaluates the analytic solution rather than a numeric approximation, steps
// of any size land on the true trajectory: one big Advance ends exactly where
// many small ones would.
package spring

import "math"

const twoPi = 2 * math.Pi

// seriesEpsilon is the threshold below which the sin(x)/x shaped ratios in
// the underdamped solution switch to their Maclaurin expansions. Dividing two
// near-zero values cancels catastrophically; the series stays accurate.
const seriesEpsilon = 1e-5

// Sleep thresholds. Displacement under 1/3840 of a unit and speed under 0.01
// units per second are beneath what any output can show, so a driver may stop
// stepping until the goal moves again.
const (
	sleepVelocitySq = 1e-4
	sleepOffsetSq   = (1.0 / 3840) * (1.0 / 3840)
)

// Spring is one scalar degree of freedom pulled toward a goal by an ideal
// damped spring. Frequency is the undamped oscillation rate in Hz. The
// damping ratio selects the motion regime: below 1 the value overshoots and
// rings, exactly 1 settles as fast as possible without ringing, above 1
// creeps in without ever crossing the goal.
//
// A Spring is plain state with no internal locking; confine each instance to
// a single goroutine.
type Spring struct {
	frequency    float64
	dampingRatio float64
	goal         float64
	position     float64
	velocity     float64
}

// New creates a spring at rest: position and goal both start at startPosition
// and velocity at zero, so CanSleep reports true until something retargets or
// disturbs it. It fails if frequency times dampingRatio is negative, which
// would make the spring diverge instead of settling.
func New(startPosition, frequency, dampingRatio float64) (*Spring, error) {
	return NewWithGoal(startPosition, frequency, dampingRatio, startPosition)
}

// NewWithGoal is New with the goal already displaced from the start position,
// so the spring begins moving on the first Advance.
func NewWithGoal(startPosition, frequency, dampingRatio, goal float64) (*Spring, error) {
	if frequency*dampingRatio < 0 {
		return nil, &InvalidParametersError{Frequency: frequency, DampingRatio: dampingRatio}
	}
	return &Spring{
		frequency:    frequency,
		dampingRatio: dampingRatio,
		goal:         goal,
		position:     startPosition,
	}, nil
}

// Advance steps the simulation by deltaTime seconds and returns the new
// position. deltaTime only has to be finite: zero leaves the state unchanged
// and a negative value rewinds along the same trajectory.
func (s *Spring) Advance(deltaTime float64) float64 {
	f := s.frequency * twoPi
	d := s.dampingRatio
	offset := s.position - s.goal

	if f == 0 {
		// No restoring force, so the state drifts at its current velocity.
		s.position += s.velocity * deltaTime
		return s.position
	}

	var position, velocity float64
	if d == 1 {
		// Critically damped: (A + B·t)·e^(-f·t).
		q := math.Exp(-f * deltaTime)
		w := deltaTime * q

		position = offset*(q+w*f) + s.velocity*w + s.goal
		velocity = s.velocity*(q-w*f) - offset*(w*f*f)
	} else if d < 1 {
		// Underdamped: a decaying oscillation at f·c rad/s, c = sqrt(1-d²).
		c := math.Sqrt(1 - d*d)
		a := f * deltaTime
		q := math.Exp(-d * a)
		i := math.Cos(c * a)
		j := math.Sin(c * a)

		// z = sin(c·a)/c and y = sin(c·a)/(f·c) have removable singularities
		// at d = 1 and f = 0. Near either one the quotient cancels
		// catastrophically, so switch to its Maclaurin expansion instead.
		var z float64
		if c > seriesEpsilon {
			z = j / c
		} else {
			z = a + ((a*a*(c*c*c*c)/20-c*c)*(a*a*a))/6
		}

		var y float64
		if fc := f * c; math.Abs(fc) > seriesEpsilon {
			y = j / fc
		} else {
			y = deltaTime + ((deltaTime*deltaTime*(fc*fc*fc*fc)/20-fc*fc)*
				(deltaTime*deltaTime*deltaTime))/6
		}

		position = q*(offset*(i+z*d)+s.velocity*y) + s.goal
		velocity = q * (s.velocity*(i-z*d) - offset*(z*f))
	} else {
		// Overdamped: two decaying exponentials. r1 is the fast rate, r2 the
		// slow one that dominates the approach to the goal.
		c := math.Sqrt(d*d - 1)
		r1 := -f * (d + c)
		r2 := -f * (d - c)

		co2 := (s.velocity - offset*r1) / (2 * f * c)
		co1 := math.Exp(r1*deltaTime) * (offset - co2)
		co2 *= math.Exp(r2 * deltaTime)

		position = co1 + co2 + s.goal
		velocity = co1*r1 + co2*r2
	}

	s.position = position
	s.velocity = velocity
	return position
}

// CanSleep reports whether the spring has settled: both the remaining offset
// from the goal and the velocity are below the package sleep thresholds, so
// further stepping would change nothing visible.
func (s *Spring) CanSleep() bool {
	offset := s.goal - s.position
	return s.velocity*s.velocity <= sleepVelocitySq && offset*offset <= sleepOffsetSq
}

// Goal returns the value the spring is pulled toward.
func (s *Spring) Goal() float64 { return s.goal }

// SetGoal retargets the spring. Position and velocity are untouched, so the
// motion bends toward the new goal without a visible jump.
func (s *Spring) SetGoal(goal float64) { s.goal = goal }

// Position returns the current animated value.
func (s *Spring) Position() float64 { return s.position }

// SetPosition teleports the animated value, keeping the current velocity.
func (s *Spring) SetPosition(position float64) { s.position = position }

// Velocity returns the current rate of change in units per second.
func (s *Spring) Velocity() float64 { return s.velocity }

// SetVelocity overrides the current rate of change. A quick way to give a
// settled spring a kick without moving its goal.
func (s *Spring) SetVelocity(velocity float64) { s.velocity = velocity }

// Frequency returns the undamped oscillation rate in Hz.
func (s *Spring) Frequency() float64 { return s.frequency }

// SetFrequency replaces the oscillation rate. It fails if the new value
// combined with the stored damping ratio could not converge, leaving the
// spring unchanged.
func (s *Spring) SetFrequency(frequency float64) error {
	if frequency*s.dampingRatio < 0 {
		return &InvalidParametersError{Frequency: frequency, DampingRatio: s.dampingRatio}
	}
	s.frequency = frequency
	return nil
}

// DampingRatio returns the damping ratio.
func (s *Spring) DampingRatio() float64 { return s.dampingRatio }

// SetDampingRatio replaces the damping ratio. It fails if the new value
// combined with the stored frequency could not converge, leaving the spring
// unchanged.
func (s *Spring) SetDampingRatio(dampingRatio float64) error {
	if s.frequency*dampingRatio < 0 {
		return &InvalidParametersError{Frequency: s.frequency, DampingRatio: dampingRatio}
	}
	s.dampingRatio = dampingRatio
	return nil
}
