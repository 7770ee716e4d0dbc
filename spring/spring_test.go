package spring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const frame = 1.0 / 60

func TestNew_StartsAtRest(t *testing.T) {
	s, err := New(5, 4, 1)

	assert.NoError(t, err)
	assert.Equal(t, 5.0, s.Position())
	assert.Equal(t, 5.0, s.Goal())
	assert.Equal(t, 0.0, s.Velocity())
	assert.Equal(t, 4.0, s.Frequency())
	assert.Equal(t, 1.0, s.DampingRatio())
	assert.True(t, s.CanSleep(), "a spring born at its goal has nothing to do")
}

func TestNew_RejectsDivergentPairs(t *testing.T) {
	for _, pair := range [][2]float64{
		{1, -0.5},
		{-1, 0.5},
		{4, -1},
		{-0.1, 3},
	} {
		s, err := New(0, pair[0], pair[1])

		assert.Nil(t, s, "frequency %g damping %g", pair[0], pair[1])
		assert.ErrorIs(t, err, ErrInvalidParameters, "frequency %g damping %g", pair[0], pair[1])

		var invalid *InvalidParametersError
		if assert.ErrorAs(t, err, &invalid) {
			assert.Equal(t, pair[0], invalid.Frequency)
			assert.Equal(t, pair[1], invalid.DampingRatio)
		}
	}
}

func TestNew_AcceptsZeroAndMirroredSigns(t *testing.T) {
	// The product rule admits zeroes and matched negative signs; both still
	// describe a spring that settles.
	for _, pair := range [][2]float64{{0, 2}, {3, 0}, {0, 0}, {-4, -0.5}} {
		_, err := New(0, pair[0], pair[1])
		assert.NoError(t, err, "frequency %g damping %g", pair[0], pair[1])
	}
}

func TestSetters_RevalidateAgainstStoredState(t *testing.T) {
	s, err := New(0, 4, 0.5)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.SetFrequency(-4), ErrInvalidParameters)
	assert.Equal(t, 4.0, s.Frequency(), "a failed set must leave the spring untouched")

	assert.ErrorIs(t, s.SetDampingRatio(-1), ErrInvalidParameters)
	assert.Equal(t, 0.5, s.DampingRatio(), "a failed set must leave the spring untouched")

	// Flipping both signs is legal one step at a time through zero.
	assert.NoError(t, s.SetDampingRatio(0))
	assert.NoError(t, s.SetFrequency(-4))
	assert.NoError(t, s.SetDampingRatio(-0.5))
}

func TestSetGoal_KeepsMotionContinuous(t *testing.T) {
	s, err := NewWithGoal(0, 4, 0.5, 1)
	assert.NoError(t, err)

	s.Advance(frame)
	position, velocity := s.Position(), s.Velocity()

	s.SetGoal(-3)

	assert.Equal(t, -3.0, s.Goal())
	assert.Equal(t, position, s.Position(), "retargeting must not move the value")
	assert.Equal(t, velocity, s.Velocity(), "retargeting must not change the velocity")
}

func TestAdvance_ZeroStepIsIdentity(t *testing.T) {
	for _, damping := range []float64{0.5, 1, 2} {
		s, err := NewWithGoal(0, 4, damping, 1)
		assert.NoError(t, err)
		s.SetVelocity(2)
		s.Advance(frame)

		position, velocity := s.Position(), s.Velocity()
		s.Advance(0)

		assert.InDelta(t, position, s.Position(), 1e-9, "damping %g", damping)
		assert.InDelta(t, velocity, s.Velocity(), 1e-9, "damping %g", damping)
	}
}

func TestAdvance_EquilibriumIsFixedPoint(t *testing.T) {
	for _, damping := range []float64{0.5, 1, 2} {
		s, err := New(7, 4, damping)
		assert.NoError(t, err)

		for range 100 {
			assert.Equal(t, 7.0, s.Advance(frame), "damping %g", damping)
		}
		assert.Equal(t, 0.0, s.Velocity(), "damping %g", damping)
	}
}

func TestAdvance_UnderdampedConvergesOnGoal(t *testing.T) {
	s, err := NewWithGoal(0, 4, 0.5, 1)
	assert.NoError(t, err)

	first := s.Advance(frame)
	assert.Greater(t, first, 0.0, "the spring must start moving immediately")
	assert.Less(t, first, 0.1, "one frame of a 4 Hz spring covers a few percent")

	peak := first
	for range 119 {
		peak = math.Max(peak, s.Advance(frame))
	}

	assert.Greater(t, peak, 1.0, "half damping rings through the goal")
	assert.Less(t, peak, 1.2, "the first overshoot tops out around 16%")
	assert.InDelta(t, 1.0, s.Position(), 1e-3, "two seconds is plenty of time to settle")
}

func TestAdvance_CriticalDampingNeverOvershoots(t *testing.T) {
	s, err := NewWithGoal(0, 4, 1, 1)
	assert.NoError(t, err)

	previous := 0.0
	for i := range 300 {
		position := s.Advance(frame)
		assert.LessOrEqual(t, position, 1.0, "crossed the goal at frame %d", i)
		assert.GreaterOrEqual(t, position, previous, "backed away from the goal at frame %d", i)
		previous = position
	}
	assert.InDelta(t, 1.0, s.Position(), 1e-3)
}

func TestAdvance_OverdampedCreepsWithoutCrossing(t *testing.T) {
	s, err := NewWithGoal(0, 4, 3, 1)
	assert.NoError(t, err)

	previous := 0.0
	for i := range 600 {
		position := s.Advance(frame)
		assert.LessOrEqual(t, position, 1.0, "crossed the goal at frame %d", i)
		assert.GreaterOrEqual(t, position, previous, "backed away from the goal at frame %d", i)
		previous = position
	}
	assert.InDelta(t, 1.0, s.Position(), 1e-2, "heavy damping is slow but steady")
}

func TestAdvance_ContinuousAcrossRegimeBoundary(t *testing.T) {
	build := func(damping float64) *Spring {
		s, err := NewWithGoal(0, 4, damping, 1)
		assert.NoError(t, err)
		s.SetVelocity(2)
		return s
	}

	under, critical, over := build(0.999), build(1), build(1.001)

	for i := range 30 {
		want := critical.Advance(frame)
		assert.InEpsilon(t, want, under.Advance(frame), 1e-3, "frame %d", i)
		assert.InEpsilon(t, want, over.Advance(frame), 1e-3, "frame %d", i)
	}
}

func TestAdvance_StableJustOffCriticalDamping(t *testing.T) {
	for _, damping := range []float64{0.9999, 1.0001, 1 - 1e-7, 1 + 1e-7, 1 - 1e-12, 1 + 1e-12} {
		probe, err := NewWithGoal(0, 4, damping, 1)
		assert.NoError(t, err)
		reference, err := NewWithGoal(0, 4, 1, 1)
		assert.NoError(t, err)

		for i := range 120 {
			got := probe.Advance(frame)
			want := reference.Advance(frame)

			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0), "damping %g frame %d", damping, i)
			assert.InDelta(t, want, got, 1e-4, "damping %g frame %d", damping, i)
		}
	}
}

func TestAdvance_StepSizeIndependent(t *testing.T) {
	for _, damping := range []float64{0.5, 1, 2} {
		coarse, err := NewWithGoal(2, 4, damping, -1)
		assert.NoError(t, err)
		fine, err := NewWithGoal(2, 4, damping, -1)
		assert.NoError(t, err)
		coarse.SetVelocity(-3)
		fine.SetVelocity(-3)

		// The closed form is a flow: one big step must land exactly where a
		// chain of small ones does.
		coarse.Advance(0.1)
		for range 10 {
			fine.Advance(0.01)
		}

		assert.InDelta(t, coarse.Position(), fine.Position(), 1e-9, "damping %g", damping)
		assert.InDelta(t, coarse.Velocity(), fine.Velocity(), 1e-9, "damping %g", damping)
	}
}

func TestAdvance_NegativeStepRewinds(t *testing.T) {
	for _, damping := range []float64{0.5, 1, 2} {
		s, err := NewWithGoal(0.25, 4, damping, 1)
		assert.NoError(t, err)
		s.SetVelocity(1.5)

		s.Advance(0.05)
		s.Advance(-0.05)

		assert.InDelta(t, 0.25, s.Position(), 1e-6, "damping %g", damping)
		assert.InDelta(t, 1.5, s.Velocity(), 1e-6, "damping %g", damping)
	}
}

func TestAdvance_ZeroFrequencyDriftsAtConstantVelocity(t *testing.T) {
	for _, damping := range []float64{0, 1, 2.5} {
		s, err := New(1, 0, damping)
		assert.NoError(t, err)
		s.SetVelocity(3)

		s.Advance(0.5)
		assert.InDelta(t, 2.5, s.Position(), 1e-12, "damping %g", damping)

		s.Advance(0.5)
		assert.InDelta(t, 4.0, s.Position(), 1e-12, "damping %g", damping)
		assert.Equal(t, 3.0, s.Velocity(), "with no restoring force the velocity never changes")
	}
}

func TestAdvance_MirroredSignsMatchPositivePair(t *testing.T) {
	for _, pair := range [][2]float64{{4, 0.5}, {4, 1}} {
		positive, err := NewWithGoal(0, pair[0], pair[1], 1)
		assert.NoError(t, err)
		negative, err := NewWithGoal(0, -pair[0], -pair[1], 1)
		assert.NoError(t, err)

		// Negating both parameters leaves the equation of motion unchanged.
		for i := range 30 {
			assert.InDelta(t, positive.Advance(frame), negative.Advance(frame), 1e-9,
				"frequency %g damping %g frame %d", pair[0], pair[1], i)
		}
	}
}

func TestAdvance_NegativeFrequencyUsesExactQuotients(t *testing.T) {
	// frequency -3 with damping 0 is a valid pair (the product is zero) and
	// sits far from the removable singularities, so every step must come from
	// the exact closed form, not the small-angle expansions.
	positive, err := NewWithGoal(0.4, 3, 0, 1)
	assert.NoError(t, err)
	negative, err := NewWithGoal(0.4, -3, 0, 1)
	assert.NoError(t, err)

	for i := range 120 {
		assert.InDelta(t, positive.Advance(frame), negative.Advance(frame), 1e-9,
			"frame %d", i)
		assert.InDelta(t, positive.Velocity(), negative.Velocity(), 1e-9,
			"frame %d velocity", i)
	}
}

func TestAdvance_DeterministicAcrossRuns(t *testing.T) {
	steps := []float64{frame, 1.0 / 144, 0.2, 1.0 / 30, 0.004, frame}

	a, err := NewWithGoal(0, 4, 0.5, 1)
	assert.NoError(t, err)
	b, err := NewWithGoal(0, 4, 0.5, 1)
	assert.NoError(t, err)

	for _, dt := range steps {
		assert.Equal(t, a.Advance(dt), b.Advance(dt), "identical springs must agree bit for bit")
	}
}

func TestAdvance_HugeStepLandsOnGoal(t *testing.T) {
	for _, damping := range []float64{0.5, 1, 2} {
		s, err := NewWithGoal(-4, 4, damping, 3)
		assert.NoError(t, err)
		s.SetVelocity(50)

		assert.InDelta(t, 3.0, s.Advance(1e6), 1e-9, "damping %g", damping)
		assert.InDelta(t, 0.0, s.Velocity(), 1e-9, "damping %g", damping)
		assert.True(t, s.CanSleep(), "damping %g", damping)
	}
}

func TestCanSleep_AfterDisturbanceSettles(t *testing.T) {
	s, err := NewWithGoal(10, 4, 1, 0)
	assert.NoError(t, err)

	assert.False(t, s.CanSleep(), "ten units from the goal is wide awake")

	frames := 0
	for ; frames < 300 && !s.CanSleep(); frames++ {
		s.Advance(frame)
	}

	assert.Less(t, frames, 300, "a critically damped spring settles in well under five seconds")

	// Once asleep it stays asleep; the tail of the decay only shrinks.
	for range 60 {
		s.Advance(frame)
		assert.True(t, s.CanSleep())
	}
}

func TestCanSleep_ThresholdEdges(t *testing.T) {
	s, err := New(0, 4, 1)
	assert.NoError(t, err)

	s.SetVelocity(0.009)
	assert.True(t, s.CanSleep(), "slower than 0.01 units/s counts as still")

	s.SetVelocity(0.011)
	assert.False(t, s.CanSleep(), "faster than 0.01 units/s keeps it awake")

	s.SetVelocity(0)
	s.SetPosition(1.0 / 4000)
	assert.True(t, s.CanSleep(), "an offset inside 1/3840 is invisible")

	s.SetPosition(1.0 / 3000)
	assert.False(t, s.CanSleep(), "an offset outside 1/3840 still matters")
}

func TestSetPosition_TeleportsWithoutTouchingVelocity(t *testing.T) {
	s, err := NewWithGoal(0, 4, 0.5, 1)
	assert.NoError(t, err)
	s.Advance(frame)
	velocity := s.Velocity()

	s.SetPosition(-2)

	assert.Equal(t, -2.0, s.Position())
	assert.Equal(t, velocity, s.Velocity())
	assert.False(t, s.CanSleep())
}
