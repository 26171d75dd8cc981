package psychro

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestSolve_InsufficientInputs(t *testing.T) {
	cases := []struct {
		name string
		in   Input
	}{
		{"none", Input{}},
		{"temperature only", Input{Temperature: ptr(70)}},
		{"absolute humidity only", Input{AbsoluteHumidity: ptr(9)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Solve(tc.in)
			require.ErrorIs(t, err, ErrInsufficientInputs)
		})
	}
}

func TestSolve_TemperatureAndRH(t *testing.T) {
	sol, err := Solve(Input{Temperature: ptr(70), RelativeHumidity: ptr(30)})
	require.NoError(t, err)

	assert.Equal(t, PairTempRH, sol.Pair)
	assert.Equal(t, MethodClosedForm, sol.Method)
	assert.True(t, sol.Converged)
	assert.InDelta(t, 37.1, sol.State.DewPoint, 0.05)
	assert.InDelta(t, 5.52, sol.State.AbsoluteHumidity, 0.01)
}

func TestSolve_ExtrasAreOverwritten(t *testing.T) {
	// Dew point and AH are inconsistent with T/RH and must be replaced.
	sol, err := Solve(Input{
		Temperature:      ptr(70),
		RelativeHumidity: ptr(50),
		DewPoint:         ptr(10),
		AbsoluteHumidity: ptr(80),
	})
	require.NoError(t, err)
	assert.Equal(t, PairTempRH, sol.Pair)
	assert.InDelta(t, 50.49, sol.State.DewPoint, 0.01)
	assert.InDelta(t, 9.20, sol.State.AbsoluteHumidity, 0.01)
}

func TestSolve_DispatchOrder(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want Pair
	}{
		{"T+DP", Input{Temperature: ptr(70), DewPoint: ptr(50)}, PairTempDP},
		{"T+AH", Input{Temperature: ptr(70), AbsoluteHumidity: ptr(9.2)}, PairTempAH},
		{"T+DP+AH picks T+DP", Input{Temperature: ptr(70), DewPoint: ptr(50), AbsoluteHumidity: ptr(9.2)}, PairTempDP},
		{"RH+DP", Input{RelativeHumidity: ptr(50), DewPoint: ptr(50)}, PairRHDP},
		{"RH+AH", Input{RelativeHumidity: ptr(50), AbsoluteHumidity: ptr(9.2)}, PairRHAH},
		{"RH+DP+AH picks RH+DP", Input{RelativeHumidity: ptr(50), DewPoint: ptr(50), AbsoluteHumidity: ptr(9.2)}, PairRHDP},
		{"DP+AH", Input{DewPoint: ptr(50.49), AbsoluteHumidity: ptr(9.2)}, PairDPAH},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sol, err := Solve(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sol.Pair)
		})
	}
}

func TestSolve_BranchSymmetry(t *testing.T) {
	for temp := 40.0; temp <= 100; temp += 10 {
		for rh := 20.0; rh <= 90; rh += 10 {
			base, err := Solve(Input{Temperature: ptr(temp), RelativeHumidity: ptr(rh)})
			require.NoError(t, err)
			dp, ah := base.State.DewPoint, base.State.AbsoluteHumidity

			sol, err := Solve(Input{Temperature: ptr(temp), DewPoint: ptr(dp)})
			require.NoError(t, err)
			assert.InDelta(t, rh, sol.State.RelativeHumidity, 0.01, "T+DP at %v/%v", temp, rh)

			sol, err = Solve(Input{Temperature: ptr(temp), AbsoluteHumidity: ptr(ah)})
			require.NoError(t, err)
			assert.InDelta(t, rh, sol.State.RelativeHumidity, 0.2, "T+AH at %v/%v", temp, rh)

			sol, err = Solve(Input{RelativeHumidity: ptr(rh), DewPoint: ptr(dp)})
			require.NoError(t, err)
			assert.InDelta(t, temp, sol.State.Temperature, 0.01, "RH+DP at %v/%v", temp, rh)

			sol, err = Solve(Input{RelativeHumidity: ptr(rh), AbsoluteHumidity: ptr(ah)})
			require.NoError(t, err)
			assert.InDelta(t, temp, sol.State.Temperature, 0.25, "RH+AH at %v/%v", temp, rh)

			// AH barely depends on T once DP is fixed, so only the matched
			// quantity is held to the tolerance here.
			sol, err = Solve(Input{DewPoint: ptr(dp), AbsoluteHumidity: ptr(ah)})
			require.NoError(t, err)
			got := AbsoluteHumidity(sol.State.Temperature, sol.State.RelativeHumidity)
			assert.InDelta(t, ah, got, 0.1, "DP+AH at %v/%v", temp, rh)
		}
	}
}

func TestSolve_FixedStepConvergesOnEasyInputs(t *testing.T) {
	sol, err := Solve(Input{RelativeHumidity: ptr(40), AbsoluteHumidity: ptr(AbsoluteHumidity(75, 40))})
	require.NoError(t, err)
	assert.Equal(t, MethodFixedStep, sol.Method)
	assert.InDelta(t, 75, sol.State.Temperature, 0.1)
	assert.Less(t, sol.Iterations, 100)
}

func TestSolve_BisectionFallback(t *testing.T) {
	t.Run("DP+AH diverges under fixed step", func(t *testing.T) {
		dp := DewPoint(70, 50)
		sol, err := Solve(Input{DewPoint: ptr(dp), AbsoluteHumidity: ptr(AbsoluteHumidity(70, 50))})
		require.NoError(t, err)
		assert.Equal(t, MethodBisection, sol.Method)
		assert.True(t, sol.Converged)
		assert.InDelta(t, 70, sol.State.Temperature, 0.5)
		assert.InDelta(t, 50, sol.State.RelativeHumidity, 1)
	})

	t.Run("RH+AH oscillates near saturation", func(t *testing.T) {
		sol, err := Solve(Input{RelativeHumidity: ptr(100), AbsoluteHumidity: ptr(35)})
		require.NoError(t, err)
		assert.Equal(t, MethodBisection, sol.Method)
		assert.InDelta(t, 35, AbsoluteHumidity(sol.State.Temperature, 100), 0.01)
		assert.InDelta(t, sol.State.Temperature, sol.State.DewPoint, 1e-9)
	})

	t.Run("T+AH oscillates at high temperature", func(t *testing.T) {
		sol, err := Solve(Input{Temperature: ptr(100), AbsoluteHumidity: ptr(AbsoluteHumidity(100, 80))})
		require.NoError(t, err)
		assert.Equal(t, MethodBisection, sol.Method)
		assert.InDelta(t, 80, sol.State.RelativeHumidity, 0.1)
	})
}

func TestSolve_BisectionOnly(t *testing.T) {
	s := NewSolver(Options{DisableFixedStep: true})
	sol, err := s.Solve(Input{RelativeHumidity: ptr(50), AbsoluteHumidity: ptr(AbsoluteHumidity(70, 50))})
	require.NoError(t, err)
	assert.Equal(t, MethodBisection, sol.Method)
	assert.InDelta(t, 70, sol.State.Temperature, 0.1)
}

func TestSolve_ColdAbsoluteHumidityStaysFinite(t *testing.T) {
	// Near-dry cold air: the AH residual is inside tolerance at RH 0, where
	// the dew point is undefined.
	tests := []struct{ temp, rh float64 }{
		{-30, 1},
		{-40, 4},
		{-40, 0.5},
		{-20, 2},
	}
	for _, tc := range tests {
		sol, err := Solve(Input{Temperature: ptr(tc.temp), AbsoluteHumidity: ptr(AbsoluteHumidity(tc.temp, tc.rh))})
		require.NoError(t, err, "T=%v RH=%v", tc.temp, tc.rh)
		assert.True(t, sol.Converged)
		assert.Greater(t, sol.State.RelativeHumidity, 0.0)
		assert.False(t, math.IsNaN(sol.State.DewPoint) || math.IsInf(sol.State.DewPoint, 0))
		assert.Less(t, sol.State.DewPoint, tc.temp)
	}
}

func TestBisect_OpenLowerBound(t *testing.T) {
	s := NewSolver(Options{})
	q := search{
		residual: func(x float64) float64 { return 0.005 - x/100 },
		lo:       0,
		hi:       100,
	}

	closed := s.bisect(q)
	assert.True(t, closed.converged)
	assert.Zero(t, closed.x)

	q.openLo = true
	open := s.bisect(q)
	assert.True(t, open.converged)
	assert.Greater(t, open.x, 0.0)

	// No sign change: the open end is never reported.
	q.residual = func(x float64) float64 { return 0.005 + x }
	assert.Equal(t, 100.0, s.bisect(q).x)
}

func TestSolve_SaturatedShortcut(t *testing.T) {
	sol, err := Solve(Input{DewPoint: ptr(50), AbsoluteHumidity: ptr(AbsoluteHumidity(50, 100) + 0.05)})
	require.NoError(t, err)
	assert.Equal(t, MethodSaturated, sol.Method)
	assert.InDelta(t, 50.0, sol.State.Temperature, 1e-12)
	assert.InDelta(t, 100.0, sol.State.RelativeHumidity, 1e-12)
}

func TestSolve_ConvergenceFailureReturnsEstimate(t *testing.T) {
	// 30 g/m³ is above saturation at 70°F; no RH can reach it.
	sol, err := Solve(Input{Temperature: ptr(70), AbsoluteHumidity: ptr(30)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConvergenceFailure)

	var convErr *ConvergenceError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, PairTempAH, convErr.Pair)
	assert.Greater(t, convErr.Residual, 10.0)

	assert.False(t, sol.Converged)
	assert.InDelta(t, 100, sol.State.RelativeHumidity, 1e-9)
	assert.InDelta(t, 70, sol.State.DewPoint, 1e-9)
}

func TestSolve_DomainErrors(t *testing.T) {
	t.Run("zero RH has no dew point", func(t *testing.T) {
		_, err := Solve(Input{Temperature: ptr(70), RelativeHumidity: ptr(0)})
		require.ErrorIs(t, err, ErrDomain)
		var domErr *DomainError
		require.ErrorAs(t, err, &domErr)
		assert.Equal(t, FieldDewPoint, domErr.Field)
		assert.Equal(t, PairTempRH, domErr.Pair)
	})

	t.Run("non-finite input", func(t *testing.T) {
		_, err := Solve(Input{Temperature: ptr(math.NaN()), RelativeHumidity: ptr(50)})
		require.ErrorIs(t, err, ErrDomain)
		var domErr *DomainError
		require.ErrorAs(t, err, &domErr)
		assert.Equal(t, FieldTemperature, domErr.Field)
	})
}

func TestNewSolver_Defaults(t *testing.T) {
	s := NewSolver(Options{})
	assert.Equal(t, DefaultOptions(), s.Options())

	s = NewSolver(Options{Tolerance: 0.001, MaxIterations: 500})
	assert.InDelta(t, 0.001, s.Options().Tolerance, 1e-12)
	assert.Equal(t, 500, s.Options().MaxIterations)
	assert.InDelta(t, -40.0, s.Options().MinTemperature, 1e-12)
}

func TestState_Rounded(t *testing.T) {
	st := State{Temperature: 70.04, RelativeHumidity: 49.96, DewPoint: 50.494, AbsoluteHumidity: 9.19949}
	assert.Equal(t, State{Temperature: 70.0, RelativeHumidity: 50.0, DewPoint: 50.5, AbsoluteHumidity: 9.2}, st.Rounded())
}
