// Package psychro computes moist-air state from any two of temperature,
// relative humidity, dew point and absolute humidity.
//
// Temperatures are °F at every exported boundary, relative humidity is a
// percentage and absolute humidity is g/m³. The Magnus formula is evaluated in
// °C internally.
package psychro

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInsufficientInputs is returned when fewer than two quantities are known.
	ErrInsufficientInputs = errors.New("psychro: at least 2 known values are required")

	// ErrConvergenceFailure is matched by *ConvergenceError.
	ErrConvergenceFailure = errors.New("psychro: iteration did not converge")

	// ErrDomain is matched by *DomainError.
	ErrDomain = errors.New("psychro: value outside the physical domain")
)

// Field names used in errors and JSON.
const (
	FieldTemperature      = "temperature"
	FieldRelativeHumidity = "relative_humidity"
	FieldDewPoint         = "dew_point"
	FieldAbsoluteHumidity = "absolute_humidity"
)

// Pair identifies which two quantities drove a solve.
type Pair string

// Known pairs in dispatch order.
const (
	PairTempRH Pair = "temperature/relative_humidity"
	PairTempDP Pair = "temperature/dew_point"
	PairTempAH Pair = "temperature/absolute_humidity"
	PairRHDP   Pair = "relative_humidity/dew_point"
	PairRHAH   Pair = "relative_humidity/absolute_humidity"
	PairDPAH   Pair = "dew_point/absolute_humidity"
)

// Method records how the unknown quantities were obtained.
type Method string

const (
	MethodClosedForm Method = "closed-form"
	MethodFixedStep  Method = "fixed-step"
	MethodBisection  Method = "bisection"
	MethodSaturated  Method = "saturated"
)

// Input is a partially known state. Nil fields are unknown.
type Input struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	RelativeHumidity *float64 `json:"relative_humidity,omitempty"`
	DewPoint         *float64 `json:"dew_point,omitempty"`
	AbsoluteHumidity *float64 `json:"absolute_humidity,omitempty"`
}

// Known returns the number of non-nil fields.
func (in Input) Known() int {
	n := 0
	for _, v := range []*float64{in.Temperature, in.RelativeHumidity, in.DewPoint, in.AbsoluteHumidity} {
		if v != nil {
			n++
		}
	}
	return n
}

// State is a fully solved psychrometric state.
type State struct {
	Temperature      float64 `json:"temperature"`
	RelativeHumidity float64 `json:"relative_humidity"`
	DewPoint         float64 `json:"dew_point"`
	AbsoluteHumidity float64 `json:"absolute_humidity"`
}

// Rounded returns the state at display precision: one decimal for
// temperature, relative humidity and dew point, two for absolute humidity.
func (s State) Rounded() State {
	return State{
		Temperature:      roundTo(s.Temperature, 1),
		RelativeHumidity: roundTo(s.RelativeHumidity, 1),
		DewPoint:         roundTo(s.DewPoint, 1),
		AbsoluteHumidity: roundTo(s.AbsoluteHumidity, 2),
	}
}

// firstNonFinite returns the name and value of the first field that is NaN or
// infinite.
func (s State) firstNonFinite() (string, float64, bool) {
	fields := []struct {
		name string
		v    float64
	}{
		{FieldTemperature, s.Temperature},
		{FieldRelativeHumidity, s.RelativeHumidity},
		{FieldDewPoint, s.DewPoint},
		{FieldAbsoluteHumidity, s.AbsoluteHumidity},
	}
	for _, f := range fields {
		if !isFinite(f.v) {
			return f.name, f.v, true
		}
	}
	return "", 0, false
}

// Solution is the result of a solve.
type Solution struct {
	State      State  `json:"state"`
	Pair       Pair   `json:"pair"`
	Method     Method `json:"method"`
	Iterations int    `json:"iterations"`
	Converged  bool   `json:"converged"`
}

// ConvergenceError reports that neither the fixed-step correction nor the
// bisection fallback met the tolerance. The Solution returned alongside it
// holds the best estimate found.
type ConvergenceError struct {
	Pair       Pair
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("psychro: no convergence solving from %s after %d iterations (residual %.4g)",
		e.Pair, e.Iterations, e.Residual)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergenceFailure }

// DomainError reports a non-finite input or result.
type DomainError struct {
	Pair  Pair
	Field string
	Value float64
}

func (e *DomainError) Error() string {
	if e.Pair == "" {
		return fmt.Sprintf("psychro: %s is not finite (%v)", e.Field, e.Value)
	}
	return fmt.Sprintf("psychro: %s is not finite (%v) solving from %s", e.Field, e.Value, e.Pair)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// Options tunes the iterative branches. Zero fields take the defaults.
type Options struct {
	// Tolerance applies to the matched quantity (g/m³ for absolute humidity).
	Tolerance float64
	// MaxIterations bounds each of the fixed-step and bisection phases.
	MaxIterations int
	// MinTemperature and MaxTemperature bracket the bisection fallback in °F.
	MinTemperature float64
	MaxTemperature float64
	// DisableFixedStep goes straight to bisection.
	DisableFixedStep bool
}

// DefaultOptions returns tolerance 0.01, 100 iterations and a -40..120 °F
// bracket.
func DefaultOptions() Options {
	return Options{
		Tolerance:      0.01,
		MaxIterations:  100,
		MinTemperature: -40,
		MaxTemperature: 120,
	}
}

// Solver dispatches a partial state to the matching equations. It holds no
// mutable state and is safe for concurrent use.
type Solver struct {
	opts Options
}

// NewSolver returns a Solver with opts, filling unset fields from
// DefaultOptions.
func NewSolver(opts Options) *Solver {
	def := DefaultOptions()
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.MinTemperature == 0 && opts.MaxTemperature == 0 {
		opts.MinTemperature, opts.MaxTemperature = def.MinTemperature, def.MaxTemperature
	}
	return &Solver{opts: opts}
}

// Options returns the effective options.
func (s *Solver) Options() Options { return s.opts }

var defaultSolver = NewSolver(DefaultOptions())

// Solve uses the default Solver.
func Solve(in Input) (Solution, error) {
	return defaultSolver.Solve(in)
}

// Solve completes in. When more than two fields are set, the first matching
// pair in dispatch order wins and the remaining fields are overwritten by
// derived values.
//
// Errors:
//   - ErrInsufficientInputs when fewer than two fields are set.
//   - *DomainError when an input or a derived value is not finite.
//   - *ConvergenceError when an iterative branch fails; the returned Solution
//     still carries the best estimate.
func (s *Solver) Solve(in Input) (Solution, error) {
	if in.Known() < 2 {
		return Solution{}, ErrInsufficientInputs
	}
	if err := checkInputs(in); err != nil {
		return Solution{}, err
	}

	sol, res := s.dispatch(in)
	if !sol.Converged {
		return sol, &ConvergenceError{Pair: sol.Pair, Iterations: sol.Iterations, Residual: res}
	}
	if field, v, bad := sol.State.firstNonFinite(); bad {
		return sol, &DomainError{Pair: sol.Pair, Field: field, Value: v}
	}
	return sol, nil
}

func checkInputs(in Input) error {
	known := []struct {
		name string
		v    *float64
	}{
		{FieldTemperature, in.Temperature},
		{FieldRelativeHumidity, in.RelativeHumidity},
		{FieldDewPoint, in.DewPoint},
		{FieldAbsoluteHumidity, in.AbsoluteHumidity},
	}
	for _, k := range known {
		if k.v != nil && !isFinite(*k.v) {
			return &DomainError{Field: k.name, Value: *k.v}
		}
	}
	return nil
}

// dispatch returns the solution and, for iterative branches, the final
// residual.
func (s *Solver) dispatch(in Input) (Solution, float64) {
	closed := func(p Pair, st State) (Solution, float64) {
		return Solution{State: st, Pair: p, Method: MethodClosedForm, Converged: true}, 0
	}

	switch {
	case in.Temperature != nil && in.RelativeHumidity != nil:
		t, rh := *in.Temperature, *in.RelativeHumidity
		return closed(PairTempRH, State{t, rh, DewPoint(t, rh), AbsoluteHumidity(t, rh)})

	case in.Temperature != nil && in.DewPoint != nil:
		t, dp := *in.Temperature, *in.DewPoint
		rh := RelativeHumidity(t, dp)
		return closed(PairTempDP, State{t, rh, dp, AbsoluteHumidity(t, rh)})

	case in.Temperature != nil && in.AbsoluteHumidity != nil:
		t, ah := *in.Temperature, *in.AbsoluteHumidity
		r := s.converge(search{
			residual: func(rh float64) float64 { return ah - AbsoluteHumidity(t, rh) },
			start:    50,
			gain:     5,
			lo:       0,
			hi:       100,
			clamp:    true,
			openLo:   true,
		})
		st := State{t, r.x, DewPoint(t, r.x), ah}
		return r.solution(PairTempAH, st), r.residual

	case in.RelativeHumidity != nil && in.DewPoint != nil:
		rh, dp := *in.RelativeHumidity, *in.DewPoint
		t := TemperatureFromDewPointAndRH(dp, rh)
		return closed(PairRHDP, State{t, rh, dp, AbsoluteHumidity(t, rh)})

	case in.RelativeHumidity != nil && in.AbsoluteHumidity != nil:
		rh, ah := *in.RelativeHumidity, *in.AbsoluteHumidity
		r := s.converge(search{
			residual: func(t float64) float64 { return ah - AbsoluteHumidity(t, rh) },
			start:    70,
			gain:     2,
			lo:       s.opts.MinTemperature,
			hi:       s.opts.MaxTemperature,
		})
		st := State{r.x, rh, DewPoint(r.x, rh), ah}
		return r.solution(PairRHAH, st), r.residual

	default:
		dp, ah := *in.DewPoint, *in.AbsoluteHumidity
		// Saturated air: the target is reachable with T = DP.
		if math.Abs(AbsoluteHumidity(dp, 100)-ah) < 0.1 {
			return Solution{
				State:     State{dp, 100, dp, ah},
				Pair:      PairDPAH,
				Method:    MethodSaturated,
				Converged: true,
			}, 0
		}
		r := s.converge(search{
			residual: func(t float64) float64 { return ah - AbsoluteHumidity(t, RelativeHumidity(t, dp)) },
			start:    dp + 10,
			gain:     2,
			lo:       s.opts.MinTemperature,
			hi:       s.opts.MaxTemperature,
		})
		st := State{r.x, RelativeHumidity(r.x, dp), dp, ah}
		return r.solution(PairDPAH, st), r.residual
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
