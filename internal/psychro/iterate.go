package psychro

import "math"

// search describes a one-dimensional root search. residual returns
// target minus computed; the root is where it falls within tolerance.
type search struct {
	residual func(x float64) float64
	start    float64
	gain     float64
	lo, hi   float64
	// clamp keeps fixed-step estimates inside [lo, hi].
	clamp bool
	// openLo excludes lo itself from the answer; the state there is undefined.
	openLo bool
}

// floor is the smallest estimate the search may return.
func (q search) floor() float64 {
	if q.openLo {
		return math.Nextafter(q.lo, q.hi)
	}
	return q.lo
}

type searchResult struct {
	x          float64
	residual   float64
	method     Method
	iterations int
	converged  bool
}

func (r searchResult) solution(p Pair, st State) Solution {
	return Solution{
		State:      st,
		Pair:       p,
		Method:     r.method,
		Iterations: r.iterations,
		Converged:  r.converged,
	}
}

// converge runs the fixed-step correction and falls back to bisection over
// [lo, hi] when the correction stalls, oscillates or leaves the finite domain.
// On failure the estimate with the smaller finite residual is kept.
func (s *Solver) converge(q search) searchResult {
	if s.opts.DisableFixedStep {
		return s.bisect(q)
	}
	fixed := s.fixedStep(q)
	if fixed.converged {
		return fixed
	}
	bis := s.bisect(q)
	bis.iterations += fixed.iterations
	if bis.converged {
		return bis
	}
	if betterEstimate(fixed, bis) {
		fixed.iterations = bis.iterations
		return fixed
	}
	return bis
}

func betterEstimate(a, b searchResult) bool {
	if !isFinite(a.residual) || !isFinite(a.x) {
		return false
	}
	if !isFinite(b.residual) || !isFinite(b.x) {
		return true
	}
	return math.Abs(a.residual) < math.Abs(b.residual)
}

// fixedStep nudges x by residual·gain until the residual is inside tolerance.
// The gains were tuned for the local slope of each relationship and do not
// converge everywhere.
func (s *Solver) fixedStep(q search) searchResult {
	x := q.start
	var res float64
	for i := 0; i < s.opts.MaxIterations; i++ {
		res = q.residual(x)
		if !isFinite(res) {
			return searchResult{x: x, residual: res, method: MethodFixedStep, iterations: i}
		}
		if math.Abs(res) < s.opts.Tolerance {
			return searchResult{x: x, residual: res, method: MethodFixedStep, iterations: i, converged: true}
		}
		x += res * q.gain
		if q.clamp {
			x = math.Max(q.floor(), math.Min(q.hi, x))
		}
	}
	return searchResult{x: x, residual: q.residual(x), method: MethodFixedStep, iterations: s.opts.MaxIterations}
}

// bisect halves [lo, hi] while the residual changes sign across it.
func (s *Solver) bisect(q search) searchResult {
	lo, hi := q.lo, q.hi
	rlo, rhi := q.residual(lo), q.residual(hi)

	switch {
	case !q.openLo && math.Abs(rlo) < s.opts.Tolerance:
		return searchResult{x: lo, residual: rlo, method: MethodBisection, converged: true}
	case math.Abs(rhi) < s.opts.Tolerance:
		return searchResult{x: hi, residual: rhi, method: MethodBisection, converged: true}
	case !isFinite(rlo) || !isFinite(rhi) || math.Signbit(rlo) == math.Signbit(rhi):
		// No root in the bracket; report the closer end.
		if q.openLo || math.Abs(rhi) < math.Abs(rlo) {
			return searchResult{x: hi, residual: rhi, method: MethodBisection}
		}
		return searchResult{x: lo, residual: rlo, method: MethodBisection}
	}

	var mid, rmid float64
	for i := 1; i <= s.opts.MaxIterations; i++ {
		mid = (lo + hi) / 2
		rmid = q.residual(mid)
		if math.Abs(rmid) < s.opts.Tolerance {
			return searchResult{x: mid, residual: rmid, method: MethodBisection, iterations: i, converged: true}
		}
		if math.Signbit(rmid) == math.Signbit(rlo) {
			lo, rlo = mid, rmid
		} else {
			hi = mid
		}
	}
	return searchResult{x: mid, residual: rmid, method: MethodBisection, iterations: s.opts.MaxIterations}
}
