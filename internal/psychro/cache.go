package psychro

import (
	"container/list"
	"strconv"
	"strings"
	"sync"
)

// StateSolver is implemented by *Solver and *CachedSolver.
type StateSolver interface {
	Solve(in Input) (Solution, error)
}

// CachedSolver memoizes successful solves in an LRU keyed on the known
// inputs.
type CachedSolver struct {
	inner    StateSolver
	onLookup func(hit bool)

	mu         sync.Mutex
	maxEntries int
	order      *list.List // front = most recently used
	entries    map[string]*list.Element
}

type cacheEntry struct {
	key string
	sol Solution
}

// NewCachedSolver wraps inner. onLookup, if non-nil, is called after every
// lookup with whether it was served from the cache.
func NewCachedSolver(inner StateSolver, maxEntries int, onLookup func(hit bool)) *CachedSolver {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &CachedSolver{
		inner:      inner,
		onLookup:   onLookup,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Solve returns a cached solution when the same inputs were solved before.
// Errors are never cached.
func (c *CachedSolver) Solve(in Input) (Solution, error) {
	if in.Known() < 2 {
		return Solution{}, ErrInsufficientInputs
	}
	key := cacheKey(in)
	if sol, ok := c.get(key); ok {
		c.observe(true)
		return sol, nil
	}
	c.observe(false)

	sol, err := c.inner.Solve(in)
	if err != nil {
		return sol, err
	}
	c.put(key, sol)
	return sol, nil
}

// Len reports the number of cached entries.
func (c *CachedSolver) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *CachedSolver) observe(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}

func (c *CachedSolver) get(key string) (Solution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return Solution{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).sol, true
}

func (c *CachedSolver) put(key string, sol Solution) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).sol = sol
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, sol: sol})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// cacheKey renders the known fields exactly; unknown fields are "-" so that
// {T, RH} and {T, DP} with equal numbers never collide.
func cacheKey(in Input) string {
	var b strings.Builder
	for i, v := range []*float64{in.Temperature, in.RelativeHumidity, in.DewPoint, in.AbsoluteHumidity} {
		if i > 0 {
			b.WriteByte('|')
		}
		if v == nil {
			b.WriteByte('-')
			continue
		}
		b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
	}
	return b.String()
}
