// Package search finds the neighborhood distance by binary search over a
// stepped grid of minimum distances.
package search

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Func evaluates the searched function at input.
type Func func(ctx context.Context, input int) (float64, error)

type State int

var States = [...]string{
	"SEARCHING",
	"FOUND",
	"EXHAUSTED",
}

const (
	Searching State = iota
	Found
	Exhausted
)

func (s State) String() string {
	if int(s) < 0 || int(s) >= len(States) {
		return "Unknown-State"
	}
	return States[s]
}

type Variant int

var Variants = [...]string{
	"ParameterFinder",
	"ShortestUnchanging",
	"Threshold",
}

const (
	// ParameterFinder looks for f(d) == Target on a non-increasing f.
	ParameterFinder Variant = iota
	// ShortestUnchanging looks for the smallest d with f(d-step) != f(d) == f(max).
	ShortestUnchanging
	// Threshold looks for the smallest d with f(d) <= Target.
	Threshold
)

func (v Variant) String() string {
	if int(v) < 0 || int(v) >= len(Variants) {
		return "Unknown-Variant"
	}
	return Variants[v]
}

// Observer is told about every evaluated input, cache hits excluded.
type Observer interface {
	ObserveProbe()
}

// Finder searches the inputs {0, Step, 2 Step, ..., Max}, where Max is the
// requested maximum rounded up to a multiple of Step. Results of f are
// cached by input. A Finder is not safe for concurrent use.
type Finder struct {
	Variant Variant
	Target  float64
	Step    int
	Max     int

	Log      log.FieldLogger
	Observer Observer

	f     Func
	cache map[int]float64
	state State
}

// New returns a Finder over [0, max] stepped by step.
func New(variant Variant, f Func, max, step int, target float64) *Finder {
	if step < 1 {
		step = 1
	}
	if max < 0 {
		max = 0
	}
	return &Finder{
		Variant: variant,
		Target:  target,
		Step:    step,
		Max:     (max + step - 1) / step * step,
		Log:     log.StandardLogger(),
		f:       f,
		cache:   make(map[int]float64),
	}
}

func (s *Finder) State() State { return s.state }

// Eval returns f(input), from the cache when possible. Nothing is evaluated
// or cached once ctx is done.
func (s *Finder) Eval(ctx context.Context, input int) (float64, error) {
	if v, ok := s.cache[input]; ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := s.f(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("probe %d: %w", input, err)
	}
	s.cache[input] = v
	if s.Observer != nil {
		s.Observer.ObserveProbe()
	}
	if s.Log != nil {
		s.Log.WithFields(log.Fields{"input": input, "value": v}).Info("search probe")
	}
	return v, nil
}

// Probes returns how many distinct inputs were evaluated.
func (s *Finder) Probes() int { return len(s.cache) }

// Find runs the search and returns the input found. When the search is
// exhausted it returns min(low, Max).
func (s *Finder) Find(ctx context.Context) (int, error) {
	s.state = Searching
	low, high := 0, s.Max/s.Step

	var plateau float64
	if s.Variant == ShortestUnchanging {
		v, err := s.Eval(ctx, s.Max)
		if err != nil {
			return 0, err
		}
		plateau = v
	}

	for low <= high {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		mid := (low + high) / 2
		v, err := s.Eval(ctx, mid*s.Step)
		if err != nil {
			return 0, err
		}

		var done, goLeft bool
		switch s.Variant {
		case ParameterFinder:
			done = v == s.Target
			goLeft = v < s.Target
		case ShortestUnchanging:
			if v == plateau {
				done, err = s.edge(ctx, mid, func(prev float64) bool { return prev != plateau })
				goLeft = true
			}
		case Threshold:
			if v <= s.Target {
				done, err = s.edge(ctx, mid, func(prev float64) bool { return prev > s.Target })
				goLeft = true
			}
		default:
			return 0, fmt.Errorf("search: unknown variant %d", s.Variant)
		}
		if err != nil {
			return 0, err
		}
		if done {
			s.state = Found
			return mid * s.Step, nil
		}
		if goLeft {
			high = mid - 1
		} else {
			low = mid + 1
		}
	}

	s.state = Exhausted
	return min(low*s.Step, s.Max), nil
}

// edge reports whether grid point i is the first to satisfy the predicate,
// i.e. i is 0 or before(f(i-1)) holds.
func (s *Finder) edge(ctx context.Context, i int, before func(prev float64) bool) (bool, error) {
	if i == 0 {
		return true, nil
	}
	prev, err := s.Eval(ctx, (i-1)*s.Step)
	if err != nil {
		return false, err
	}
	return before(prev), nil
}
