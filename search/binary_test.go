package search

import (
	"context"
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
)

func arrayFunc(values []float64, calls *int) Func {
	return func(ctx context.Context, input int) (float64, error) {
		if calls != nil {
			*calls++
		}
		if input >= len(values) {
			return values[len(values)-1], nil
		}
		return values[input], nil
	}
}

func newFinder(variant Variant, values []float64, step int, target float64) *Finder {
	s := New(variant, arrayFunc(values, nil), len(values)-1, step, target)
	l := log.New()
	l.SetOutput(io.Discard)
	s.Log = l
	return s
}

type probeCounter int

func (p *probeCounter) ObserveProbe() { *p++ }

func TestShortestUnchanging(t *testing.T) {
	s := newFinder(ShortestUnchanging, []float64{5, 4, 3, 2, 1, 0, 0, 0, 0, 0}, 1, 0)
	got, err := s.Find(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("Find() = %d, want 5", got)
	}
	if s.State() != Found {
		t.Errorf("state = %v", s.State())
	}
}

func TestVariants(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		values  []float64
		target  float64
		want    int
		state   State
	}{
		{"threshold-middle", Threshold, []float64{-80, -85, -90, -95, -100, -105}, -92, 3, Found},
		{"threshold-exact", Threshold, []float64{-80, -85, -90, -95, -100, -105}, -90, 2, Found},
		{"threshold-at-zero", Threshold, []float64{-120, -130, -140}, -100, 0, Found},
		{"threshold-never", Threshold, []float64{-80, -85, -90}, -100, 2, Exhausted},
		{"plateau-from-start", ShortestUnchanging, []float64{-1000, -1000, -1000}, 0, 0, Found},
		{"plateau-last", ShortestUnchanging, []float64{3, 2, 1, 0}, 0, 3, Found},
		{"parameter-hit", ParameterFinder, []float64{9, 7, 5, 3, 1}, 3, 3, Found},
		{"parameter-miss", ParameterFinder, []float64{9, 7, 5, 3, 1}, 4, 3, Exhausted},
		{"parameter-below-all", ParameterFinder, []float64{9, 7, 5, 3, 1}, -1, 4, Exhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFinder(tt.variant, tt.values, 1, tt.target)
			got, err := s.Find(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || s.State() != tt.state {
				t.Errorf("Find() = %d (%v), want %d (%v)", got, s.State(), tt.want, tt.state)
			}
		})
	}
}

func TestMonotoneBoundary(t *testing.T) {
	// f(i) = max(0, 50-i): the threshold 0 is first met at 50.
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(max(0, 50-i))
	}
	for _, variant := range []Variant{Threshold, ShortestUnchanging} {
		s := newFinder(variant, values, 1, 0)
		got, err := s.Find(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if got != 50 {
			t.Errorf("%v: Find() = %d, want 50", variant, got)
		}
	}
}

func TestStepAndMax(t *testing.T) {
	calls := 0
	f := func(ctx context.Context, d int) (float64, error) {
		calls++
		if d%4 != 0 {
			t.Errorf("probe off grid: %d", d)
		}
		if d >= 12 {
			return -120, nil
		}
		return -80, nil
	}
	s := New(Threshold, f, 21, 4, -100)
	s.Log = nil
	var probes probeCounter
	s.Observer = &probes
	if s.Max != 24 {
		t.Fatalf("Max = %d, want 24", s.Max)
	}
	got, err := s.Find(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != 12 {
		t.Errorf("Find() = %d, want 12", got)
	}
	if int(probes) != calls || s.Probes() != calls {
		t.Errorf("probes = %d, observed %d, calls %d", s.Probes(), probes, calls)
	}
}

func TestCache(t *testing.T) {
	calls := 0
	s := New(Threshold, arrayFunc([]float64{1, 0}, &calls), 1, 1, 0)
	s.Log = nil
	for i := 0; i < 3; i++ {
		if _, err := s.Eval(context.Background(), 1); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestProbeError(t *testing.T) {
	boom := errors.New("boom")
	s := New(Threshold, func(ctx context.Context, d int) (float64, error) { return 0, boom }, 10, 1, 0)
	s.Log = nil
	if _, err := s.Find(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if s.State() != Searching {
		t.Errorf("state = %v", s.State())
	}
}

func TestCancelledSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	f := func(ctx context.Context, d int) (float64, error) {
		calls++
		cancel()
		return float64(10 - d), nil
	}
	s := New(Threshold, f, 10, 1, 5)
	s.Log = nil
	// f(5) meets the target, so the edge check at 4 runs after the cancel
	if _, err := s.Find(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if calls != 1 || s.Probes() != 1 || s.State() == Found {
		t.Errorf("calls = %d, cached = %d, state = %v", calls, s.Probes(), s.State())
	}

	s = New(ShortestUnchanging, f, 10, 1, 0)
	s.Log = nil
	if _, err := s.Find(ctx); !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
}
