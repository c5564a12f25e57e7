package distribution

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestPartition(t *testing.T) {
	cases := []struct {
		name      string
		n         int
		fractions []float64
		want      []int
	}{
		{"single", 10, []float64{1}, []int{10}},
		{"even", 10, []float64{0.5, 0.5}, []int{5, 5}},
		{"remainder to last", 10, []float64{0.33, 0.33, 0.34}, []int{3, 3, 4}},
		{"rounding", 7, []float64{0.8, 0.2}, []int{6, 1}},
		{"overshoot is clamped", 1, []float64{0.6, 0.6, -0.2}, []int{1, 0, 0}},
		{"zero", 0, []float64{0.2, 0.6, 0.2}, []int{0, 0, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Partition(c.n, c.fractions)
			if len(got) != len(c.want) {
				t.Fatalf("Partition = %v, want %v", got, c.want)
			}
			sum := 0
			for i := range got {
				sum += got[i]
				if got[i] != c.want[i] {
					t.Fatalf("Partition = %v, want %v", got, c.want)
				}
			}
			if sum != c.n {
				t.Fatalf("Partition sums to %d, want %d", sum, c.n)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (Mixture{Fixed(0.8, 3), Fixed(0.2, 6)}).Validate(); err != nil {
		t.Fatalf("valid mixture rejected: %v", err)
	}
	bad := []Mixture{
		nil,
		{Fixed(0.8, 3), Fixed(0.3, 6)},
		{UniformRange(1, 10, 5)},
		{Normal(1, 0, 10, 5, 0)},
		{Fixed(-0.5, 1), Fixed(1.5, 2)},
	}
	for i, m := range bad {
		if err := m.Validate(); !errors.Is(err, ErrInvalidMixture) {
			t.Errorf("case %d: Validate = %v, want ErrInvalidMixture", i, err)
		}
	}
}

func TestDrawKeepsGroupOrder(t *testing.T) {
	m := Mixture{Fixed(0.8, 3), Fixed(0.2, 6)}
	samples := Draw(newRand(1), m, 1000)
	if len(samples) != 1000 {
		t.Fatalf("len = %d", len(samples))
	}
	for i, s := range samples {
		want := 3.0
		if i >= 800 {
			want = 6
		}
		if s != want {
			t.Fatalf("sample %d = %v, want %v", i, s, want)
		}
	}
}

func TestDrawMatchesMixture(t *testing.T) {
	m := Mixture{
		Fixed(0.2, 3),
		UniformRange(0.5, 6, 18),
		Normal(0.3, 20, 40, 30, 4),
	}
	samples := Draw(newRand(42), m, 20000)
	if err := AssertMatches(samples, m, 0.01); err != nil {
		t.Fatal(err)
	}
	for _, s := range samples[4000:14000] {
		if s < 6 || s > 18 {
			t.Fatalf("uniform sample %v outside [6,18]", s)
		}
	}
}

func TestUniformMeanAndBounds(t *testing.T) {
	m := Mixture{UniformRange(1, 40, 47)}
	samples := Draw(newRand(7), m, 100000)
	sum, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		sum += s
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	mean := sum / float64(len(samples))
	if math.Abs(mean-43.5) > 0.1 {
		t.Fatalf("mean = %v, want 43.5±0.1", mean)
	}
	if lo < 40 || hi > 47 {
		t.Fatalf("samples span [%v,%v], want within [40,47]", lo, hi)
	}
}

func TestTruncatedNormalStaysInRange(t *testing.T) {
	f := Normal(1, 0, 2, 5, 1) // mean outside the range
	rng := newRand(3)
	for i := 0; i < 1000; i++ {
		if v := f.Sample(rng); v < 0 || v > 2 {
			t.Fatalf("sample %v outside [0,2]", v)
		}
	}
}

func TestAssertMatchesDetectsWrongFraction(t *testing.T) {
	m := Mixture{Fixed(0.5, 1), Fixed(0.5, 2)}
	samples := Draw(newRand(1), Mixture{Fixed(0.7, 1), Fixed(0.3, 2)}, 1000)
	if err := AssertMatches(samples, m, 0.01); !errors.Is(err, ErrMismatch) {
		t.Fatalf("AssertMatches = %v, want ErrMismatch", err)
	}
}

func TestTruncatedMomentsUntruncated(t *testing.T) {
	mean, std := TruncatedMoments(Normal(1, math.Inf(-1), math.Inf(1), 10, 2))
	if math.Abs(mean-10) > 1e-9 || math.Abs(std-2) > 1e-9 {
		t.Fatalf("moments = %v,%v want 10,2", mean, std)
	}
}

func TestKindText(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("truncated_normal")); err != nil || k != TruncatedNormal {
		t.Fatalf("UnmarshalText = %v,%v", k, err)
	}
	if err := k.UnmarshalText([]byte("gaussian")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
