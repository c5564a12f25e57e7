package antenna

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wiless/neighborhood/cbsd"
)

func TestAzimuths(t *testing.T) {
	cases := []struct {
		name           string
		aMin, aMax, bw float64
		want           []float64
	}{
		{"quarter", 0, 90, 30, []float64{15, 45, 75}},
		{"partial last beam", 10, 20, 4, []float64{12, 16}},
		{"odd beamwidth", 0, 9, 3, []float64{1.5, 4.5, 7.5}},
		{"narrower than beam", 0, 1, 3, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Azimuths(c.aMin, c.aMax, c.bw)
			if len(got) != len(c.want) {
				t.Fatalf("Azimuths = %v, want %v", got, c.want)
			}
			for i := range got {
				if math.Abs(got[i]-c.want[i]) > 1e-9 {
					t.Errorf("Azimuths = %v, want %v", got, c.want)
				}
			}
		})
	}
	full := Azimuths(0, 360, 3)
	if len(full) != 120 || full[0] != 1.5 || math.Abs(full[119]-358.5) > 1e-9 {
		t.Errorf("full circle: %d azimuths, first %v last %v", len(full), full[0], full[len(full)-1])
	}
	for _, a := range full {
		if a < 0 || a >= 360 {
			t.Errorf("azimuth %v outside [0,360)", a)
		}
	}
}

func TestCosineSquaredGain(t *testing.T) {
	cases := []struct {
		bearing, azimuth, bw, gmax, want float64
	}{
		{10, 10, 3, 0, 0},
		{11.5, 10, 3, 0, -3},
		{8.5, 10, 3, 0, -3},
		{359, 1, 4, 0, -3},
		{90, 10, 3, 0, -20},
		{190, 10, 3, 5, -15},
	}
	for _, c := range cases {
		got := CosineSquaredGainDb(c.bearing, c.azimuth, c.bw, c.gmax)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("CosineSquaredGainDb(%v,%v,%v,%v) = %v, want %v", c.bearing, c.azimuth, c.bw, c.gmax, got, c.want)
		}
	}
}

func TestPatternGainRounding(t *testing.T) {
	pattern := make([]float64, 360)
	for i := range pattern {
		pattern[i] = float64(i)
	}
	cases := map[float64]float64{0: 0, 10.4: 10, 10.6: 11, 359.6: 0, -1: 359, 721.2: 1}
	for bearing, want := range cases {
		if got := PatternGainDb(pattern, bearing); got != want {
			t.Errorf("PatternGainDb(%v) = %v, want %v", bearing, got, want)
		}
	}
}

func TestRandomPattern(t *testing.T) {
	p := RandomPattern(rand.New(rand.NewPCG(1, 2)))
	if len(p) != 360 {
		t.Fatalf("len = %d", len(p))
	}
	for _, g := range p {
		if g < PatternMinDbi || g > PatternMaxDbi {
			t.Fatalf("gain %v outside [0,6]", g)
		}
	}
}

func TestRxAntennaModes(t *testing.T) {
	a, err := NewRxAntenna(Auto, 0, 360, 3, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Mode != CosineSquared {
		t.Errorf("auto without pattern = %v", a.Mode)
	}
	gains := a.RxGains(1.5)
	if len(gains) != len(a.Azimuths) || gains[0] != 0 || gains[1] != -12 {
		t.Errorf("gains[0:2] = %v", gains[:2])
	}

	pattern := make([]float64, 360)
	pattern[45] = 4
	a, err = NewRxAntenna(Auto, 0, 90, 30, 0, pattern)
	if err != nil {
		t.Fatal(err)
	}
	if a.Mode != Pattern {
		t.Errorf("auto with pattern = %v", a.Mode)
	}
	for _, g := range a.RxGains(45.3) {
		if g != 4 {
			t.Errorf("pattern gains = %v", a.RxGains(45.3))
		}
	}

	if _, err := NewRxAntenna(Pattern, 0, 360, 3, 0, nil); err == nil {
		t.Error("pattern mode without pattern should fail")
	}
	if _, err := NewRxAntenna(Auto, 0, 360, 0, 0, nil); err == nil {
		t.Error("zero beamwidth should fail")
	}
}

func TestTxInsertionLoss(t *testing.T) {
	cases := []struct {
		typ    cbsd.Type
		indoor bool
		want   float64
	}{
		{cbsd.AP, false, 2},
		{cbsd.AP, true, 0},
		{cbsd.UE, false, 0},
		{cbsd.UE, true, 0},
	}
	for _, c := range cases {
		if got := TxInsertionLossDb(c.typ, c.indoor); got != c.want {
			t.Errorf("TxInsertionLossDb(%v,%v) = %v", c.typ, c.indoor, got)
		}
	}
}

func TestParseGainMode(t *testing.T) {
	for in, want := range map[string]GainMode{"auto": Auto, "Pattern": Pattern, " cosine ": CosineSquared} {
		if got, err := ParseGainMode(in); err != nil || got != want {
			t.Errorf("ParseGainMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseGainMode("dish"); err == nil {
		t.Error("expected error")
	}
}
