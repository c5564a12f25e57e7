package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
)

func TestRootCmdNoDeployment(t *testing.T) {
	out := filepath.Join(t.TempDir(), "record.json")
	cmd := rootCmd()
	cmd.SetArgs([]string{
		"--dpa", "Hat Creek",
		"--iterations", "1",
		"--cat-a-radius", "0",
		"--cat-b-radius", "0",
		"--seed", "42",
		"--workers", "0",
		"--log-level", "error",
		"-o", out,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		DPA          string                        `json:"dpa"`
		Seed         uint64                        `json:"seed"`
		Threshold    float64                       `json:"threshold_dbm"`
		Distance     map[string]map[string]int     `json:"distance"`
		Interference map[string]map[string]float64 `json:"interference"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	if got.DPA != "HatCreek" || got.Seed != 42 || got.Threshold != -144 {
		t.Errorf("header = %+v", got)
	}
	for _, c := range []string{"A", "B"} {
		if got.Distance["AP"][c] != 0 || got.Interference["AP"][c] != -1000 {
			t.Errorf("Cat%s: %v km, %v dBm", c, got.Distance["AP"][c], got.Interference["AP"][c])
		}
	}
}

func TestRootCmdInvalid(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"--iterations", "0", "--log-level", "error"})
	if err := cmd.Execute(); err == nil {
		t.Error("iterations 0 accepted")
	}

	cmd = rootCmd()
	cmd.SetArgs([]string{"--dpa", "Atlantis", "--cat-a-radius", "0", "--cat-b-radius", "0", "--seed", "1"})
	if err := cmd.Execute(); err == nil {
		t.Error("unknown DPA accepted")
	}
}
