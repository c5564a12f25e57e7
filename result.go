package neighborhood

import (
	"github.com/wiless/neighborhood/cbsd"
)

// NeighborhoodResult is the outcome of one (category, type) search.
type NeighborhoodResult struct {
	Category        cbsd.Category `json:"category"`
	CbsdType        cbsd.Type     `json:"cbsd_type"`
	DistanceKm      int           `json:"distance_km"`
	InterferenceDbm float64       `json:"interference_dbm"`
	TargetDbm       float64       `json:"target_dbm"`
	Probes          int           `json:"probes"`
}

// Record nests the results by CBSD type, then category, e.g.
// Distance["AP"]["A"].
type Record struct {
	Distance     map[string]map[string]int     `json:"distance"`
	Interference map[string]map[string]float64 `json:"interference"`
}

func NewRecord() *Record {
	return &Record{
		Distance:     make(map[string]map[string]int),
		Interference: make(map[string]map[string]float64),
	}
}

func (r *Record) Add(res NeighborhoodResult) {
	t, c := res.CbsdType.String(), res.Category.String()
	if r.Distance[t] == nil {
		r.Distance[t] = make(map[string]int)
		r.Interference[t] = make(map[string]float64)
	}
	r.Distance[t][c] = res.DistanceKm
	r.Interference[t][c] = res.InterferenceDbm
}
