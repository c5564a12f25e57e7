// Package neighborhood computes the neighborhood distance of a DPA: the
// smallest keep-out distance beyond which the aggregate interference of
// randomly deployed CBSDs meets the DPA protection threshold.
package neighborhood

import (
	"github.com/wiless/vlib"
)

// LowInterferenceDbm is reported when no CBSD contributes.
const LowInterferenceDbm = -1000.0

// InterferenceComponents is the link budget of one CBSD toward the DPA.
// Every loss term is non-negative.
type InterferenceComponents struct {
	DistanceKm        float64 `json:"distance_km"`
	BearingFromDpaDeg float64 `json:"bearing_from_dpa_deg"`
	EirpDbm           float64 `json:"eirp_dbm"`
	LossTransmitterDb float64 `json:"loss_transmitter_db"`
	LossPropagationDb float64 `json:"loss_propagation_db"`
	LossClutterDb     float64 `json:"loss_clutter_db"`
	LossBuildingDb    float64 `json:"loss_building_db"`
	LossReceiverDb    float64 `json:"loss_receiver_db"`
	FdrDb             float64 `json:"fdr_db"`

	// RxGainByAzimuth is parallel to the protected azimuth set.
	RxGainByAzimuth vlib.VectorF `json:"rx_gain_by_azimuth"`
}

// LossDb is the sum of every loss term.
func (c InterferenceComponents) LossDb() float64 {
	return c.LossTransmitterDb + c.LossReceiverDb + c.LossPropagationDb +
		c.LossClutterDb + c.LossBuildingDb + c.FdrDb
}

// ReceivedDbm returns the power received at the DPA for every azimuth.
func (c InterferenceComponents) ReceivedDbm() vlib.VectorF {
	result := vlib.NewVectorF(len(c.RxGainByAzimuth))
	base := c.EirpDbm - c.LossDb()
	for i, g := range c.RxGainByAzimuth {
		result[i] = base + g
	}
	return result
}

// TrialDiagnostics counts what happened to the CBSDs of one trial.
type TrialDiagnostics struct {
	Deployed int `json:"deployed"`
	Skipped  int `json:"skipped"`
	InRange  int `json:"in_range"`
}
