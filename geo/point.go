// Package geo holds the lat/lon primitives used to place CBSDs around a DPA.
package geo

import (
	"fmt"
	"math"
)

// Point is a WGS84 location in degrees.
type Point struct {
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%3.5f,%3.5f)", p.Latitude, p.Longitude)
}

// Circle is the deployment area around a center, radius in km.
type Circle struct {
	Center   Point
	RadiusKm int
}

// DistanceKm returns the ellipsoidal distance between p and q.
func (p Point) DistanceKm(q Point) float64 {
	d, _, _ := Inverse(p, q)
	return d
}

// BearingTo returns the initial bearing from p to q, 0=N clockwise, in [0,360).
func (p Point) BearingTo(q Point) float64 {
	_, az, _ := Inverse(p, q)
	return az
}

// Move returns the destination reached from p along bearing for distanceKm.
func (p Point) Move(bearing, distanceKm float64) Point {
	q, _ := Forward(p, bearing, distanceKm)
	return q
}

// Wrap360 reduces an angle to [0,360).
func Wrap360(degree float64) float64 {
	degree = math.Mod(degree, 360)
	if degree < 0 {
		degree += 360
	}
	if degree >= 360 {
		degree = 0
	}
	return degree
}

func toRadian(d float64) float64 { return d * math.Pi / 180 }
func toDegree(r float64) float64 { return r * 180 / math.Pi }
