package geo

import "math"

// WGS84 ellipsoid
const (
	semiMajorM = 6378137.0
	flattening = 1 / 298.257223563
	semiMinorM = (1 - flattening) * semiMajorM

	// EarthRadiusKm is used only when the inverse formula does not converge
	// (nearly antipodal points).
	EarthRadiusKm = 6371.0

	maxIterations = 200
	convergence   = 1e-12
)

// Forward solves the direct geodesic problem (Vincenty 1975). It returns the
// destination and the final bearing at the destination.
func Forward(origin Point, bearing, distanceKm float64) (dest Point, finalBearing float64) {
	if distanceKm == 0 {
		return origin, Wrap360(bearing)
	}
	s := distanceKm * 1000
	alpha1 := toRadian(bearing)
	sinAlpha1, cosAlpha1 := math.Sincos(alpha1)

	tanU1 := (1 - flattening) * math.Tan(toRadian(origin.Latitude))
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (semiMajorM*semiMajorM - semiMinorM*semiMinorM) / (semiMinorM * semiMinorM)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := s / (semiMinorM * A)
	var sinSigma, cosSigma, cos2SigmaM float64
	for i := 0; i < maxIterations; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)
		deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		prev := sigma
		sigma = s/(semiMinorM*A) + deltaSigma
		if math.Abs(sigma-prev) < convergence {
			break
		}
	}
	cos2SigmaM = math.Cos(2*sigma1 + sigma)
	sinSigma, cosSigma = math.Sincos(sigma)

	x := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	phi2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1, (1-flattening)*math.Sqrt(sinAlpha*sinAlpha+x*x))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	C := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
	L := lambda - (1-C)*flattening*sinAlpha*(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
	lon2 := toRadian(origin.Longitude) + L
	lon2 = math.Mod(lon2+3*math.Pi, 2*math.Pi) - math.Pi

	alpha2 := math.Atan2(sinAlpha, -x)
	return Point{Latitude: toDegree(phi2), Longitude: toDegree(lon2)}, Wrap360(toDegree(alpha2))
}

// Inverse solves the inverse geodesic problem. It returns the distance in km,
// the initial bearing at p and the final bearing at q.
func Inverse(p, q Point) (distanceKm, initialBearing, finalBearing float64) {
	if p == q {
		return 0, 0, 0
	}
	L := toRadian(q.Longitude - p.Longitude)
	tanU1 := (1 - flattening) * math.Tan(toRadian(p.Latitude))
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1
	tanU2 := (1 - flattening) * math.Tan(toRadian(q.Latitude))
	cosU2 := 1 / math.Sqrt(1+tanU2*tanU2)
	sinU2 := tanU2 * cosU2

	lambda := L
	var sinLambda, cosLambda, sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda = math.Sincos(lambda)
		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t1*t1 + t2*t2)
		if sinSigma == 0 {
			return 0, 0, 0
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}
		C := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*flattening*sinAlpha*(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < convergence {
			converged = true
			break
		}
	}
	if !converged {
		return haversine(p, q)
	}

	uSq := cosSqAlpha * (semiMajorM*semiMajorM - semiMinorM*semiMinorM) / (semiMinorM * semiMinorM)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	s := semiMinorM * A * (sigma - deltaSigma)

	alpha1 := math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
	alpha2 := math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda)
	return s / 1000, Wrap360(toDegree(alpha1)), Wrap360(toDegree(alpha2))
}

func haversine(p, q Point) (float64, float64, float64) {
	phi1, phi2 := toRadian(p.Latitude), toRadian(q.Latitude)
	dPhi := phi2 - phi1
	dLambda := toRadian(q.Longitude - p.Longitude)
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	az := Wrap360(toDegree(math.Atan2(y, x)))
	return EarthRadiusKm * c, az, az
}
