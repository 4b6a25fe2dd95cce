// Package geo computes surface distances between geographic points.
package geo

import (
	"math"

	"github.com/boirefacile/backend-go/internal/models"
)

// WGS-84 ellipsoid.
const (
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563
	semiMinorAxis = (1 - flattening) * semiMajorAxis

	// meanEarthRadius is the IUGG mean radius used by the spherical fallback.
	meanEarthRadius = 6371008.8

	maxIterations = 200
	convergence   = 1e-12
)

// Distance returns the geodesic distance in meters between a and b on the
// WGS-84 ellipsoid (Vincenty's inverse formula). Nearly antipodal pairs,
// where the iteration does not converge, use the great-circle distance on a
// sphere of mean Earth radius instead. Non-finite input yields NaN.
//
// Distance(a, a) is exactly 0 and Distance(a, b) == Distance(b, a).
func Distance(a, b models.GeoPoint) float64 {
	if !finite(a) || !finite(b) {
		return math.NaN()
	}
	if a == b {
		return 0
	}
	// Evaluate in a canonical order so the result is bit-for-bit symmetric.
	if b.Latitude < a.Latitude || (b.Latitude == a.Latitude && b.Longitude < a.Longitude) {
		a, b = b, a
	}
	if d, ok := vincenty(a, b); ok {
		return d
	}
	return Haversine(a, b)
}

// Haversine returns the great-circle distance in meters on a sphere of mean
// Earth radius.
func Haversine(a, b models.GeoPoint) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h slightly outside [0, 1].
	h = math.Min(1, math.Max(0, h))
	return 2 * meanEarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func vincenty(a, b models.GeoPoint) (float64, bool) {
	l := normalizeLongitude(toRadians(b.Longitude - a.Longitude))
	u1 := math.Atan((1 - flattening) * math.Tan(toRadians(a.Latitude)))
	u2 := math.Atan((1 - flattening) * math.Tan(toRadians(b.Latitude)))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t1*t1 + t2*t2)
		if sinSigma == 0 {
			return 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		cos2SigmaM = 0
		if cosSqAlpha != 0 {
			// Both points on the equator otherwise.
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		c := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda) > math.Pi {
			return 0, false
		}
		if math.Abs(lambda-prev) < convergence {
			converged = true
			break
		}
	}
	if !converged {
		return 0, false
	}

	uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) / (semiMinorAxis * semiMinorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	d := semiMinorAxis * bigA * (sigma - deltaSigma)
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, false
	}
	return d, true
}

func finite(p models.GeoPoint) bool {
	for _, v := range []float64{p.Latitude, p.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// normalizeLongitude folds a longitude difference into [-π, π].
func normalizeLongitude(rad float64) float64 {
	return math.Remainder(rad, 2*math.Pi)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
