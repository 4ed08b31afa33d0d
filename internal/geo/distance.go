// Package geo computes geodesic distances and resolves postal codes to coordinates.
package geo

import "math"

// WGS-84 ellipsoid.
const (
	semiMajor     = 6378137.0
	flattening    = 1 / 298.257223563
	semiMinor     = (1 - flattening) * semiMajor
	metersPerMile = 1609.344

	maxIterations = 200
	tolerance     = 1e-12
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Miles returns the geodesic distance between a and b on the WGS-84 ellipsoid using Vincenty's
// inverse formula.
func Miles(a, b Point) float64 {
	return Meters(a, b) / metersPerMile
}

// Meters returns the geodesic distance between a and b in meters. For nearly antipodal points
// where the iteration does not converge, the last estimate is used.
func Meters(a, b Point) float64 {
	if a == b {
		return 0
	}

	L := radians(b.Lon - a.Lon)
	U1 := math.Atan((1 - flattening) * math.Tan(radians(a.Lat)))
	U2 := math.Atan((1 - flattening) * math.Tan(radians(b.Lat)))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	lambda := L
	var sinSigma, cosSigma, sigma, cos2Alpha, cos2SigmaM float64
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(math.Pow(cosU2*sinLambda, 2) +
			math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		if cos2Alpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		} else {
			// equatorial line
			cos2SigmaM = 0
		}
		C := flattening / 16 * cos2Alpha * (4 + flattening*(4-3*cos2Alpha))
		prev := lambda
		lambda = L + (1-C)*flattening*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < tolerance {
			break
		}
	}

	uSq := cos2Alpha * (semiMajor*semiMajor - semiMinor*semiMinor) / (semiMinor * semiMinor)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return semiMinor * A * (sigma - deltaSigma)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
