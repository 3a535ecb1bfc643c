// Package geometry provides the spherical-earth math the clustering and
// walk-overlay stages need: great-circle distance, bearing, and the
// destination point reached by walking a bearing and distance from an origin.
package geometry

import "math"

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// BoundingBox is an axis-aligned box in geographic degrees.
type BoundingBox struct {
	Min Point
	Max Point
}

// EarthRadiusKm is the mean Earth radius used for great-circle distance,
// matching spec §4.7's spherical law of cosines constant.
const EarthRadiusKm = 6371.009

// HaversineDistanceKm returns the great-circle distance between two points
// in kilometers.
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// SphericalLawOfCosinesKm implements the distance formula spec §4.7 names
// explicitly. It agrees with HaversineDistanceKm to floating-point rounding
// for all but near-antipodal points; kept separate because the spec pins
// this exact formula for the walk overlay's distance gate.
func SphericalLawOfCosinesKm(lat1, lon1, lat2, lon2 float64) float64 {
	aLat := toRadians(lat1)
	bLat := toRadians(lat2)
	dLon := toRadians(lon1 - lon2)

	cosAngle := math.Sin(aLat)*math.Sin(bLat) + math.Cos(aLat)*math.Cos(bLat)*math.Cos(dLon)
	// Guard against tiny floating point overshoot past the valid acos domain.
	if cosAngle > 1 {
		cosAngle = 1
	} else if cosAngle < -1 {
		cosAngle = -1
	}
	return EarthRadiusKm * math.Acos(cosAngle)
}

// CalculateBearing returns the initial bearing in degrees from point 1 to point 2.
func CalculateBearing(lat1, lon1, lat2, lon2 float64) float64 {
	dLon := toRadians(lon2 - lon1)
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)

	bearing := toDegrees(math.Atan2(y, x))
	return math.Mod(bearing+360, 360)
}

// DestinationPoint returns the point reached by travelling distanceMeters
// along bearingDeg from (lat, lon), using the direct spherical formula.
// This is the complement CalculateBearing needed for cluster's 1000m
// bounding-box construction (spec §4.4 step 3).
func DestinationPoint(lat, lon, bearingDeg, distanceMeters float64) (destLat, destLon float64) {
	angularDistance := distanceMeters / (EarthRadiusKm * 1000)
	bearingRad := toRadians(bearingDeg)
	latRad := toRadians(lat)
	lonRad := toRadians(lon)

	destLatRad := math.Asin(math.Sin(latRad)*math.Cos(angularDistance) +
		math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(bearingRad))
	destLonRad := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(destLatRad))

	return toDegrees(destLatRad), toDegrees(destLonRad)
}

// CalculateBoundingBox returns the smallest axis-aligned box containing points.
func CalculateBoundingBox(points []Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}

	minLat, maxLat := points[0].Lat, points[0].Lat
	minLon, maxLon := points[0].Lon, points[0].Lon

	for _, p := range points[1:] {
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
		if p.Lon < minLon {
			minLon = p.Lon
		}
		if p.Lon > maxLon {
			maxLon = p.Lon
		}
	}

	return BoundingBox{
		Min: Point{Lat: minLat, Lon: minLon},
		Max: Point{Lat: maxLat, Lon: maxLon},
	}
}

func toRadians(degrees float64) float64 { return degrees * math.Pi / 180.0 }
func toDegrees(radians float64) float64 { return radians * 180.0 / math.Pi }
