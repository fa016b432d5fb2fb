package repository

import "math"

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = earthRadiusMeters * math.Pi / 180
	// boxPadding widens the prefilter so float rounding never drops an edge point;
	// haversineMeters enforces the exact radius afterwards.
	boxPadding = 1.001
)

// haversineMeters returns the great-circle distance between two points.
func haversineMeters(lng1, lat1, lng2, lat2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

type boundingBox struct {
	minLat, maxLat, minLng, maxLng float64
}

// boundingBoxAround returns a box containing every point within radius meters.
// Near the poles or across the antimeridian the longitude range widens to the whole globe.
func boundingBoxAround(lng, lat, radius float64) boundingBox {
	dLat := radius * boxPadding / metersPerDegree
	box := boundingBox{
		minLat: math.Max(-90, lat-dLat),
		maxLat: math.Min(90, lat+dLat),
		minLng: -180,
		maxLng: 180,
	}
	// widest longitude span occurs at the poleward edge of the box
	cos := math.Cos(math.Max(math.Abs(box.minLat), math.Abs(box.maxLat)) * math.Pi / 180)
	if cos > 0.01 {
		dLng := radius * boxPadding / (metersPerDegree * cos)
		if lng-dLng >= -180 && lng+dLng <= 180 {
			box.minLng = lng - dLng
			box.maxLng = lng + dLng
		}
	}
	return box
}
