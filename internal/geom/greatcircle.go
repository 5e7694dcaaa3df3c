package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Samples per waypoint pair. Enough for on-screen fidelity at any zoom where
// a whole segment is visible.
const greatCircleSamples = 50

// GreatCirclePath expands a polyline of waypoints into a sampled geodesic
// path. Each consecutive pair is interpolated along the shortest great
// circle; when the interpolation crosses the antimeridian, all subsequent
// samples are shifted by a world offset (a multiple of 360°) so the rendered
// path stays continuous instead of tearing across the map. The offset
// accumulates over the whole path, never per segment.
func GreatCirclePath(waypoints []orb.Point) orb.LineString {
	if len(waypoints) < 2 {
		return orb.LineString(append([]orb.Point(nil), waypoints...))
	}

	path := make(orb.LineString, 0, (len(waypoints)-1)*greatCircleSamples+1)
	offset := 0.0
	prevLon := waypoints[0][0]

	emit := func(p orb.Point) {
		lon := p[0]
		switch {
		case lon-prevLon > 180: // wrapped east→west
			offset -= 360
		case lon-prevLon < -180: // wrapped west→east
			offset += 360
		}
		prevLon = lon
		path = append(path, orb.Point{lon + offset, p[1]})
	}

	emit(waypoints[0])
	for i := 1; i < len(waypoints); i++ {
		from, to := waypoints[i-1], waypoints[i]
		for s := 1; s <= greatCircleSamples; s++ {
			f := float64(s) / greatCircleSamples
			emit(interpolate(from, to, f))
		}
	}
	return path
}

// interpolate returns the point at fraction f along the shortest great
// circle from a to b, using spherical linear interpolation.
func interpolate(a, b orb.Point, f float64) orb.Point {
	if a == b {
		return a
	}

	lat1, lon1 := a[1]*math.Pi/180, a[0]*math.Pi/180
	lat2, lon2 := b[1]*math.Pi/180, b[0]*math.Pi/180

	// Angular distance via haversine.
	dLat, dLon := lat2-lat1, lon2-lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	d := 2 * math.Asin(math.Min(1, math.Sqrt(h)))
	if d == 0 {
		return a
	}

	wa := math.Sin((1-f)*d) / math.Sin(d)
	wb := math.Sin(f*d) / math.Sin(d)

	x := wa*math.Cos(lat1)*math.Cos(lon1) + wb*math.Cos(lat2)*math.Cos(lon2)
	y := wa*math.Cos(lat1)*math.Sin(lon1) + wb*math.Cos(lat2)*math.Sin(lon2)
	z := wa*math.Sin(lat1) + wb*math.Sin(lat2)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y))
	lon := math.Atan2(y, x)

	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}

// ConcatSegments joins route segment geometries into one line, dropping the
// duplicated junction point where one segment ends and the next begins.
func ConcatSegments(segments []orb.LineString) orb.LineString {
	var out orb.LineString
	for _, seg := range segments {
		for _, p := range seg {
			if n := len(out); n > 0 && out[n-1] == p {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
