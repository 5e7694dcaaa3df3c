package feature

import (
	"github.com/paulmach/orb/geojson"
)

// Collection encodes the store's features as a GeoJSON FeatureCollection
// with display geometry substituted for derived kinds. This is the shape the
// map renderer consumes; the authoritative geometries stay in the store.
func Collection(features []Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range features {
		f := &features[i]
		gf := geojson.NewFeature(f.DisplayGeometry())
		gf.ID = f.ID
		gf.Properties["kind"] = string(f.Kind)
		if f.Parent != "" {
			gf.Properties["parent"] = f.Parent
		}
		if c, ok := f.CircleParams(); ok && f.Kind == KindRadiusLine {
			gf.Properties["isRadiusLine"] = true
			gf.Properties["centerLng"] = c.Center[0]
			gf.Properties["centerLat"] = c.Center[1]
			gf.Properties["radiusInKm"] = c.RadiusKm
			gf.Properties["azimuthDegrees"] = c.AzimuthDeg
		}
		if f.Kind == KindGreatCircle {
			gf.Properties["isGreatCircle"] = true
		}
		if f.Kind == KindRouted && f.Route != nil {
			gf.Properties["profile"] = string(f.Route.Profile)
			gf.Properties["routeDistance"] = f.Route.Distance
			gf.Properties["routeDuration"] = f.Route.Duration
		}
		fc.Append(gf)
	}
	return fc
}
