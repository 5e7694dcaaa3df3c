package feature_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/geom"
	"github.com/joeblew999/plat-draw/internal/route"
)

func TestStoreVersioningAndEvents(t *testing.T) {
	bus := feature.NewEventBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	store := feature.NewStore(bus)

	store.Put(feature.Feature{ID: "f1", Kind: feature.KindPlain, Geometry: orb.LineString{{0, 0}, {1, 1}}})
	f, ok := store.Get("f1")
	require.True(t, ok)
	assert.Equal(t, uint64(1), f.Version)

	ev := <-sub
	assert.Equal(t, feature.Event{Resource: "features", Action: "created", ID: "f1"}, ev)

	store.Put(f)
	f, _ = store.Get("f1")
	assert.Equal(t, uint64(2), f.Version)

	ev = <-sub
	assert.Equal(t, "updated", ev.Action)

	store.Delete("f1")
	ev = <-sub
	assert.Equal(t, "deleted", ev.Action)
	assert.Equal(t, 0, store.Len())

	// Deleting an unknown id publishes nothing.
	store.Delete("f1")
	select {
	case ev = <-sub:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestStoreNewIDMonotonic(t *testing.T) {
	store := feature.NewStore(feature.NewEventBus())
	assert.Equal(t, "f1", store.NewID())
	assert.Equal(t, "f2", store.NewID())
}

func TestCloneIsDeep(t *testing.T) {
	orig := feature.Feature{
		ID:       "f1",
		Kind:     feature.KindRouted,
		Geometry: orb.LineString{{0, 0}, {1, 0}},
		Circle:   &feature.CircleInfo{Center: orb.Point{0, 0}, RadiusKm: 5, AzimuthDeg: 90},
		Route: &feature.RouteInfo{
			Profile:   route.Walking,
			Waypoints: []orb.Point{{0, 0}, {1, 0}},
			Segments:  []route.Segment{{Distance: 100}},
		},
	}

	clone := orig.Clone()
	clone.Geometry.(orb.LineString)[0] = orb.Point{9, 9}
	clone.Circle.RadiusKm = 99
	clone.Route.Waypoints[0] = orb.Point{9, 9}
	clone.Route.Segments[0].Distance = 999

	assert.Equal(t, orb.Point{0, 0}, orig.Geometry.(orb.LineString)[0])
	assert.Equal(t, 5.0, orig.Circle.RadiusKm)
	assert.Equal(t, orb.Point{0, 0}, orig.Route.Waypoints[0])
	assert.Equal(t, 100.0, orig.Route.Segments[0].Distance)
}

func TestDisplayGeometrySubstitution(t *testing.T) {
	plain := feature.Feature{Kind: feature.KindPlain, Geometry: orb.LineString{{0, 0}, {1, 1}}}
	assert.Equal(t, plain.Geometry, plain.DisplayGeometry())

	circle := feature.Feature{
		Kind:     feature.KindRadiusLine,
		Geometry: orb.LineString{{0, 0}, {1, 0}},
		Circle:   &feature.CircleInfo{Center: orb.Point{0, 0}, RadiusKm: 50, AzimuthDeg: 90},
	}
	poly, ok := circle.DisplayGeometry().(orb.Polygon)
	require.True(t, ok, "radius line renders as polygon")
	assert.Len(t, poly[0], geom.CircleSteps(50)+1)

	gc := feature.Feature{
		Kind:     feature.KindGreatCircle,
		Geometry: orb.LineString{{0, 0}, {60, 30}},
	}
	path, ok := gc.DisplayGeometry().(orb.LineString)
	require.True(t, ok)
	assert.Greater(t, len(path), 2, "geodesic path is densified")

	routed := feature.Feature{
		Kind: feature.KindRouted,
		Route: &feature.RouteInfo{
			Segments: []route.Segment{
				{Geometry: orb.LineString{{0, 0}, {1, 0}}},
				{Geometry: orb.LineString{{1, 0}, {2, 0}}},
			},
		},
	}
	concat, ok := routed.DisplayGeometry().(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {2, 0}}, concat, "shared joints deduplicated")
}

func TestCollectionProperties(t *testing.T) {
	center := orb.Point{13.4, 52.5}
	features := []feature.Feature{
		{
			ID:       "c1",
			Kind:     feature.KindRadiusLine,
			Geometry: orb.LineString{center, {13.5, 52.5}},
			Circle:   &feature.CircleInfo{Center: center, RadiusKm: 7, AzimuthDeg: 90},
		},
		{
			ID:       "g1",
			Kind:     feature.KindGreatCircle,
			Geometry: orb.LineString{{0, 0}, {60, 30}},
		},
		{
			ID:   "r1",
			Kind: feature.KindRouted,
			Route: &feature.RouteInfo{
				Profile:  route.Car,
				Segments: []route.Segment{{Geometry: orb.LineString{{0, 0}, {1, 0}}, Distance: 111000}},
				Distance: 111000,
				Duration: 7200,
			},
		},
		{
			ID:       "d1",
			Kind:     feature.KindDisplayOnly,
			Geometry: orb.LineString{{5, 5}, {6, 6}},
			Parent:   "r1",
		},
	}

	fc := feature.Collection(features)
	require.Len(t, fc.Features, 4)

	byID := map[string]map[string]any{}
	for _, gf := range fc.Features {
		byID[gf.ID.(string)] = gf.Properties
	}

	c := byID["c1"]
	assert.Equal(t, true, c["isRadiusLine"])
	assert.Equal(t, 7.0, c["radiusInKm"])
	assert.Equal(t, 90.0, c["azimuthDegrees"])
	assert.Equal(t, 13.4, c["centerLng"])
	assert.Equal(t, 52.5, c["centerLat"])

	assert.Equal(t, true, byID["g1"]["isGreatCircle"])

	r := byID["r1"]
	assert.Equal(t, "car", r["profile"])
	assert.Equal(t, 111000.0, r["routeDistance"])
	assert.Equal(t, 7200.0, r["routeDuration"])

	assert.Equal(t, "r1", byID["d1"]["parent"])
	assert.Equal(t, "display_only", byID["d1"]["kind"])
}
