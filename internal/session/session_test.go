package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-draw/internal/config"
	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/measure"
	"github.com/joeblew999/plat-draw/internal/route"
	"github.com/joeblew999/plat-draw/internal/session"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Routing.DebounceMs = 1
	return cfg
}

func straightFetcher() route.Fetcher {
	return route.FetcherFunc(func(ctx context.Context, from, to orb.Point, p route.Profile) (route.Segment, error) {
		seg := route.StraightLine(from, to, p)
		seg.Approximate = false
		return seg, nil
	})
}

func TestSessionLineDrawToLabels(t *testing.T) {
	sess := session.New("s1", straightFetcher(), testConfig())

	require.NoError(t, sess.StartMode("line", ""))
	assert.Equal(t, "line", sess.ActiveMode())

	sess.PointerDown(orb.Point{13.4, 52.5})
	sess.PointerDown(orb.Point{13.5, 52.5})
	sess.KeyUp("Enter")

	assert.Equal(t, "", sess.ActiveMode(), "Enter commits and clears the mode")

	fc := sess.Features()
	require.Len(t, fc.Features, 1)
	featureID := fc.Features[0].ID.(string)

	_, err := sess.Measurements.Create(measure.Measurement{
		DrawFeatureID: featureID,
		Type:          measure.TypeLine,
	})
	require.NoError(t, err)
	sess.Engine.Poke()

	labels := sess.Labels()
	require.Len(t, labels, 1)
	assert.Equal(t, "length", labels[0].Kind)
	assert.Equal(t, featureID, labels[0].FeatureID)
}

func TestSessionUnknownModeRejected(t *testing.T) {
	sess := session.New("s1", straightFetcher(), testConfig())
	assert.Error(t, sess.StartMode("spline", ""))
}

func TestSessionEditNeedsSelection(t *testing.T) {
	sess := session.New("s1", straightFetcher(), testConfig())
	assert.Error(t, sess.StartMode("edit", ""))
}

func TestSessionRoutingEndToEnd(t *testing.T) {
	sess := session.New("s1", straightFetcher(), testConfig())

	require.NoError(t, sess.StartMode("routing", route.Bicycle))
	sess.PointerDown(orb.Point{13.4, 52.5})
	sess.PointerDown(orb.Point{13.45, 52.52})
	sess.PointerDown(orb.Point{13.5, 52.55})

	require.Eventually(t, func() bool {
		for _, f := range sess.Store.List() {
			if f.Kind == feature.KindRouted && f.Route != nil &&
				len(f.Route.Segments) == 2 && len(f.Route.Segments[1].Geometry) > 0 {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	sess.KeyUp("Enter")

	require.Eventually(t, func() bool {
		return sess.ActiveMode() == ""
	}, time.Second, 5*time.Millisecond)

	var routed feature.Feature
	for _, f := range sess.Store.List() {
		if f.Kind == feature.KindRouted {
			routed = f
		}
	}
	require.NotNil(t, routed.Route)
	assert.Equal(t, route.Bicycle, routed.Route.Profile)
	assert.Len(t, routed.Route.Waypoints, 3)
	assert.Equal(t, orb.LineString{{13.4, 52.5}, {13.45, 52.52}, {13.5, 52.55}}, routed.Geometry)
}

func TestSessionSelectThenEdit(t *testing.T) {
	sess := session.New("s1", straightFetcher(), testConfig())

	require.NoError(t, sess.StartMode("line", ""))
	sess.PointerDown(orb.Point{13.4, 52.5})
	sess.PointerDown(orb.Point{13.5, 52.5})
	sess.KeyUp("Enter")

	require.NoError(t, sess.StartMode("select", ""))
	sess.PointerDown(orb.Point{13.4, 52.5})
	require.NotEmpty(t, sess.Selected())

	require.NoError(t, sess.StartMode("edit", ""))
	handles := sess.Handles()
	assert.Len(t, handles, 2)

	moved := orb.Point{13.42, 52.51}
	sess.PointerDown(orb.Point{13.4, 52.5})
	sess.PointerMove(moved)
	sess.PointerUp(moved)

	f, ok := sess.Store.Get(sess.Selected())
	require.True(t, ok)
	line := f.Geometry.(orb.LineString)
	assert.Equal(t, moved, line[0])
}

func TestSessionCompletedEventOnBus(t *testing.T) {
	sess := session.New("s1", straightFetcher(), testConfig())
	sub := sess.Bus.Subscribe()
	defer sess.Bus.Unsubscribe(sub)

	require.NoError(t, sess.StartMode("line", ""))
	sess.PointerDown(orb.Point{0, 0})
	sess.PointerDown(orb.Point{0.01, 0})
	sess.KeyUp("Enter")

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-sub:
			if ev.Resource == "features" && ev.Action == "completed" {
				assert.NotEmpty(t, ev.ID)
				return
			}
		case <-deadline:
			t.Fatal("no completed event")
		}
	}
}

func TestServiceLifecycle(t *testing.T) {
	svc := session.NewService(straightFetcher(), testConfig())

	a := svc.Create()
	b := svc.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, svc.Len())

	got, ok := svc.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	require.NoError(t, svc.Delete(a.ID))
	assert.Equal(t, 1, svc.Len())
	assert.Error(t, svc.Delete(a.ID))
}
