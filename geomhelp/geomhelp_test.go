package geomhelp

import (
	"testing"

	ctgeom "github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestOrbToPolygonal(t *testing.T) {
	polygon := orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}}

	polygonal, err := OrbToPolygonal(polygon)
	require.NoError(t, err)
	require.InDelta(t, 1, polygonal.Area(), 1e-9)

	multi, err := OrbToPolygonal(orb.MultiPolygon{polygon, polygon})
	require.NoError(t, err)
	require.Len(t, multi.Polygons(), 2)

	_, err = OrbToPolygonal(orb.Point{0, 0})
	require.ErrorContains(t, err, "must be a polygon or multipolygon")
}

func TestPolygonalToOrbClosesRings(t *testing.T) {
	open := ctgeom.Polygon{{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0},
	}}

	multi := PolygonalToOrb(open)
	require.Len(t, multi, 1)
	ring := multi[0][0]
	require.Len(t, ring, 5)
	require.Equal(t, ring[0], ring[len(ring)-1])
}

func TestPolygonalToSpatial(t *testing.T) {
	polygon := ctgeom.Polygon{{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
	}}

	multi := PolygonalToSpatial(polygon)
	require.Len(t, multi, 1)
	require.Len(t, multi[0][0], 5)
	require.Equal(t, [2]float64{0, 1}, multi[0][0][1])
}

func TestWktMustEncode(t *testing.T) {
	polygon := ctgeom.Polygon{{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
	}}

	full := WktMustEncode(polygon, 0)
	require.Contains(t, full, "MULTIPOLYGON")

	short := WktMustEncode(polygon, 15)
	require.LessOrEqual(t, len(short), 15)
	require.Contains(t, short, "...")
}
