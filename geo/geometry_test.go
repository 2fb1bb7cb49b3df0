package geo

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, maxX, maxY float64) geom.Polygon {
	return geom.Polygon{{
		{X: minX, Y: minY},
		{X: minX, Y: maxY},
		{X: maxX, Y: maxY},
		{X: maxX, Y: minY},
		{X: minX, Y: minY},
	}}
}

func TestNewGeometry(t *testing.T) {
	geometry, err := NewGeometry(square(0, 0, 1, 1), WGS84)
	require.NoError(t, err)
	require.Equal(t, WGS84, geometry.CRS())
	require.False(t, geometry.IsEmpty())

	_, err = NewGeometry(nil, WGS84)
	require.Error(t, err)

	require.True(t, Geometry{}.IsEmpty())
}

func TestGeometryBBox(t *testing.T) {
	geometry, err := NewGeometry(square(1, 2, 3, 5), WGS84)
	require.NoError(t, err)
	require.Equal(t, NewBBox(1, 2, 3, 5, WGS84), geometry.BBox())
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b geom.Polygonal
		want bool
	}{
		{name: "overlapping", a: square(0, 0, 2, 2), b: square(1, 1, 3, 3), want: true},
		{name: "contained", a: square(0, 0, 4, 4), b: square(1, 1, 2, 2), want: true},
		{name: "disjoint", a: square(0, 0, 1, 1), b: square(2, 2, 3, 3), want: false},
		{name: "shared edge", a: square(0, 0, 1, 1), b: square(1, 0, 2, 1), want: true},
		{name: "shared corner", a: square(0, 0, 1, 1), b: square(1, 1, 2, 2), want: true},
		{name: "edge segment overlap", a: square(0, 0, 4, 1), b: square(1, 1, 2, 2), want: true},
		{name: "nil operand", a: nil, b: square(0, 0, 1, 1), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Intersects(tt.a, tt.b))
		})
	}
}

func TestIntersection(t *testing.T) {
	geometry, err := NewGeometry(square(0, 0, 2, 2), WGS84)
	require.NoError(t, err)

	intersection := geometry.Intersection(square(1, 1, 3, 3))
	require.False(t, intersection.IsEmpty())
	require.True(t, intersection.BBox().Equals(NewBBox(1, 1, 2, 2, WGS84), 1e-9))
	require.InDelta(t, 1, intersection.Polygonal().Area(), 1e-9)

	empty := geometry.Intersection(square(5, 5, 6, 6))
	require.True(t, empty.IsEmpty())
}

func TestUnion(t *testing.T) {
	union, err := Union([]geom.Polygonal{square(0, 0, 1, 1), square(2, 0, 3, 1)}, WGS84)
	require.NoError(t, err)
	require.InDelta(t, 2, union.Polygonal().Area(), 1e-9)
	require.True(t, union.BBox().Equals(NewBBox(0, 0, 3, 1, WGS84), 1e-9))

	_, err = Union(nil, WGS84)
	require.Error(t, err)
}

func TestNormalizeShapes(t *testing.T) {
	geometry, err := NewGeometry(square(0, 0, 1, 1), WGS84)
	require.NoError(t, err)

	polygonals, err := NormalizeShapes([]Shape{Raw(square(2, 2, 3, 3)), geometry}, WGS84)
	require.NoError(t, err)
	require.Len(t, polygonals, 2)

	_, err = NormalizeShapes(nil, WGS84)
	require.ErrorContains(t, err, "at least one shape")

	_, err = NormalizeShapes([]Shape{nil}, WGS84)
	require.Error(t, err)

	_, err = NormalizeShapes([]Shape{Raw(nil)}, WGS84)
	require.Error(t, err)
}

func TestGeometryShapeReprojects(t *testing.T) {
	geometry, err := NewGeometry(square(5, 50, 6, 51), WGS84)
	require.NoError(t, err)

	polygonals, err := NormalizeShapes([]Shape{geometry}, WebMercator)
	require.NoError(t, err)
	bounds := polygonals[0].Bounds()
	require.Greater(t, bounds.Min.X, 180.0)
}
