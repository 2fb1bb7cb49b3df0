package geo

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Geometry is an immutable (multi)polygon tied to a CRS.
type Geometry struct {
	polygonal geom.Polygonal
	crs       CRS
}

// NewGeometry wraps a polygon or multipolygon with its CRS.
func NewGeometry(polygonal geom.Polygonal, crs CRS) (Geometry, error) {
	if polygonal == nil {
		return Geometry{}, fmt.Errorf("geometry must not be nil")
	}
	return Geometry{polygonal: polygonal, crs: crs}, nil
}

func (g Geometry) CRS() CRS                  { return g.crs }
func (g Geometry) Polygonal() geom.Polygonal { return g.polygonal }

// IsEmpty reports whether the geometry contains no polygon with at least one
// ring of three points.
func (g Geometry) IsEmpty() bool {
	if g.polygonal == nil {
		return true
	}
	for _, polygon := range g.polygonal.Polygons() {
		for _, ring := range polygon {
			if len(ring) >= 3 {
				return false
			}
		}
	}
	return true
}

// Reproject returns a new Geometry in the given CRS.
func (g Geometry) Reproject(crs CRS) (Geometry, error) {
	if crs == g.crs {
		return g, nil
	}
	gg, err := Transform(g.polygonal, g.crs, crs)
	if err != nil {
		return Geometry{}, err
	}
	polygonal, ok := gg.(geom.Polygonal)
	if !ok {
		return Geometry{}, fmt.Errorf("reprojected geometry is a %T, not polygonal", gg)
	}
	return Geometry{polygonal: polygonal, crs: crs}, nil
}

// BBox returns the minimal bbox enclosing the geometry, in the geometry's CRS.
func (g Geometry) BBox() BBox {
	bounds := g.polygonal.Bounds()
	return BBox{
		MinX: bounds.Min.X, MinY: bounds.Min.Y,
		MaxX: bounds.Max.X, MaxY: bounds.Max.Y,
		CRS: g.crs,
	}
}

// Intersection returns the intersection with another polygonal value assumed
// to be in the same CRS. The result may be empty.
func (g Geometry) Intersection(other geom.Polygonal) Geometry {
	return Geometry{polygonal: g.polygonal.Intersection(other), crs: g.crs}
}

// Intersects reports whether two polygonal values share at least one point,
// including shapes that only touch along an edge or at a corner. Both must be
// in the same CRS.
func Intersects(a, b geom.Polygonal) bool {
	if a == nil || b == nil {
		return false
	}
	intersection := a.Intersection(b)
	if intersection != nil && intersection.Area() > 0 {
		return true
	}
	// The boolean intersection of touching polygons is empty, so test the
	// boundary vertices directly.
	return touches(a, b) || touches(b, a)
}

// touches reports whether any vertex of a lies inside or on the boundary of b.
func touches(a, b geom.Polygonal) bool {
	for _, polygon := range a.Polygons() {
		for _, ring := range polygon {
			for _, point := range ring {
				if point.Within(b) != geom.Outside {
					return true
				}
			}
		}
	}
	return false
}

// Union joins polygonal shapes into one. At least one shape is required.
func Union(shapes []geom.Polygonal, crs CRS) (Geometry, error) {
	if len(shapes) == 0 {
		return Geometry{}, fmt.Errorf("cannot union an empty list of shapes")
	}
	joined := shapes[0]
	for _, shape := range shapes[1:] {
		joined = joined.Union(shape)
	}
	return NewGeometry(joined, crs)
}
