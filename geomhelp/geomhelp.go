// Package geomhelp converts between the geometry representations used in this
// module: ctessum/geom for computation, paulmach/orb for GeoJSON interchange
// and go-spatial/geom for GeoPackage/WKT encoding.
package geomhelp

import (
	"fmt"

	ctgeom "github.com/ctessum/geom"
	spgeom "github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
	"github.com/paulmach/orb"
)

// OrbToPolygonal converts an orb polygon or multipolygon into a ctessum
// polygonal value.
func OrbToPolygonal(g orb.Geometry) (ctgeom.Polygonal, error) {
	switch o := g.(type) {
	case orb.Polygon:
		return orbPolygon(o), nil
	case orb.MultiPolygon:
		multi := make(ctgeom.MultiPolygon, len(o))
		for i, polygon := range o {
			multi[i] = orbPolygon(polygon)
		}
		return multi, nil
	default:
		return nil, fmt.Errorf("geometry must be a polygon or multipolygon, got %v", g.GeoJSONType())
	}
}

func orbPolygon(o orb.Polygon) ctgeom.Polygon {
	polygon := make(ctgeom.Polygon, len(o))
	for r, ring := range o {
		points := make([]ctgeom.Point, len(ring))
		for p, point := range ring {
			points[p] = ctgeom.Point{X: point[0], Y: point[1]}
		}
		polygon[r] = points
	}
	return polygon
}

// PolygonalToOrb converts a ctessum polygonal value into an orb multipolygon.
func PolygonalToOrb(polygonal ctgeom.Polygonal) orb.MultiPolygon {
	polygons := polygonal.Polygons()
	multi := make(orb.MultiPolygon, 0, len(polygons))
	for _, polygon := range polygons {
		o := make(orb.Polygon, 0, len(polygon))
		for _, ring := range polygon {
			orbRing := make(orb.Ring, 0, len(ring)+1)
			for _, point := range ring {
				orbRing = append(orbRing, orb.Point{point.X, point.Y})
			}
			if len(orbRing) > 0 && orbRing[0] != orbRing[len(orbRing)-1] {
				orbRing = append(orbRing, orbRing[0])
			}
			o = append(o, orbRing)
		}
		if len(o) > 0 {
			multi = append(multi, o)
		}
	}
	return multi
}

// PolygonalToSpatial converts a ctessum polygonal value into a go-spatial
// multipolygon for encoding.
func PolygonalToSpatial(polygonal ctgeom.Polygonal) spgeom.MultiPolygon {
	polygons := polygonal.Polygons()
	multi := make(spgeom.MultiPolygon, 0, len(polygons))
	for _, polygon := range polygons {
		sp := make(spgeom.Polygon, 0, len(polygon))
		for _, ring := range polygon {
			spRing := make([][2]float64, 0, len(ring))
			for _, point := range ring {
				spRing = append(spRing, [2]float64{point.X, point.Y})
			}
			sp = append(sp, spRing)
		}
		if len(sp) > 0 {
			multi = append(multi, sp)
		}
	}
	return multi
}

// WktMustEncode renders a geometry as WKT for logging, truncated to maxLen
// characters. maxLen 0 disables truncation.
func WktMustEncode(polygonal ctgeom.Polygonal, maxLen uint) string {
	encoded := wkt.MustEncode(PolygonalToSpatial(polygonal))
	if maxLen == 0 {
		return encoded
	}
	return truncate.StringWithTail(encoded, maxLen, "...")
}
