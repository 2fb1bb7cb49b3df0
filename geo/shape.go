package geo

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Shape is a splitter input: either a bare polygonal value assumed to already
// be in the splitter's CRS, or a Geometry that is reprojected into it first.
// The set of implementations is closed.
type Shape interface {
	shapeIn(crs CRS) (geom.Polygonal, error)
}

// Raw marks a polygonal value as already being in the consumer's CRS.
func Raw(polygonal geom.Polygonal) Shape {
	return rawShape{polygonal}
}

type rawShape struct {
	polygonal geom.Polygonal
}

func (s rawShape) shapeIn(CRS) (geom.Polygonal, error) {
	if s.polygonal == nil {
		return nil, fmt.Errorf("shape must be a non-nil polygon or multipolygon")
	}
	return s.polygonal, nil
}

// NormalizeShapes resolves every input shape into a bare polygonal value in
// the given CRS.
func NormalizeShapes(shapes []Shape, crs CRS) ([]geom.Polygonal, error) {
	if len(shapes) == 0 {
		return nil, fmt.Errorf("at least one shape is required")
	}
	polygonals := make([]geom.Polygonal, len(shapes))
	for i, shape := range shapes {
		if shape == nil {
			return nil, fmt.Errorf("shape %d is nil", i)
		}
		polygonal, err := shape.shapeIn(crs)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		polygonals[i] = polygonal
	}
	return polygonals, nil
}

func (g Geometry) shapeIn(crs CRS) (geom.Polygonal, error) {
	if g.polygonal == nil {
		return nil, fmt.Errorf("shape must be a non-nil polygon or multipolygon")
	}
	reprojected, err := g.Reproject(crs)
	if err != nil {
		return nil, err
	}
	return reprojected.polygonal, nil
}
