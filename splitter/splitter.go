// Package splitter partitions an area of interest into a grid of bounding
// boxes, each tagged with metadata describing its place in the grid. The
// strategies range from a plain n x m split of the area bbox to slippy-map
// quad tiles, absolute UTM lattices and grids obtained from external tile
// services.
package splitter

import (
	"fmt"

	ctgeom "github.com/ctessum/geom"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/mathhelp"
)

// SplitShape is a (columns, rows) grid shape.
type SplitShape = mathhelp.Pair[int]

// Size is an (x, y) extent pair, in units of the CRS it is used with.
type Size = mathhelp.Pair[float64]

// SquareShape returns the grid shape (n, n).
func SquareShape(n int) SplitShape {
	return mathhelp.Square(n)
}

// SquareSize returns the size (v, v).
func SquareSize(v float64) Size {
	return mathhelp.Square(v)
}

// AreaSplitter is the query surface shared by all splitters. A splitter
// computes its outputs once, at construction; afterwards it is read-only and
// safe for concurrent use.
type AreaSplitter interface {
	// BBoxList returns the split result, optionally buffered, size-reduced
	// and reprojected (in that order).
	BBoxList(opts ...BBoxListOption) ([]geo.BBox, error)
	// InfoList returns one metadata record per bbox, in bbox order.
	InfoList() []Info
	// GeometryList returns the intersection of each bbox with the area shape.
	GeometryList() ([]geo.Geometry, error)
	// AreaShape returns the union of the input shapes.
	AreaShape() geo.Geometry
	// AreaBBox returns the bbox enclosing all input shapes, in the splitter CRS.
	AreaBBox() geo.BBox
	// AreaBBoxIn returns the area bbox reprojected to the given CRS.
	AreaBBoxIn(crs geo.CRS) (geo.BBox, error)
}

// Option configures splitter construction.
type Option func(*options)

type options struct {
	reduceBBoxSizes bool
	offset          Size
}

// WithReduceBBoxSizes makes BBoxList tighten every bbox to the area shape by
// default. It can still be overridden per call.
func WithReduceBBoxSizes(reduce bool) Option {
	return func(o *options) { o.reduceBBoxSizes = reduce }
}

// WithOffset shifts the absolute tile lattice of the UTM splitters, in meters.
// Other splitters ignore it.
func WithOffset(x, y float64) Option {
	return func(o *options) { o.offset = Size{x, y} }
}

// BBoxListOption configures a single BBoxList call.
type BBoxListOption func(*bboxListOptions)

type bboxListOptions struct {
	crs    geo.CRS
	buffer *Size
	reduce *bool
}

// InCRS reprojects the returned bboxes to the given CRS.
func InCRS(crs geo.CRS) BBoxListOption {
	return func(o *bboxListOptions) { o.crs = crs }
}

// WithBuffer grows every bbox by a fraction of its size on both axes, making
// neighbouring bboxes overlap.
func WithBuffer(fraction float64) BBoxListOption {
	return WithBufferXY(fraction, fraction)
}

// WithBufferXY grows every bbox by per-axis fractions of its size.
func WithBufferXY(x, y float64) BBoxListOption {
	return func(o *bboxListOptions) { o.buffer = &Size{x, y} }
}

// Reduced overrides the splitter's reduce-bbox-sizes default for one call.
func Reduced(reduce bool) BBoxListOption {
	return func(o *bboxListOptions) { o.reduce = &reduce }
}

// base carries the state shared by all splitters. All fields are written once
// during construction.
type base struct {
	crs             geo.CRS
	shapes          []ctgeom.Polygonal
	areaShape       geo.Geometry
	areaBBox        geo.BBox
	reduceBBoxSizes bool

	bboxes []geo.BBox
	infos  []Info
}

func newBase(shapes []geo.Shape, crs geo.CRS, opts options) (base, error) {
	// Fail on an unprojectable CRS up front instead of on the first reproject.
	if _, err := crs.Proj4(); err != nil {
		return base{}, err
	}
	polygonals, err := geo.NormalizeShapes(shapes, crs)
	if err != nil {
		return base{}, err
	}
	areaShape, err := geo.Union(polygonals, crs)
	if err != nil {
		return base{}, err
	}
	// The area bbox is assembled from each shape's own bounds rather than
	// derived from the union, which can lose precision.
	areaBBox := boundsOf(polygonals[0], crs)
	for _, polygonal := range polygonals[1:] {
		bbox := boundsOf(polygonal, crs)
		if bbox.MinX < areaBBox.MinX {
			areaBBox.MinX = bbox.MinX
		}
		if bbox.MinY < areaBBox.MinY {
			areaBBox.MinY = bbox.MinY
		}
		if bbox.MaxX > areaBBox.MaxX {
			areaBBox.MaxX = bbox.MaxX
		}
		if bbox.MaxY > areaBBox.MaxY {
			areaBBox.MaxY = bbox.MaxY
		}
	}

	return base{
		crs:             crs,
		shapes:          polygonals,
		areaShape:       areaShape,
		areaBBox:        areaBBox,
		reduceBBoxSizes: opts.reduceBBoxSizes,
	}, nil
}

func boundsOf(polygonal ctgeom.Polygonal, crs geo.CRS) geo.BBox {
	bounds := polygonal.Bounds()
	return geo.BBox{
		MinX: bounds.Min.X, MinY: bounds.Min.Y,
		MaxX: bounds.Max.X, MaxY: bounds.Max.Y,
		CRS: crs,
	}
}

func (s *base) BBoxList(opts ...BBoxListOption) ([]geo.BBox, error) {
	var listOpts bboxListOptions
	for _, opt := range opts {
		opt(&listOpts)
	}

	bboxes := make([]geo.BBox, len(s.bboxes))
	copy(bboxes, s.bboxes)

	if listOpts.buffer != nil {
		for i, bbox := range bboxes {
			buffered, err := bbox.Buffer(listOpts.buffer.X(), listOpts.buffer.Y())
			if err != nil {
				return nil, err
			}
			bboxes[i] = buffered
		}
	}

	reduce := s.reduceBBoxSizes
	if listOpts.reduce != nil {
		reduce = *listOpts.reduce
	}
	if reduce {
		reduced, err := s.reduceSizes(bboxes)
		if err != nil {
			return nil, err
		}
		bboxes = reduced
	}

	if listOpts.crs != "" {
		for i, bbox := range bboxes {
			reprojected, err := bbox.Reproject(listOpts.crs)
			if err != nil {
				return nil, err
			}
			bboxes[i] = reprojected
		}
	}
	return bboxes, nil
}

func (s *base) InfoList() []Info {
	infos := make([]Info, len(s.infos))
	copy(infos, s.infos)
	return infos
}

func (s *base) GeometryList() ([]geo.Geometry, error) {
	geometries := make([]geo.Geometry, len(s.bboxes))
	for i, bbox := range s.bboxes {
		intersection, err := s.intersectionArea(bbox)
		if err != nil {
			return nil, err
		}
		geometries[i] = intersection
	}
	return geometries, nil
}

func (s *base) AreaShape() geo.Geometry {
	return s.areaShape
}

func (s *base) AreaBBox() geo.BBox {
	return s.areaBBox
}

// AreaBBoxIn returns the area bbox reprojected to the given CRS.
func (s *base) AreaBBoxIn(crs geo.CRS) (geo.BBox, error) {
	return s.areaBBox.Reproject(crs)
}

// bboxToAreaPolygon reprojects a bbox into the splitter CRS as a polygon.
func (s *base) bboxToAreaPolygon(bbox geo.BBox) (ctgeom.Polygonal, error) {
	reprojected, err := bbox.Geometry().Reproject(s.crs)
	if err != nil {
		return nil, err
	}
	return reprojected.Polygonal(), nil
}

// intersectsArea reports whether the bbox touches or overlaps the area shape.
func (s *base) intersectsArea(bbox geo.BBox) (bool, error) {
	polygon, err := s.bboxToAreaPolygon(bbox)
	if err != nil {
		return false, err
	}
	return geo.Intersects(polygon, s.areaShape.Polygonal()), nil
}

// intersectionArea returns the intersection of the bbox and the area shape,
// in the splitter CRS.
func (s *base) intersectionArea(bbox geo.BBox) (geo.Geometry, error) {
	polygon, err := s.bboxToAreaPolygon(bbox)
	if err != nil {
		return geo.Geometry{}, err
	}
	return s.areaShape.Intersection(polygon), nil
}

// reduceSizes replaces each bbox with the bbox of its intersection with the
// area shape, in the bbox's own CRS. A reduced bbox never grows.
func (s *base) reduceSizes(bboxes []geo.BBox) ([]geo.BBox, error) {
	reduced := make([]geo.BBox, len(bboxes))
	for i, bbox := range bboxes {
		intersection, err := s.intersectionArea(bbox)
		if err != nil {
			return nil, err
		}
		if intersection.IsEmpty() {
			// cells that only touch the area boundary have nothing to
			// tighten against
			reduced[i] = bbox
			continue
		}
		tightened, err := intersection.BBox().Reproject(bbox.CRS)
		if err != nil {
			return nil, err
		}
		reduced[i] = tightened
	}
	return reduced, nil
}

// emit appends one bbox and its metadata, keeping the two lists in lockstep.
func (s *base) emit(bbox geo.BBox, info Info) {
	s.bboxes = append(s.bboxes, bbox)
	s.infos = append(s.infos, info)
}

func validateSplitShape(shape SplitShape, name string) error {
	if shape.X() < 1 || shape.Y() < 1 {
		return fmt.Errorf("parameter %s must consist of positive integers, got %v", name, shape)
	}
	return nil
}

func validateSize(size Size, name string) error {
	if size.X() <= 0 || size.Y() <= 0 {
		return fmt.Errorf("parameter %s must consist of positive values, got %v", name, size)
	}
	return nil
}
