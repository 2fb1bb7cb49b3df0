package splitter

import (
	"fmt"

	ctgeom "github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/mathhelp"
	"github.com/gridsplit/gridsplit/utmzones"
)

// utmSplitter emits bboxes of a fixed metric size aligned to an absolute
// lattice, computed per intersecting UTM zone. The lattice has coordinates of
// the form (n*size_x + offset_x, m*size_y + offset_y), independent of where
// exactly the area lies, so overlapping areas produce coordinate-aligned
// tiles.
type utmSplitter struct {
	base
	bboxSize Size
	offset   Size
	zones    []utmzones.Zone
}

// UtmGridSplitter aligns its lattice per MGRS grid zone, using the embedded
// UTM/MGRS zone dataset.
type UtmGridSplitter struct {
	utmSplitter
}

// UtmZoneSplitter aligns its lattice per UTM zone band, using synthesized
// coarse zone polygons instead of a dataset.
type UtmZoneSplitter struct {
	utmSplitter
}

// NewUtmGridSplitter splits the area into bboxSize-sized tiles (meters)
// aligned to the UTM MGRS grid. Use WithOffset to shift the lattice.
func NewUtmGridSplitter(shapes []geo.Shape, crs geo.CRS, bboxSize Size, opts ...Option) (*UtmGridSplitter, error) {
	zones, err := utmzones.Grid()
	if err != nil {
		return nil, err
	}
	s, err := newUtmSplitter(shapes, crs, bboxSize, zones, opts)
	if err != nil {
		return nil, err
	}
	return &UtmGridSplitter{utmSplitter: *s}, nil
}

// NewUtmZoneSplitter splits the area into bboxSize-sized tiles (meters)
// aligned to the equator and the UTM zone bands. Use WithOffset to shift the
// lattice.
func NewUtmZoneSplitter(shapes []geo.Shape, crs geo.CRS, bboxSize Size, opts ...Option) (*UtmZoneSplitter, error) {
	s, err := newUtmSplitter(shapes, crs, bboxSize, utmzones.Bands(), opts)
	if err != nil {
		return nil, err
	}
	return &UtmZoneSplitter{utmSplitter: *s}, nil
}

func newUtmSplitter(shapes []geo.Shape, crs geo.CRS, bboxSize Size, zones []utmzones.Zone, opts []Option) (*utmSplitter, error) {
	if err := validateSize(bboxSize, "bbox_size"); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b, err := newBase(shapes, crs, o)
	if err != nil {
		return nil, err
	}
	s := &utmSplitter{base: b, bboxSize: bboxSize, offset: o.offset, zones: zones}
	if err := s.split(); err != nil {
		return nil, err
	}
	return s, nil
}

// BBoxSize returns the tile size in meters.
func (s *utmSplitter) BBoxSize() Size { return s.bboxSize }

// Offset returns the lattice offset in meters.
func (s *utmSplitter) Offset() Size { return s.offset }

// alignBBox floors the bbox's lower-left corner to the lattice. Tile
// boundaries become multiples of the bbox size counted from the offset.
func (s *utmSplitter) alignBBox(bbox geo.BBox) geo.BBox {
	return geo.BBox{
		MinX: mathhelp.FloorTo(bbox.MinX, s.bboxSize.X(), s.offset.X()),
		MinY: mathhelp.FloorTo(bbox.MinY, s.bboxSize.Y(), s.offset.Y()),
		MaxX: bbox.MaxX,
		MaxY: bbox.MaxY,
		CRS:  bbox.CRS,
	}
}

// zoneEntry makes a zone indexable by its bounds.
type zoneEntry struct {
	ctgeom.Polygonal
	index int
}

// candidateZones preselects the zones whose bounds overlap the area bounds,
// so that the exact intersection only runs for a handful of the up to 1204
// grid cells.
func (s *utmSplitter) candidateZones(area geo.Geometry) map[int]bool {
	tree := rtree.NewTree(25, 50)
	for i, zone := range s.zones {
		tree.Insert(zoneEntry{Polygonal: zone.Polygonal, index: i})
	}
	candidates := make(map[int]bool)
	for _, entry := range tree.SearchIntersect(area.BBox().Bounds()) {
		candidates[entry.(zoneEntry).index] = true
	}
	return candidates
}

func (s *utmSplitter) split() error {
	area, err := s.areaShape.Reproject(geo.WGS84)
	if err != nil {
		return err
	}
	candidates := s.candidateZones(area)

	index := 0
	for zoneIndex, zone := range s.zones {
		// The UTM MGRS grid contains placeholder cells at the poles (0A, 0B,
		// 0Y, 0Z) that no UTM CRS covers.
		if zone.Zone == 0 || !candidates[zoneIndex] {
			continue
		}

		intersection := zone.Polygonal.Intersection(area.Polygonal())
		if intersection == nil || intersection.Area() == 0 {
			continue
		}
		zoneArea, err := geo.NewGeometry(intersection, geo.WGS84)
		if err != nil {
			return err
		}
		zoneArea, err = zoneArea.Reproject(zone.CRS())
		if err != nil {
			return err
		}

		aligned := s.alignBBox(zoneArea.BBox())
		partition := aligned.PartitionBySize(s.bboxSize.X(), s.bboxSize.Y())
		for i, column := range partition {
			for j, cell := range column {
				if !geo.Intersects(cell.Polygon(), zoneArea.Polygonal()) {
					continue
				}
				s.emit(cell, UtmSplitInfo{
					CRS:        zone.CRS(),
					UtmZone:    fmt.Sprintf("%02d", zone.Zone),
					UtmRow:     zone.Row,
					Hemisphere: zone.Hemisphere,
					Index:      index,
					IndexX:     i,
					IndexY:     j,
				})
				index++
			}
		}
	}
	return nil
}
