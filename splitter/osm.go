package splitter

import (
	"fmt"
	"sync"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/mathhelp"
)

// webMercatorMax is the Web Mercator x-coordinate of the WGS84 point
// (180, 0). The square [-max, -max, max, max] is the world bbox of the
// slippy-map tiling scheme; it ends at latitude ~85.0511.
var webMercatorMax = sync.OnceValues(func() (float64, error) {
	x, _, err := geo.TransformPoint(180, 0, geo.WGS84, geo.WebMercator)
	return x, err
})

// OsmSplitter recursively quarters the slippy-map world tile down to the
// requested zoom level, keeping the tiles that intersect the area. Tiles are
// numbered in the standard OSM way: row 0 is the northernmost row.
type OsmSplitter struct {
	base
	zoomLevel int
}

// NewOsmSplitter splits the area into all slippy-map tiles of the given zoom
// level that intersect it. The area must lie within the latitude band
// supported by the tiling scheme (about +-85.0511 degrees).
func NewOsmSplitter(shapes []geo.Shape, crs geo.CRS, zoomLevel int, opts ...Option) (*OsmSplitter, error) {
	if zoomLevel < 0 {
		return nil, fmt.Errorf("parameter zoom_level must not be negative, got %d", zoomLevel)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b, err := newBase(shapes, crs, o)
	if err != nil {
		return nil, err
	}
	s := &OsmSplitter{base: b, zoomLevel: zoomLevel}
	if err := s.split(); err != nil {
		return nil, err
	}
	return s, nil
}

// ZoomLevel returns the zoom level the splitter was built for.
func (s *OsmSplitter) ZoomLevel() int {
	return s.zoomLevel
}

// WorldBBox returns the bbox of the entire world in Web Mercator.
func (s *OsmSplitter) WorldBBox() (geo.BBox, error) {
	max, err := webMercatorMax()
	if err != nil {
		return geo.BBox{}, err
	}
	return geo.BBox{MinX: -max, MinY: -max, MaxX: max, MaxY: max, CRS: geo.WebMercator}, nil
}

func (s *OsmSplitter) split() error {
	if err := s.checkAreaBBox(); err != nil {
		return err
	}
	world, err := s.WorldBBox()
	if err != nil {
		return err
	}
	if err := s.recursiveSplit(world, 0, 0, 0); err != nil {
		return err
	}
	// The recursion emits Web Mercator tiles; hand them back in the
	// splitter's own CRS.
	for i, bbox := range s.bboxes {
		reprojected, err := bbox.Reproject(s.crs)
		if err != nil {
			return err
		}
		s.bboxes[i] = reprojected
	}
	return nil
}

// checkAreaBBox verifies that the area bbox lies completely inside the
// slippy-map grid, i.e. within the supported latitude band.
func (s *OsmSplitter) checkAreaBBox() error {
	max, err := webMercatorMax()
	if err != nil {
		return err
	}
	areaBBox, err := s.AreaBBoxIn(geo.WebMercator)
	if err != nil {
		return err
	}
	for _, coord := range []float64{areaBBox.MinX, areaBBox.MinY, areaBBox.MaxX, areaBBox.MaxY} {
		if !mathhelp.BetweenInc(coord, -max, max) {
			return fmt.Errorf("OsmSplitter only works for areas with latitude in the interval (-85.0511, 85.0511)")
		}
	}
	return nil
}

func (s *OsmSplitter) recursiveSplit(bbox geo.BBox, zoomLevel, column, row int) error {
	if zoomLevel == s.zoomLevel {
		s.emit(bbox, OsmSplitInfo{ZoomLevel: zoomLevel, IndexX: column, IndexY: row})
		return nil
	}

	partition := bbox.Partition(2, 2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			child := partition[i][j]
			intersects, err := s.intersectsArea(child)
			if err != nil {
				return err
			}
			if !intersects {
				continue
			}
			// Partition counts rows south to north while slippy tiles count
			// them north to south, hence 1-j.
			if err := s.recursiveSplit(child, zoomLevel+1, 2*column+i, 2*row+1-j); err != nil {
				return err
			}
		}
	}
	return nil
}
