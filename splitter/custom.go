package splitter

import (
	"fmt"

	"github.com/gridsplit/gridsplit/geo"
)

// CustomGridSplitter splits the area along a user-provided list of bboxes,
// dividing each intersecting grid bbox further into a sub-grid. The grid
// bboxes may live in a different CRS than the splitter; they are kept in
// their own CRS and only compared against the area for the intersection
// test.
type CustomGridSplitter struct {
	base
	bboxGrid       []geo.BBox
	bboxSplitShape SplitShape
}

// NewCustomGridSplitter splits the area along bboxGrid, dividing every grid
// bbox that intersects the area into a bboxSplitShape sub-grid.
func NewCustomGridSplitter(shapes []geo.Shape, crs geo.CRS, bboxGrid []geo.BBox,
	bboxSplitShape SplitShape, opts ...Option) (*CustomGridSplitter, error) {
	if len(bboxGrid) == 0 {
		return nil, fmt.Errorf("parameter bbox_grid must contain at least one bbox")
	}
	if err := validateSplitShape(bboxSplitShape, "bbox_split_shape"); err != nil {
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
	s := &CustomGridSplitter{
		base:           b,
		bboxGrid:       append([]geo.BBox(nil), bboxGrid...),
		bboxSplitShape: bboxSplitShape,
	}
	if err := s.split(); err != nil {
		return nil, err
	}
	return s, nil
}

// BBoxGrid returns a copy of the grid the splitter was built from.
func (s *CustomGridSplitter) BBoxGrid() []geo.BBox {
	return append([]geo.BBox(nil), s.bboxGrid...)
}

func (s *CustomGridSplitter) split() error {
	for gridIndex, gridBBox := range s.bboxGrid {
		intersects, err := s.intersectsArea(gridBBox)
		if err != nil {
			return err
		}
		if !intersects {
			continue
		}

		inner, err := NewBBoxSplitter([]geo.Shape{geo.Raw(gridBBox.Polygon())}, gridBBox.CRS, s.bboxSplitShape)
		if err != nil {
			return err
		}
		innerBBoxes, err := inner.BBoxList()
		if err != nil {
			return err
		}
		innerInfos := inner.InfoList()
		for k, bbox := range innerBBoxes {
			intersects, err := s.intersectsArea(bbox)
			if err != nil {
				return err
			}
			if !intersects {
				continue
			}
			info, ok := innerInfos[k].(BBoxSplitInfo)
			if !ok {
				return fmt.Errorf("unexpected info type %T from inner bbox split", innerInfos[k])
			}
			s.emit(bbox, GridSplitInfo{BBoxSplitInfo: info, GridIndex: gridIndex})
		}
	}
	return nil
}
