package splitter

import (
	"fmt"

	"github.com/gridsplit/gridsplit/geo"
)

// BBoxSplitter splits the area bbox into a grid and keeps the cells that
// intersect the area: either a fixed number of columns and rows, or cells of
// a fixed size with the count derived from the area extent.
type BBoxSplitter struct {
	base
	splitShape *SplitShape
	splitSize  *Size
}

// NewBBoxSplitter splits the area bbox into splitShape.X columns and
// splitShape.Y rows of equal size.
func NewBBoxSplitter(shapes []geo.Shape, crs geo.CRS, splitShape SplitShape, opts ...Option) (*BBoxSplitter, error) {
	if err := validateSplitShape(splitShape, "split_shape"); err != nil {
		return nil, err
	}
	return newBBoxSplitter(shapes, crs, &splitShape, nil, opts)
}

// NewBBoxSplitterBySize splits the area bbox into cells of the given size, in
// units of the splitter CRS. The grid is anchored at the bbox's lower-left
// corner and rounded up to cover the whole bbox.
func NewBBoxSplitterBySize(shapes []geo.Shape, crs geo.CRS, splitSize Size, opts ...Option) (*BBoxSplitter, error) {
	if err := validateSize(splitSize, "split_size"); err != nil {
		return nil, err
	}
	return newBBoxSplitter(shapes, crs, nil, &splitSize, opts)
}

func newBBoxSplitter(shapes []geo.Shape, crs geo.CRS, splitShape *SplitShape, splitSize *Size, opts []Option) (*BBoxSplitter, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b, err := newBase(shapes, crs, o)
	if err != nil {
		return nil, err
	}
	s := &BBoxSplitter{base: b, splitShape: splitShape, splitSize: splitSize}
	if err := s.split(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BBoxSplitter) split() error {
	var partition [][]geo.BBox
	switch {
	case s.splitShape != nil:
		partition = s.areaBBox.Partition(s.splitShape.X(), s.splitShape.Y())
	case s.splitSize != nil:
		partition = s.areaBBox.PartitionBySize(s.splitSize.X(), s.splitSize.Y())
	default:
		return fmt.Errorf("either split_shape or split_size must be given")
	}

	for i, column := range partition {
		for j, cell := range column {
			intersects, err := s.intersectsArea(cell)
			if err != nil {
				return err
			}
			if !intersects {
				continue
			}
			s.emit(cell, BBoxSplitInfo{Parent: s.areaBBox, IndexX: i, IndexY: j})
		}
	}
	return nil
}
