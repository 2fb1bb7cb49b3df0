package splitter

import (
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gridsplit/gridsplit/geo"
)

// TimeInterval bounds a catalog search in time.
type TimeInterval struct {
	From time.Time
	To   time.Time
}

// Collection identifies a satellite data collection. HasTiles is false for
// collections without a tiling concept, such as elevation models; those
// cannot be split by tiles.
type Collection struct {
	Name     string
	HasTiles bool
}

// TileDescriptor is one acquisition returned by a tile service: a named tile
// footprint observed at some time.
type TileDescriptor struct {
	Name        string
	BBox        geo.BBox
	SensingTime time.Time
	Footprint   geo.Geometry
}

// TileService searches an external catalog for the tiles of a data
// collection covering an area in a time interval, in a stable order.
type TileService interface {
	Tiles(area geo.BBox, interval TimeInterval, collection Collection) ([]TileDescriptor, error)
}

// TileGroup aggregates all acquisitions of one tile name. The bbox is the
// first seen for that name; later acquisitions are assumed to share it.
type TileGroup struct {
	BBox       geo.BBox
	Times      []time.Time
	Footprints []geo.Geometry
}

// TileSplitter splits the area along the original tiling grid of a data
// collection, as reported by an external tile service, optionally splitting
// each tile bbox further into a sub-grid.
type TileSplitter struct {
	base
	service        TileService
	interval       TimeInterval
	collection     Collection
	tileSplitShape SplitShape
	tileGrid       *orderedmap.OrderedMap[string, *TileGroup]
}

// NewTileSplitter queries the service for the collection's tiles over the
// area and time interval, groups them by tile name and splits every
// intersecting tile bbox into a tileSplitShape sub-grid.
func NewTileSplitter(shapes []geo.Shape, crs geo.CRS, service TileService, interval TimeInterval,
	collection Collection, tileSplitShape SplitShape, opts ...Option) (*TileSplitter, error) {
	if service == nil {
		return nil, fmt.Errorf("a tile service is required")
	}
	if !collection.HasTiles {
		return nil, fmt.Errorf("splitting by tiles is not available for collection %q, it has no tiling concept", collection.Name)
	}
	if err := validateSplitShape(tileSplitShape, "tile_split_shape"); err != nil {
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
	s := &TileSplitter{
		base:           b,
		service:        service,
		interval:       interval,
		collection:     collection,
		tileSplitShape: tileSplitShape,
	}
	if err := s.split(); err != nil {
		return nil, err
	}
	return s, nil
}

// TileGrid returns the raw per-tile grouping the split was based on, keyed by
// tile name in first-seen order.
func (s *TileSplitter) TileGrid() *orderedmap.OrderedMap[string, TileGroup] {
	grid := orderedmap.New[string, TileGroup]()
	for pair := s.tileGrid.Oldest(); pair != nil; pair = pair.Next() {
		grid.Set(pair.Key, *pair.Value)
	}
	return grid
}

func (s *TileSplitter) split() error {
	descriptors, err := s.service.Tiles(s.areaBBox, s.interval, s.collection)
	if err != nil {
		return err
	}

	s.tileGrid = orderedmap.New[string, *TileGroup]()
	for _, descriptor := range descriptors {
		group, ok := s.tileGrid.Get(descriptor.Name)
		if !ok {
			group = &TileGroup{BBox: descriptor.BBox}
			s.tileGrid.Set(descriptor.Name, group)
		}
		group.Times = append(group.Times, descriptor.SensingTime)
		group.Footprints = append(group.Footprints, descriptor.Footprint)
	}

	for pair := s.tileGrid.Oldest(); pair != nil; pair = pair.Next() {
		name, group := pair.Key, pair.Value
		intersects, err := s.intersectsArea(group.BBox)
		if err != nil {
			return err
		}
		if !intersects {
			continue
		}

		inner, err := NewBBoxSplitter([]geo.Shape{geo.Raw(group.BBox.Polygon())}, group.BBox.CRS, s.tileSplitShape)
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
			s.emit(bbox, TileSplitInfo{BBoxSplitInfo: info, Tile: name})
		}
	}
	return nil
}
