package splitter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gridsplit/gridsplit/geo"
)

type fakeTileService struct {
	descriptors []TileDescriptor
	err         error
}

func (f fakeTileService) Tiles(geo.BBox, TimeInterval, Collection) ([]TileDescriptor, error) {
	return f.descriptors, f.err
}

func tileDescriptor(name string, bbox geo.BBox, day int) TileDescriptor {
	footprint, _ := geo.NewGeometry(bbox.Polygon(), bbox.CRS)
	return TileDescriptor{
		Name:        name,
		BBox:        bbox,
		SensingTime: time.Date(2020, 1, day, 0, 0, 0, 0, time.UTC),
		Footprint:   footprint,
	}
}

func TestTileSplitter(t *testing.T) {
	service := fakeTileService{descriptors: []TileDescriptor{
		tileDescriptor("T1", geo.NewBBox(0, 0, 1, 1, geo.WGS84), 1),
		tileDescriptor("T2", geo.NewBBox(10, 10, 11, 11, geo.WGS84), 2),
		tileDescriptor("T1", geo.NewBBox(0, 0, 1, 1, geo.WGS84), 3),
		tileDescriptor("T3", geo.NewBBox(1, 1, 2, 2, geo.WGS84), 4),
	}}
	collection := Collection{Name: "S2L1C", HasTiles: true}
	interval := TimeInterval{
		From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	s, err := NewTileSplitter(rawShapes(square(0, 0, 2, 2)), geo.WGS84, service, interval, collection, SquareShape(1))
	require.NoError(t, err)

	// T2 is far away and dropped, T1 and T3 stay in first-seen order
	bboxes, err := s.BBoxList()
	require.NoError(t, err)
	require.Len(t, bboxes, 2)
	require.True(t, bboxes[0].Equals(geo.NewBBox(0, 0, 1, 1, geo.WGS84), 1e-9))
	require.True(t, bboxes[1].Equals(geo.NewBBox(1, 1, 2, 2, geo.WGS84), 1e-9))

	infos := s.InfoList()
	require.Equal(t, "T1", infos[0].(TileSplitInfo).Tile)
	require.Equal(t, "T3", infos[1].(TileSplitInfo).Tile)
	require.Equal(t, "T1", infos[0].Properties()["tile"])

	// the grid still holds every tile, including the dropped one
	grid := s.TileGrid()
	require.Equal(t, 3, grid.Len())
	t1, ok := grid.Get("T1")
	require.True(t, ok)
	require.Len(t, t1.Times, 2)
	require.Len(t, t1.Footprints, 2)
	t2, ok := grid.Get("T2")
	require.True(t, ok)
	require.Len(t, t2.Times, 1)
}

func TestTileSplitterSubGrid(t *testing.T) {
	service := fakeTileService{descriptors: []TileDescriptor{
		tileDescriptor("T1", geo.NewBBox(0, 0, 2, 2, geo.WGS84), 1),
	}}
	collection := Collection{Name: "S2L1C", HasTiles: true}

	s, err := NewTileSplitter(rawShapes(square(0, 0, 2, 2)), geo.WGS84, service, TimeInterval{}, collection, SquareShape(2))
	require.NoError(t, err)

	bboxes, err := s.BBoxList()
	require.NoError(t, err)
	require.Len(t, bboxes, 4)
	for k, info := range s.InfoList() {
		tileInfo := info.(TileSplitInfo)
		require.Equal(t, "T1", tileInfo.Tile)
		require.Equal(t, k/2, tileInfo.IndexX)
		require.Equal(t, k%2, tileInfo.IndexY)
		require.True(t, tileInfo.Parent.Equals(geo.NewBBox(0, 0, 2, 2, geo.WGS84), 1e-9))
	}
}

func TestTileSplitterErrors(t *testing.T) {
	collection := Collection{Name: "S2L1C", HasTiles: true}
	shapes := rawShapes(square(0, 0, 2, 2))

	_, err := NewTileSplitter(shapes, geo.WGS84, nil, TimeInterval{}, collection, SquareShape(1))
	require.ErrorContains(t, err, "tile service is required")

	_, err = NewTileSplitter(shapes, geo.WGS84, fakeTileService{}, TimeInterval{},
		Collection{Name: "DEM"}, SquareShape(1))
	require.ErrorContains(t, err, "no tiling concept")

	_, err = NewTileSplitter(shapes, geo.WGS84, fakeTileService{err: fmt.Errorf("catalog down")},
		TimeInterval{}, collection, SquareShape(1))
	require.ErrorContains(t, err, "catalog down")

	_, err = NewTileSplitter(shapes, geo.WGS84, fakeTileService{}, TimeInterval{}, collection, SquareShape(0))
	require.ErrorContains(t, err, "tile_split_shape")
}
