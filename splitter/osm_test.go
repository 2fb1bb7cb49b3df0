package splitter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/mathhelp"
)

func TestOsmSplitterZoomZero(t *testing.T) {
	s, err := NewOsmSplitter(rawShapes(square(0, 0, 1e6, 1e6)), geo.WebMercator, 0)
	require.NoError(t, err)

	bboxes, err := s.BBoxList()
	require.NoError(t, err)
	require.Len(t, bboxes, 1)

	world, err := s.WorldBBox()
	require.NoError(t, err)
	require.True(t, bboxes[0].Equals(world, 1e-6))

	infos := s.InfoList()
	require.Equal(t, OsmSplitInfo{ZoomLevel: 0, IndexX: 0, IndexY: 0}, infos[0])
}

func TestOsmSplitterTileIndexes(t *testing.T) {
	tests := []struct {
		name                   string
		minX, minY, maxX, maxY float64
		wantX, wantY           int
	}{
		// at zoom 1 the world is 2 x 2 tiles, row 0 in the north
		{name: "north east", minX: 1e6, minY: 1e6, maxX: 2e6, maxY: 2e6, wantX: 1, wantY: 0},
		{name: "north west", minX: -2e6, minY: 1e6, maxX: -1e6, maxY: 2e6, wantX: 0, wantY: 0},
		{name: "south east", minX: 1e6, minY: -2e6, maxX: 2e6, maxY: -1e6, wantX: 1, wantY: 1},
		{name: "south west", minX: -2e6, minY: -2e6, maxX: -1e6, maxY: -1e6, wantX: 0, wantY: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewOsmSplitter(rawShapes(square(tt.minX, tt.minY, tt.maxX, tt.maxY)), geo.WebMercator, 1)
			require.NoError(t, err)

			infos := s.InfoList()
			require.Len(t, infos, 1)
			require.Equal(t, OsmSplitInfo{ZoomLevel: 1, IndexX: tt.wantX, IndexY: tt.wantY}, infos[0])
		})
	}
}

func TestOsmSplitterChildTilesCoverParent(t *testing.T) {
	area := rawShapes(square(5, 50, 6, 51))

	parent, err := NewOsmSplitter(area, geo.WGS84, 5)
	require.NoError(t, err)
	children, err := NewOsmSplitter(area, geo.WGS84, 6)
	require.NoError(t, err)

	parentBBoxes, err := parent.BBoxList()
	require.NoError(t, err)
	childBBoxes, err := children.BBoxList()
	require.NoError(t, err)
	require.NotEmpty(t, parentBBoxes)
	require.NotEmpty(t, childBBoxes)

	// every child tile lies inside some parent tile
	for _, child := range childBBoxes {
		var contained bool
		for _, p := range parentBBoxes {
			if p.Contains(child, 1e-6) {
				contained = true
				break
			}
		}
		require.True(t, contained, "tile %v has no parent", child)
	}

	// child tile addresses halve to their parent's address
	parentTiles := make(map[[2]int]bool)
	for _, info := range parent.InfoList() {
		osmInfo := info.(OsmSplitInfo)
		parentTiles[[2]int{osmInfo.IndexX, osmInfo.IndexY}] = true
	}
	for _, info := range children.InfoList() {
		osmInfo := info.(OsmSplitInfo)
		require.True(t, parentTiles[[2]int{osmInfo.IndexX / 2, osmInfo.IndexY / 2}],
			"tile (%d,%d) has no parent tile", osmInfo.IndexX, osmInfo.IndexY)
		require.Less(t, osmInfo.IndexX, int(mathhelp.Pow2(6)))
		require.Less(t, osmInfo.IndexY, int(mathhelp.Pow2(6)))
	}
}

func TestOsmSplitterKeepsSplitterCRS(t *testing.T) {
	s, err := NewOsmSplitter(rawShapes(square(5, 50, 6, 51)), geo.WGS84, 3)
	require.NoError(t, err)

	bboxes, err := s.BBoxList()
	require.NoError(t, err)
	for _, bbox := range bboxes {
		require.Equal(t, geo.WGS84, bbox.CRS)
	}
	require.Equal(t, geo.WGS84, s.AreaBBox().CRS)
}

func TestOsmSplitterRejectsPolarAreas(t *testing.T) {
	_, err := NewOsmSplitter(rawShapes(square(0, 86, 1, 89)), geo.WGS84, 3)
	require.ErrorContains(t, err, "latitude in the interval")

	_, err = NewOsmSplitter(rawShapes(square(0, 50, 1, 51)), geo.WGS84, -1)
	require.ErrorContains(t, err, "zoom_level")
}
