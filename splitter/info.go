package splitter

import (
	"github.com/gridsplit/gridsplit/geo"
)

// Info is the metadata record attached to one split bbox. The set of
// implementations is closed; switch on the concrete type to get at
// strategy-specific fields, or use Properties for a generic view.
type Info interface {
	// Properties renders the record as flat key/value pairs, e.g. for GeoJSON
	// feature properties.
	Properties() map[string]any

	splitInfo()
}

// Indexed is implemented by the info variants that carry a grid position.
type Indexed interface {
	Info
	// Indexes returns the (column, row) position of the bbox in its grid.
	Indexes() (x, y int)
}

// BBoxSplitInfo describes a cell of a plain n x m split of a parent bbox.
type BBoxSplitInfo struct {
	Parent geo.BBox
	IndexX int
	IndexY int
}

func (i BBoxSplitInfo) splitInfo()           {}
func (i BBoxSplitInfo) Indexes() (int, int)  { return i.IndexX, i.IndexY }
func (i BBoxSplitInfo) Properties() map[string]any {
	return map[string]any{
		"parent_bbox": i.Parent.String(),
		"index_x":     i.IndexX,
		"index_y":     i.IndexY,
	}
}

// OsmSplitInfo describes a slippy-map tile: zoom level plus the standard
// north-origin column/row address.
type OsmSplitInfo struct {
	ZoomLevel int
	IndexX    int
	IndexY    int
}

func (i OsmSplitInfo) splitInfo()          {}
func (i OsmSplitInfo) Indexes() (int, int) { return i.IndexX, i.IndexY }
func (i OsmSplitInfo) Properties() map[string]any {
	return map[string]any{
		"zoom_level": i.ZoomLevel,
		"index_x":    i.IndexX,
		"index_y":    i.IndexY,
	}
}

// UtmSplitInfo describes a cell of an absolute UTM lattice. Index is a
// running counter over all emitted cells, across zones.
type UtmSplitInfo struct {
	CRS        geo.CRS
	UtmZone    string // 2-digit zone number
	UtmRow     string // MGRS latitude row, empty for synthesized zone bands
	Hemisphere geo.Hemisphere
	Index      int
	IndexX     int
	IndexY     int
}

func (i UtmSplitInfo) splitInfo()          {}
func (i UtmSplitInfo) Indexes() (int, int) { return i.IndexX, i.IndexY }
func (i UtmSplitInfo) Properties() map[string]any {
	return map[string]any{
		"crs":       i.CRS.String(),
		"utm_zone":  i.UtmZone,
		"utm_row":   i.UtmRow,
		"direction": string(i.Hemisphere),
		"index":     i.Index,
		"index_x":   i.IndexX,
		"index_y":   i.IndexY,
	}
}

// TileSplitInfo describes a sub-cell of a satellite tile's bbox.
type TileSplitInfo struct {
	BBoxSplitInfo
	Tile string
}

func (i TileSplitInfo) Properties() map[string]any {
	properties := i.BBoxSplitInfo.Properties()
	properties["tile"] = i.Tile
	return properties
}

// GridSplitInfo describes a sub-cell of a caller-supplied grid cell.
type GridSplitInfo struct {
	BBoxSplitInfo
	GridIndex int
}

func (i GridSplitInfo) Properties() map[string]any {
	properties := i.BBoxSplitInfo.Properties()
	properties["grid_index"] = i.GridIndex
	return properties
}

// BatchSplitInfo carries the passthrough fields of a batch tile descriptor,
// minus its geometry, together with the tiling grid the request ran against.
type BatchSplitInfo struct {
	Extra      map[string]any
	TilingGrid map[string]any
}

func (i BatchSplitInfo) splitInfo() {}
func (i BatchSplitInfo) Properties() map[string]any {
	properties := make(map[string]any, len(i.Extra)+len(i.TilingGrid))
	for key, value := range i.Extra {
		properties[key] = value
	}
	for key, value := range i.TilingGrid {
		properties["tiling_grid_"+key] = value
	}
	return properties
}
