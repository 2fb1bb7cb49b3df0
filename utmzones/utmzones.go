// Package utmzones provides the UTM/MGRS zone grid used by the UTM splitters:
// either the embedded MGRS grid dataset or coarse synthesized zone bands.
package utmzones

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb/geojson"
	"github.com/perimeterx/marshmallow"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/geomhelp"
)

//go:embed zones.geojson
var embeddedGridJSON []byte

// Zone is one cell of a UTM grid: a polygon in WGS84 with the zone number,
// the MGRS latitude row (empty for synthesized bands) and the hemisphere.
// Zone number 0 marks the polar placeholder cells that no UTM CRS covers.
type Zone struct {
	Polygonal  geom.Polygonal
	Zone       int
	Row        string
	Hemisphere geo.Hemisphere
}

// CRS returns the UTM CRS the zone projects into.
func (z Zone) CRS() geo.CRS {
	return geo.UTM(z.Zone, z.Hemisphere)
}

var loadEmbeddedGrid = sync.OnceValues(func() ([]Zone, error) {
	collection, err := geojson.UnmarshalFeatureCollection(embeddedGridJSON)
	if err != nil {
		return nil, fmt.Errorf("decoding embedded UTM grid: %w", err)
	}

	zones := make([]Zone, 0, len(collection.Features))
	for i, feature := range collection.Features {
		var props struct {
			Zone float64 `json:"ZONE"`
			Row  string  `json:"ROW_"`
		}
		if _, err := marshmallow.UnmarshalFromJSONMap(feature.Properties, &props); err != nil {
			return nil, fmt.Errorf("UTM grid feature %d properties: %w", i, err)
		}
		polygonal, err := geomhelp.OrbToPolygonal(feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("UTM grid feature %d: %w", i, err)
		}
		hemisphere := geo.South
		if props.Row >= "N" {
			hemisphere = geo.North
		}
		zones = append(zones, Zone{
			Polygonal:  polygonal,
			Zone:       int(props.Zone),
			Row:        props.Row,
			Hemisphere: hemisphere,
		})
	}
	return zones, nil
})

// Grid returns the embedded MGRS grid, loaded once per process. The returned
// slice is shared; callers must not modify it.
func Grid() ([]Zone, error) {
	return loadEmbeddedGrid()
}

// Latitude extent of the synthesized zone bands. UTM is not defined beyond it.
const (
	bandLatMin = -80
	bandLatMax = 84
	bandWidth  = 6
)

// Bands synthesizes the 60 x 2 coarse UTM zone polygons without external
// data. Each band covers six degrees of longitude on one hemisphere, sampled
// at one point per integer degree along all four sides. The sampling is
// deliberately coarse; it matches the resolution of the MGRS grid dataset.
func Bands() []Zone {
	zones := make([]Zone, 0, 120)
	for _, hemisphere := range []geo.Hemisphere{geo.North, geo.South} {
		latMin, latMax := 0, bandLatMax
		if hemisphere == geo.South {
			latMin, latMax = bandLatMin, 0
		}
		for zone := 1; zone <= 60; zone++ {
			lngMin := -180 + bandWidth*(zone-1)
			lngMax := lngMin + bandWidth

			var ring []geom.Point
			for lat := latMin; lat < latMax; lat++ {
				ring = append(ring, geom.Point{X: float64(lngMin), Y: float64(lat)})
			}
			for lng := lngMin; lng < lngMax; lng++ {
				ring = append(ring, geom.Point{X: float64(lng), Y: float64(latMax)})
			}
			for lat := latMax; lat > latMin; lat-- {
				ring = append(ring, geom.Point{X: float64(lngMax), Y: float64(lat)})
			}
			for lng := lngMax; lng > lngMin; lng-- {
				ring = append(ring, geom.Point{X: float64(lng), Y: float64(latMin)})
			}

			zones = append(zones, Zone{
				Polygonal:  geom.Polygon{ring},
				Zone:       zone,
				Hemisphere: hemisphere,
			})
		}
	}
	return zones
}
