// Package output renders split results to interchange formats: a GeoJSON
// feature collection or a GeoPackage layer.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/geomhelp"
	"github.com/gridsplit/gridsplit/splitter"
)

// GeoJSONCollection renders one feature per split bbox, reprojected to
// WGS84 as GeoJSON prescribes. The bbox's own CRS is kept as a property.
func GeoJSONCollection(results splitter.AreaSplitter, opts ...splitter.BBoxListOption) (*geojson.FeatureCollection, error) {
	bboxes, err := results.BBoxList(opts...)
	if err != nil {
		return nil, err
	}
	infos := results.InfoList()

	collection := geojson.NewFeatureCollection()
	for i, bbox := range bboxes {
		wgs84BBox, err := bbox.Reproject(geo.WGS84)
		if err != nil {
			return nil, err
		}
		feature := geojson.NewFeature(geomhelp.PolygonalToOrb(wgs84BBox.Polygon()))
		feature.Properties = infos[i].Properties()
		feature.Properties["crs"] = bbox.CRS.String()
		feature.Properties["bbox"] = bbox.String()
		collection.Append(feature)
	}
	return collection, nil
}

// WriteGeoJSON writes the split results as a GeoJSON feature collection.
func WriteGeoJSON(w io.Writer, results splitter.AreaSplitter, opts ...splitter.BBoxListOption) error {
	collection, err := GeoJSONCollection(results, opts...)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling feature collection: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
