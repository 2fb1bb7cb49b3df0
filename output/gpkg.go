package output

import (
	"fmt"
	"sort"
	"strings"

	spgeom "github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/gpkg"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/geomhelp"
	"github.com/gridsplit/gridsplit/splitter"
)

// WriteGeopackage writes the split results as a polygon layer of a
// GeoPackage file, one row per bbox with its metadata as attribute columns.
// All bboxes of a splitter share a CRS, so the layer gets a single SRS.
func WriteGeopackage(file, table string, results splitter.AreaSplitter, opts ...splitter.BBoxListOption) error {
	bboxes, err := results.BBoxList(opts...)
	if err != nil {
		return err
	}
	infos := results.InfoList()
	if len(bboxes) == 0 {
		return fmt.Errorf("nothing to write, the split produced no bboxes")
	}

	handle, err := gpkg.Open(file)
	if err != nil {
		return fmt.Errorf("opening GeoPackage %s: %w", file, err)
	}
	defer handle.Close()

	srs, err := spatialReferenceSystem(bboxes[0].CRS)
	if err != nil {
		return err
	}
	if err := handle.UpdateSRS(srs); err != nil {
		return fmt.Errorf("registering SRS %d: %w", srs.ID, err)
	}

	columns := attributeColumns(infos[0])
	if err := buildTable(handle, table, columns, srs); err != nil {
		return err
	}
	return writeRows(handle, table, columns, srs, bboxes, infos)
}

// attributeColumns derives the layer's attribute columns from one metadata
// record. All records of a splitter share a layout.
func attributeColumns(info splitter.Info) []string {
	properties := info.Properties()
	columns := make([]string, 0, len(properties))
	for name := range properties {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

func spatialReferenceSystem(crs geo.CRS) (gpkg.SpatialReferenceSystem, error) {
	code, err := crs.EPSG()
	if err != nil {
		return gpkg.SpatialReferenceSystem{}, err
	}
	definition, err := crs.Proj4()
	if err != nil {
		return gpkg.SpatialReferenceSystem{}, err
	}
	return gpkg.SpatialReferenceSystem{
		Name:                   crs.String(),
		ID:                     code,
		Organization:           "EPSG",
		OrganizationCoordsysID: code,
		Definition:             definition,
	}, nil
}

func buildTable(handle *gpkg.Handle, table string, columns []string, srs gpkg.SpatialReferenceSystem) error {
	parts := []string{`fid INTEGER NOT NULL PRIMARY KEY`}
	for _, name := range columns {
		parts = append(parts, fmt.Sprintf(`"%v" %v`, name, columnType(name)))
	}
	parts = append(parts, `geom POLYGON`)
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%v"(%v);`, table, strings.Join(parts, `, `))
	if _, err := handle.Exec(query); err != nil {
		return fmt.Errorf("building table %q: %w", table, err)
	}

	err := handle.AddGeometryTable(gpkg.TableDescription{
		Name:          table,
		ShortName:     table,
		Description:   table,
		GeometryField: "geom",
		GeometryType:  gpkg.MultiPolygon,
		SRS:           int32(srs.ID),
		Z:             gpkg.Prohibited,
		M:             gpkg.Prohibited,
	})
	if err != nil {
		return fmt.Errorf("adding geometry table %q: %w", table, err)
	}
	return nil
}

// columnType picks the sqlite type by column name. Index-like columns are
// the only integer attributes the metadata records produce.
func columnType(name string) string {
	switch name {
	case "index", "index_x", "index_y", "zoom_level", "grid_index":
		return "INTEGER"
	}
	return "TEXT"
}

func writeRows(handle *gpkg.Handle, table string, columns []string,
	srs gpkg.SpatialReferenceSystem, bboxes []geo.BBox, infos []splitter.Info) error {
	tx, err := handle.Begin()
	if err != nil {
		return fmt.Errorf("starting a transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertSQL(table, columns))
	if err != nil {
		return fmt.Errorf("preparing the insert statement: %w", err)
	}
	defer stmt.Close()

	var extent *spgeom.Extent
	for i, bbox := range bboxes {
		geometry := geomhelp.PolygonalToSpatial(bbox.Polygon())
		binary, err := gpkg.NewBinary(int32(srs.ID), geometry)
		if err != nil {
			return fmt.Errorf("encoding geometry of row %d: %w", i, err)
		}

		properties := infos[i].Properties()
		row := make([]interface{}, 0, len(columns)+1)
		for _, name := range columns {
			row = append(row, columnValue(properties[name]))
		}
		row = append(row, binary)
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}

		if extent == nil {
			extent, err = spgeom.NewExtentFromGeometry(geometry)
			if err != nil {
				return fmt.Errorf("creating the layer extent: %w", err)
			}
		} else if err := extent.AddGeometry(geometry); err != nil {
			return fmt.Errorf("extending the layer extent: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing the transaction: %w", err)
	}
	if err := handle.UpdateGeometryExtent(table, extent); err != nil {
		return fmt.Errorf("updating the layer extent: %w", err)
	}
	return nil
}

func insertSQL(table string, columns []string) string {
	names := make([]string, 0, len(columns)+1)
	binds := make([]string, 0, len(columns)+1)
	for _, name := range columns {
		names = append(names, fmt.Sprintf(`"%v"`, name))
		binds = append(binds, `?`)
	}
	names = append(names, `geom`)
	binds = append(binds, `?`)
	return `INSERT INTO "` + table + `"(` + strings.Join(names, `,`) + `) VALUES(` + strings.Join(binds, `,`) + `)`
}

// columnValue coerces a metadata value to something sqlite accepts directly.
func columnValue(value any) interface{} {
	switch v := value.(type) {
	case nil, string, int, int64, float64, bool:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
