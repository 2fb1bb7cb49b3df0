package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/carlmjohnson/versioninfo"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
	"github.com/paulmach/orb/geojson"
	"github.com/urfave/cli/v2"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/geomhelp"
	"github.com/gridsplit/gridsplit/output"
	"github.com/gridsplit/gridsplit/splitter"
)

const AOI string = `aoi`
const CRS string = `crs`
const STRATEGY string = `strategy`
const SPLITSHAPE string = `splitShape`
const SPLITSIZE string = `splitSize`
const ZOOM string = `zoom`
const BBOXSIZE string = `bboxSize`
const OFFSET string = `offset`
const GRID string = `grid`
const BUFFER string = `buffer`
const REDUCE string = `reduce`
const OUTPUT string = `output`
const FORMAT string = `format`
const TABLE string = `table`

type config struct {
	AOI        string `validate:"required"`
	CRS        string `default:"EPSG:4326" validate:"required"`
	Strategy   string `default:"bbox" validate:"oneof=bbox osm utm-grid utm-zone custom"`
	SplitShape string `default:"1,1"`
	SplitSize  string
	Zoom       int    `validate:"gte=0"`
	BBoxSize   string `default:"100000,100000"`
	Offset     string `default:"0,0"`
	Grid       string
	Buffer     float64 `validate:"gte=-1"`
	Reduce     bool
	Output     string `default:"-"`
	Format     string `default:"geojson" validate:"oneof=geojson gpkg"`
	Table      string `default:"split"`
}

//nolint:funlen
func main() {
	app := cli.NewApp()
	app.Name = "gridsplit"
	app.Usage = "Splits an area of interest into a grid of bounding boxes"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     AOI,
			Aliases:  []string{"a"},
			Usage:    "Area of interest, a GeoJSON file with (multi)polygon features",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(AOI)},
		},
		&cli.StringFlag{
			Name:    CRS,
			Usage:   "CRS of the area of interest and of the split, e.g. EPSG:4326",
			EnvVars: []string{strcase.ToScreamingSnake(CRS)},
		},
		&cli.StringFlag{
			Name:    STRATEGY,
			Aliases: []string{"s"},
			Usage:   "Split strategy: bbox, osm, utm-grid, utm-zone or custom",
			EnvVars: []string{strcase.ToScreamingSnake(STRATEGY)},
		},
		&cli.StringFlag{
			Name:    SPLITSHAPE,
			Usage:   "Columns,rows of the grid for the bbox and custom strategies. E.g.: 5,3",
			EnvVars: []string{strcase.ToScreamingSnake(SPLITSHAPE)},
		},
		&cli.StringFlag{
			Name:    SPLITSIZE,
			Usage:   "Cell size for the bbox strategy, in CRS units, overrides " + SPLITSHAPE + ". E.g.: 0.5,0.5",
			EnvVars: []string{strcase.ToScreamingSnake(SPLITSIZE)},
		},
		&cli.IntFlag{
			Name:    ZOOM,
			Aliases: []string{"z"},
			Usage:   "Zoom level for the osm strategy",
			EnvVars: []string{strcase.ToScreamingSnake(ZOOM)},
		},
		&cli.StringFlag{
			Name:    BBOXSIZE,
			Usage:   "Tile size in meters for the utm strategies. E.g.: 100000,100000",
			EnvVars: []string{strcase.ToScreamingSnake(BBOXSIZE)},
		},
		&cli.StringFlag{
			Name:    OFFSET,
			Usage:   "Lattice offset in meters for the utm strategies. E.g.: 50000,50000",
			EnvVars: []string{strcase.ToScreamingSnake(OFFSET)},
		},
		&cli.StringFlag{
			Name:    GRID,
			Aliases: []string{"g"},
			Usage:   "Grid file for the custom strategy, a JSON array of [minx,miny,maxx,maxy] bboxes in the split CRS",
			EnvVars: []string{strcase.ToScreamingSnake(GRID)},
		},
		&cli.Float64Flag{
			Name:    BUFFER,
			Aliases: []string{"b"},
			Usage:   "Grow every bbox by this fraction of its size, e.g. 0.1 for 10% overlap",
			EnvVars: []string{strcase.ToScreamingSnake(BUFFER)},
		},
		&cli.BoolFlag{
			Name:    REDUCE,
			Aliases: []string{"r"},
			Usage:   "Tighten every bbox to the area of interest",
			EnvVars: []string{strcase.ToScreamingSnake(REDUCE)},
		},
		&cli.StringFlag{
			Name:    OUTPUT,
			Aliases: []string{"o"},
			Usage:   "Output file, or - for GeoJSON on stdout",
			EnvVars: []string{strcase.ToScreamingSnake(OUTPUT)},
		},
		&cli.StringFlag{
			Name:    FORMAT,
			Aliases: []string{"f"},
			Usage:   "Output format: geojson or gpkg",
			EnvVars: []string{strcase.ToScreamingSnake(FORMAT)},
		},
		&cli.StringFlag{
			Name:    TABLE,
			Aliases: []string{"t"},
			Usage:   "Layer name in a gpkg output file",
			EnvVars: []string{strcase.ToScreamingSnake(TABLE)},
		},
	}

	app.Action = func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		crs := geo.CRS(cfg.CRS)
		shapes, err := readShapes(cfg.AOI, crs)
		if err != nil {
			return err
		}

		results, err := split(cfg, crs, shapes)
		if err != nil {
			return err
		}
		log.Printf("split %s into %d bboxes", cfg.AOI, len(results.InfoList()))
		log.Printf("area of interest: %s", geomhelp.WktMustEncode(results.AreaShape().Polygonal(), 120))

		return write(cfg, results)
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (config, error) {
	cfg := config{
		AOI:        c.String(AOI),
		CRS:        c.String(CRS),
		Strategy:   c.String(STRATEGY),
		SplitShape: c.String(SPLITSHAPE),
		SplitSize:  c.String(SPLITSIZE),
		Zoom:       c.Int(ZOOM),
		BBoxSize:   c.String(BBOXSIZE),
		Offset:     c.String(OFFSET),
		Grid:       c.String(GRID),
		Buffer:     c.Float64(BUFFER),
		Reduce:     c.Bool(REDUCE),
		Output:     c.String(OUTPUT),
		Format:     c.String(FORMAT),
		Table:      c.String(TABLE),
	}
	if err := defaults.Set(&cfg); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return cfg, err
	}
	if _, err := geo.CRS(cfg.CRS).Proj4(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func split(cfg config, crs geo.CRS, shapes []geo.Shape) (splitter.AreaSplitter, error) {
	opts := []splitter.Option{splitter.WithReduceBBoxSizes(cfg.Reduce)}

	switch cfg.Strategy {
	case "bbox":
		if cfg.SplitSize != "" {
			size, err := parseFloatPair(cfg.SplitSize, SPLITSIZE)
			if err != nil {
				return nil, err
			}
			return splitter.NewBBoxSplitterBySize(shapes, crs, size, opts...)
		}
		shape, err := parseIntPair(cfg.SplitShape, SPLITSHAPE)
		if err != nil {
			return nil, err
		}
		return splitter.NewBBoxSplitter(shapes, crs, shape, opts...)
	case "osm":
		return splitter.NewOsmSplitter(shapes, crs, cfg.Zoom, opts...)
	case "utm-grid", "utm-zone":
		size, err := parseFloatPair(cfg.BBoxSize, BBOXSIZE)
		if err != nil {
			return nil, err
		}
		offset, err := parseFloatPair(cfg.Offset, OFFSET)
		if err != nil {
			return nil, err
		}
		opts = append(opts, splitter.WithOffset(offset.X(), offset.Y()))
		if cfg.Strategy == "utm-grid" {
			return splitter.NewUtmGridSplitter(shapes, crs, size, opts...)
		}
		return splitter.NewUtmZoneSplitter(shapes, crs, size, opts...)
	case "custom":
		grid, err := readGrid(cfg.Grid, crs)
		if err != nil {
			return nil, err
		}
		shape, err := parseIntPair(cfg.SplitShape, SPLITSHAPE)
		if err != nil {
			return nil, err
		}
		return splitter.NewCustomGridSplitter(shapes, crs, grid, shape, opts...)
	}
	return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
}

func write(cfg config, results splitter.AreaSplitter) error {
	var listOpts []splitter.BBoxListOption
	if cfg.Buffer != 0 {
		listOpts = append(listOpts, splitter.WithBuffer(cfg.Buffer))
	}

	if cfg.Format == "gpkg" {
		if cfg.Output == "-" {
			return fmt.Errorf("gpkg output needs an output file")
		}
		return output.WriteGeopackage(cfg.Output, cfg.Table, results, listOpts...)
	}

	var w io.Writer = os.Stdout
	if cfg.Output != "-" {
		file, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return output.WriteGeoJSON(w, results, listOpts...)
}

// readShapes loads the polygonal features of a GeoJSON file as split input,
// interpreted in the given CRS.
func readShapes(file string, crs geo.CRS) ([]geo.Shape, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading area of interest: %w", err)
	}

	var geometries []*geojson.Geometry
	if collection, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		for _, feature := range collection.Features {
			geometries = append(geometries, geojson.NewGeometry(feature.Geometry))
		}
	} else if geometry, err := geojson.UnmarshalGeometry(data); err == nil {
		geometries = append(geometries, geometry)
	} else {
		return nil, fmt.Errorf("%s is neither a GeoJSON feature collection nor a geometry", file)
	}

	var shapes []geo.Shape
	for _, geometry := range geometries {
		polygonal, err := geomhelp.OrbToPolygonal(geometry.Geometry())
		if err != nil {
			return nil, fmt.Errorf("reading area of interest: %w", err)
		}
		shape, err := geo.NewGeometry(polygonal, crs)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, shape)
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("%s contains no polygonal features", file)
	}
	return shapes, nil
}

func readGrid(file string, crs geo.CRS) ([]geo.BBox, error) {
	if file == "" {
		return nil, fmt.Errorf("the custom strategy needs a grid file")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading grid: %w", err)
	}
	var raw [][4]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing grid: %w", err)
	}
	grid := make([]geo.BBox, len(raw))
	for i, b := range raw {
		grid[i] = geo.NewBBox(b[0], b[1], b[2], b[3], crs)
	}
	return grid, nil
}

func parseIntPair(s, name string) (splitter.SplitShape, error) {
	x, y, err := parsePair(s, name, strconv.Atoi)
	if err != nil {
		return splitter.SplitShape{}, err
	}
	return splitter.SplitShape{x, y}, nil
}

func parseFloatPair(s, name string) (splitter.Size, error) {
	x, y, err := parsePair(s, name, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
	if err != nil {
		return splitter.Size{}, err
	}
	return splitter.Size{x, y}, nil
}

// parsePair parses "x,y", or a single value meaning a square.
func parsePair[T any](s, name string, parse func(string) (T, error)) (T, T, error) {
	var zero T
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return zero, zero, fmt.Errorf("flag %s must be one value or two comma separated values, got %q", name, s)
	}
	x, err := parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return zero, zero, fmt.Errorf("flag %s: %w", name, err)
	}
	y := x
	if len(parts) == 2 {
		y, err = parse(strings.TrimSpace(parts[1]))
		if err != nil {
			return zero, zero, fmt.Errorf("flag %s: %w", name, err)
		}
	}
	return x, y, nil
}
