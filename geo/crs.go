// Package geo contains geometry primitives for area splitting: axis-aligned
// bounding boxes and (multi)polygons, each tied to a coordinate reference system.
package geo

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// CRS identifies a coordinate reference system by its EPSG code, e.g. "EPSG:4326".
type CRS string

const (
	// WGS84 is the geographic lat/lon CRS (EPSG:4326).
	WGS84 CRS = "EPSG:4326"
	// WebMercator is the spherical Mercator CRS used by slippy map tiling (EPSG:3857).
	WebMercator CRS = "EPSG:3857"
)

// webMercatorProj4 is the spatial reference definition for web mapping.
const webMercatorProj4 = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

// Hemisphere is the N/S half of the globe a UTM zone lies in.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
)

// UTM returns the CRS of the given UTM zone, EPSG:326xx on the northern
// hemisphere and EPSG:327xx on the southern.
func UTM(zone int, hemisphere Hemisphere) CRS {
	hemisphereDigit := 6
	if hemisphere == South {
		hemisphereDigit = 7
	}
	return CRS(fmt.Sprintf("EPSG:32%d%02d", hemisphereDigit, zone))
}

func (c CRS) String() string {
	return string(c)
}

// ParseCRS normalizes a CRS reference to the "EPSG:code" form. It accepts
// bare codes ("32633"), authority-prefixed codes ("EPSG:32633", "epsg:32633")
// and OGC CRS URLs ("http://www.opengis.net/def/crs/EPSG/0/32633").
func ParseCRS(s string) (CRS, error) {
	candidate := s
	if strings.Contains(candidate, "/") {
		candidate = candidate[strings.LastIndex(candidate, "/")+1:]
	}
	candidate = strings.TrimPrefix(strings.TrimPrefix(candidate, "EPSG:"), "epsg:")
	code, err := strconv.Atoi(candidate)
	if err != nil {
		return "", fmt.Errorf("cannot parse CRS from %q: %w", s, err)
	}
	return CRS("EPSG:" + strconv.Itoa(code)), nil
}

// EPSG returns the numeric EPSG code, or an error if c is not an EPSG CRS.
func (c CRS) EPSG() (int, error) {
	s, found := strings.CutPrefix(string(c), "EPSG:")
	if !found {
		return 0, fmt.Errorf("CRS %q is not an EPSG code", c)
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("CRS %q is not an EPSG code: %w", c, err)
	}
	return code, nil
}

// IsUTM reports whether c is a WGS84-based UTM CRS and if so returns its zone
// and hemisphere.
func (c CRS) IsUTM() (zone int, hemisphere Hemisphere, ok bool) {
	code, err := c.EPSG()
	if err != nil {
		return 0, "", false
	}
	switch {
	case code > 32600 && code <= 32660:
		return code - 32600, North, true
	case code > 32700 && code <= 32760:
		return code - 32700, South, true
	}
	return 0, "", false
}

// Proj4 maps the CRS to a proj4 definition string.
func (c CRS) Proj4() (string, error) {
	return c.proj4()
}

func (c CRS) proj4() (string, error) {
	switch c {
	case WGS84:
		return "+proj=longlat +datum=WGS84 +no_defs", nil
	case WebMercator:
		return webMercatorProj4, nil
	}
	if zone, hemisphere, ok := c.IsUTM(); ok {
		south := ""
		if hemisphere == South {
			south = " +south"
		}
		return fmt.Sprintf("+proj=utm +zone=%d%s +datum=WGS84 +units=m +no_defs", zone, south), nil
	}
	return "", fmt.Errorf("unsupported CRS %q", c)
}

// Transformers are built once per (source, target) pair and shared process-wide.
var (
	transformersMu sync.Mutex
	transformers   = make(map[[2]CRS]proj.Transformer)
)

func transformer(from, to CRS) (proj.Transformer, error) {
	transformersMu.Lock()
	defer transformersMu.Unlock()

	key := [2]CRS{from, to}
	if t, ok := transformers[key]; ok {
		return t, nil
	}

	fromProj4, err := from.proj4()
	if err != nil {
		return nil, err
	}
	toProj4, err := to.proj4()
	if err != nil {
		return nil, err
	}
	fromSR, err := proj.Parse(fromProj4)
	if err != nil {
		return nil, fmt.Errorf("parsing CRS %q: %w", from, err)
	}
	toSR, err := proj.Parse(toProj4)
	if err != nil {
		return nil, fmt.Errorf("parsing CRS %q: %w", to, err)
	}
	t, err := fromSR.NewTransform(toSR)
	if err != nil {
		return nil, fmt.Errorf("creating transform %v -> %v: %w", from, to, err)
	}
	transformers[key] = t
	return t, nil
}

// Transform reprojects g from one CRS to another.
func Transform(g geom.Geom, from, to CRS) (geom.Geom, error) {
	if from == to {
		return g, nil
	}
	t, err := transformer(from, to)
	if err != nil {
		return nil, err
	}
	gg, err := g.Transform(t)
	if err != nil {
		return nil, fmt.Errorf("reprojecting %v -> %v: %w", from, to, err)
	}
	return gg, nil
}

// TransformPoint reprojects a single coordinate pair.
func TransformPoint(x, y float64, from, to CRS) (float64, float64, error) {
	gg, err := Transform(geom.Point{X: x, Y: y}, from, to)
	if err != nil {
		return 0, 0, err
	}
	pt, ok := gg.(geom.Point)
	if !ok {
		return 0, 0, fmt.Errorf("reprojected point is a %T", gg)
	}
	return pt.X, pt.Y, nil
}
