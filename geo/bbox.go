package geo

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// BBox is an axis-aligned rectangle in a CRS. It is a value type and never
// mutated; all operations return a new BBox.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
	CRS                    CRS
}

// NewBBox returns the bbox with the given corners, swapping them if needed so
// that Min <= Max on both axes.
func NewBBox(minX, minY, maxX, maxY float64, crs CRS) BBox {
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return BBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, CRS: crs}
}

func (b BBox) Width() float64  { return b.MaxX - b.MinX }
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Middle returns the center point of the bbox.
func (b BBox) Middle() (x, y float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

func (b BBox) String() string {
	return fmt.Sprintf("%v,%v,%v,%v (%v)", b.MinX, b.MinY, b.MaxX, b.MaxY, b.CRS)
}

// Bounds returns the bbox as a ctessum bounds value, which is itself Polygonal.
func (b BBox) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.MinX, Y: b.MinY},
		Max: geom.Point{X: b.MaxX, Y: b.MaxY},
	}
}

// Polygon returns the bbox outline as a closed 5-point ring.
func (b BBox) Polygon() geom.Polygon {
	return geom.Polygon{{
		{X: b.MinX, Y: b.MinY},
		{X: b.MinX, Y: b.MaxY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MinX, Y: b.MinY},
	}}
}

// densePolygon returns the bbox outline with intermediate points on each side.
// Reprojection bends bbox edges, so a reprojected bbox must be derived from a
// densified outline, not just the corners.
func (b BBox) densePolygon() geom.Polygon {
	dx, dy := b.Width()/4, b.Height()/4
	ring := make([]geom.Point, 0, 17)
	for i := 0; i < 4; i++ {
		ring = append(ring, geom.Point{X: b.MinX + float64(i)*dx, Y: b.MinY})
	}
	for i := 0; i < 4; i++ {
		ring = append(ring, geom.Point{X: b.MaxX, Y: b.MinY + float64(i)*dy})
	}
	for i := 0; i < 4; i++ {
		ring = append(ring, geom.Point{X: b.MaxX - float64(i)*dx, Y: b.MaxY})
	}
	for i := 0; i < 4; i++ {
		ring = append(ring, geom.Point{X: b.MinX, Y: b.MaxY - float64(i)*dy})
	}
	ring = append(ring, geom.Point{X: b.MinX, Y: b.MinY})
	return geom.Polygon{ring}
}

// Geometry returns the bbox as a polygon Geometry in the bbox's CRS.
func (b BBox) Geometry() Geometry {
	return Geometry{polygonal: b.Polygon(), crs: b.CRS}
}

// Reproject returns the minimal bbox enclosing this bbox reprojected to the
// given CRS. The result is generally larger than a corner-by-corner transform
// because bbox edges bend under reprojection.
func (b BBox) Reproject(crs CRS) (BBox, error) {
	if crs == b.CRS {
		return b, nil
	}
	gg, err := Transform(b.densePolygon(), b.CRS, crs)
	if err != nil {
		return BBox{}, err
	}
	bounds := gg.Bounds()
	return BBox{
		MinX: bounds.Min.X, MinY: bounds.Min.Y,
		MaxX: bounds.Max.X, MaxY: bounds.Max.Y,
		CRS: crs,
	}, nil
}

// Partition divides the bbox into numX columns and numY rows of equal size.
// The result is indexed [column][row]; edge cells end exactly on the parent's
// edges.
func (b BBox) Partition(numX, numY int) [][]BBox {
	sizeX, sizeY := b.Width()/float64(numX), b.Height()/float64(numY)
	return b.partition(numX, numY, sizeX, sizeY)
}

// PartitionBySize covers the bbox with cells of a fixed size. The number of
// cells is rounded up, so the last column and row may extend beyond the bbox.
func (b BBox) PartitionBySize(sizeX, sizeY float64) [][]BBox {
	numX := int(math.Ceil(b.Width() / sizeX))
	numY := int(math.Ceil(b.Height() / sizeY))
	return b.partition(numX, numY, sizeX, sizeY)
}

func (b BBox) partition(numX, numY int, sizeX, sizeY float64) [][]BBox {
	columns := make([][]BBox, numX)
	for i := 0; i < numX; i++ {
		column := make([]BBox, numY)
		for j := 0; j < numY; j++ {
			column[j] = BBox{
				MinX: b.MinX + float64(i)*sizeX,
				MinY: b.MinY + float64(j)*sizeY,
				MaxX: b.MinX + float64(i+1)*sizeX,
				MaxY: b.MinY + float64(j+1)*sizeY,
				CRS:  b.CRS,
			}
		}
		columns[i] = column
	}
	return columns
}

// Buffer scales the bbox outward (or inward, for a negative fraction) around
// its middle, by a fraction of its width and height. Buffering neighbouring
// grid cells makes them overlap. The fractions must be >= -1.
func (b BBox) Buffer(bufferX, bufferY float64) (BBox, error) {
	if bufferX < -1 || bufferY < -1 {
		return BBox{}, fmt.Errorf("cannot reduce the bounding box to nothing, buffer must be >= -1.0")
	}
	ratioX, ratioY := 1+bufferX, 1+bufferY
	midX, midY := b.Middle()
	return BBox{
		MinX: midX - (midX-b.MinX)*ratioX,
		MinY: midY - (midY-b.MinY)*ratioY,
		MaxX: midX + (b.MaxX-midX)*ratioX,
		MaxY: midY + (b.MaxY-midY)*ratioY,
		CRS:  b.CRS,
	}, nil
}

// Equals reports whether the bboxes share a CRS and their corners are equal
// within the given tolerance.
func (b BBox) Equals(other BBox, tolerance float64) bool {
	return b.CRS == other.CRS &&
		math.Abs(b.MinX-other.MinX) <= tolerance &&
		math.Abs(b.MinY-other.MinY) <= tolerance &&
		math.Abs(b.MaxX-other.MaxX) <= tolerance &&
		math.Abs(b.MaxY-other.MaxY) <= tolerance
}

// Contains reports whether the other bbox lies entirely inside b, within the
// given tolerance. Both must be in the same CRS.
func (b BBox) Contains(other BBox, tolerance float64) bool {
	return b.CRS == other.CRS &&
		other.MinX >= b.MinX-tolerance &&
		other.MinY >= b.MinY-tolerance &&
		other.MaxX <= b.MaxX+tolerance &&
		other.MaxY <= b.MaxY+tolerance
}
