package splitter

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/perimeterx/marshmallow"

	"github.com/gridsplit/gridsplit/geo"
	"github.com/gridsplit/gridsplit/geomhelp"
)

// BatchRequest is an already-processed batch tiling request: the area it was
// made for plus the tiling grid it was run against.
type BatchRequest struct {
	ID         string
	Geometry   geo.Geometry
	TilingGrid map[string]any
}

// BatchClient fetches batch requests and their result tiles from a batch
// processing service. Tiles are raw JSON objects whose layout is owned by
// the service; only the geometry and crs members are interpreted here.
type BatchClient interface {
	Request(id string) (*BatchRequest, error)
	Tiles(request *BatchRequest) ([]json.RawMessage, error)
}

// BatchSplitter reconstructs the grid a batch processing request was
// actually computed on. The bboxes come from the service verbatim, so no
// intersection filtering is applied.
type BatchSplitter struct {
	base
	request *BatchRequest
}

// NewBatchSplitter splits along the result tiles of an existing batch request.
func NewBatchSplitter(client BatchClient, request *BatchRequest, opts ...Option) (*BatchSplitter, error) {
	if client == nil {
		return nil, fmt.Errorf("a batch client is required")
	}
	if request == nil {
		return nil, fmt.Errorf("a batch request is required")
	}
	if request.Geometry.IsEmpty() {
		return nil, fmt.Errorf("batch request %q has no geometry", request.ID)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b, err := newBase([]geo.Shape{request.Geometry}, request.Geometry.CRS(), o)
	if err != nil {
		return nil, err
	}
	s := &BatchSplitter{base: b, request: request}
	if err := s.split(client); err != nil {
		return nil, err
	}
	return s, nil
}

// NewBatchSplitterByID fetches the batch request first, then splits along its
// result tiles.
func NewBatchSplitterByID(client BatchClient, requestID string, opts ...Option) (*BatchSplitter, error) {
	if client == nil {
		return nil, fmt.Errorf("a batch client is required")
	}
	request, err := client.Request(requestID)
	if err != nil {
		return nil, fmt.Errorf("fetching batch request %q: %w", requestID, err)
	}
	return NewBatchSplitter(client, request, opts...)
}

// Request returns the batch request the splitter was built from.
func (s *BatchSplitter) Request() *BatchRequest {
	return s.request
}

// batchTile is the interpreted part of a result tile. Everything else is
// passed through untouched.
type batchTile struct {
	Geometry map[string]any `json:"geometry"`
	CRS      string         `json:"crs"`
}

func (s *BatchSplitter) split(client BatchClient) error {
	rawTiles, err := client.Tiles(s.request)
	if err != nil {
		return fmt.Errorf("fetching tiles of batch request %q: %w", s.request.ID, err)
	}

	for k, rawTile := range rawTiles {
		var tile batchTile
		extra, err := marshmallow.Unmarshal(rawTile, &tile, marshmallow.WithExcludeKnownFieldsFromMap(true))
		if err != nil {
			return fmt.Errorf("parsing tile %d of batch request %q: %w", k, s.request.ID, err)
		}
		if len(tile.Geometry) == 0 {
			return fmt.Errorf("tile %d of batch request %q has no geometry", k, s.request.ID)
		}
		crs, err := geo.ParseCRS(tile.CRS)
		if err != nil {
			return fmt.Errorf("tile %d of batch request %q: %w", k, s.request.ID, err)
		}

		geometryJSON, err := json.Marshal(tile.Geometry)
		if err != nil {
			return fmt.Errorf("tile %d of batch request %q: %w", k, s.request.ID, err)
		}
		orbGeometry, err := geojson.UnmarshalGeometry(geometryJSON)
		if err != nil {
			return fmt.Errorf("decoding geometry of tile %d of batch request %q: %w", k, s.request.ID, err)
		}
		polygonal, err := geomhelp.OrbToPolygonal(orbGeometry.Geometry())
		if err != nil {
			return fmt.Errorf("tile %d of batch request %q: %w", k, s.request.ID, err)
		}
		geometry, err := geo.NewGeometry(polygonal, crs)
		if err != nil {
			return err
		}
		s.emit(geometry.BBox(), BatchSplitInfo{Extra: extra, TilingGrid: s.request.TilingGrid})
	}
	return nil
}
