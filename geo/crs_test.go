package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUTM(t *testing.T) {
	tests := []struct {
		zone       int
		hemisphere Hemisphere
		want       CRS
	}{
		{zone: 33, hemisphere: North, want: "EPSG:32633"},
		{zone: 33, hemisphere: South, want: "EPSG:32733"},
		{zone: 1, hemisphere: North, want: "EPSG:32601"},
		{zone: 60, hemisphere: South, want: "EPSG:32760"},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			require.Equal(t, tt.want, UTM(tt.zone, tt.hemisphere))

			zone, hemisphere, ok := tt.want.IsUTM()
			require.True(t, ok)
			require.Equal(t, tt.zone, zone)
			require.Equal(t, tt.hemisphere, hemisphere)
		})
	}
}

func TestIsUTMRejectsOtherCRS(t *testing.T) {
	for _, crs := range []CRS{WGS84, WebMercator, "EPSG:28992", "bogus"} {
		_, _, ok := crs.IsUTM()
		require.False(t, ok, "%s should not be UTM", crs)
	}
}

func TestEPSG(t *testing.T) {
	code, err := WGS84.EPSG()
	require.NoError(t, err)
	require.Equal(t, 4326, code)

	_, err = CRS("urn:whatever").EPSG()
	require.Error(t, err)
}

func TestParseCRS(t *testing.T) {
	tests := []struct {
		in      string
		want    CRS
		wantErr bool
	}{
		{in: "EPSG:32633", want: "EPSG:32633"},
		{in: "epsg:32633", want: "EPSG:32633"},
		{in: "32633", want: "EPSG:32633"},
		{in: "http://www.opengis.net/def/crs/EPSG/0/32633", want: "EPSG:32633"},
		{in: "bogus", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCRS(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTransformPoint(t *testing.T) {
	// the prime meridian stays put under the mercator projection
	x, y, err := TransformPoint(0, 0, WGS84, WebMercator)
	require.NoError(t, err)
	require.InDelta(t, 0, x, 1e-6)
	require.InDelta(t, 0, y, 1e-6)

	// the antimeridian maps to the web mercator world edge
	x, _, err = TransformPoint(180, 0, WGS84, WebMercator)
	require.NoError(t, err)
	require.InDelta(t, 20037508.34, x, 1)

	// and back
	lon, lat, err := TransformPoint(x, 0, WebMercator, WGS84)
	require.NoError(t, err)
	require.InDelta(t, 180, lon, 1e-6)
	require.InDelta(t, 0, lat, 1e-6)
}

func TestTransformPointUnsupportedCRS(t *testing.T) {
	_, _, err := TransformPoint(0, 0, "EPSG:99999", WGS84)
	require.ErrorContains(t, err, "unsupported CRS")
}
