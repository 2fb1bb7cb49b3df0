package mathhelp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPow2(t *testing.T) {
	require.Equal(t, uint(1), Pow2(0))
	require.Equal(t, uint(2), Pow2(1))
	require.Equal(t, uint(1024), Pow2(10))
}

func TestFloorTo(t *testing.T) {
	tests := []struct {
		name            string
		v, size, offset float64
		want            float64
	}{
		{name: "on lattice", v: 200000, size: 100000, offset: 0, want: 200000},
		{name: "between", v: 250000, size: 100000, offset: 0, want: 200000},
		{name: "negative", v: -50000, size: 100000, offset: 0, want: -100000},
		{name: "with offset", v: 250000, size: 100000, offset: 30000, want: 230000},
		{name: "offset below", v: 120000, size: 100000, offset: 30000, want: 30000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FloorTo(tt.v, tt.size, tt.offset))
		})
	}
}

func TestPair(t *testing.T) {
	p := Pair[int]{3, 4}
	require.Equal(t, 3, p.X())
	require.Equal(t, 4, p.Y())
	require.Equal(t, Pair[float64]{2.5, 2.5}, Square(2.5))
}

func TestBetweenInc(t *testing.T) {
	require.True(t, BetweenInc(5, 1, 10))
	require.True(t, BetweenInc(5, 10, 1))
	require.True(t, BetweenInc(1, 1, 10))
	require.False(t, BetweenInc(11, 1, 10))
}
