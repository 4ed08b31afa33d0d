package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiles(t *testing.T) {
	washington := Point{Lat: 38.9109, Lon: -77.0163}
	newYork := Point{Lat: 40.7484, Lon: -73.9967}
	austin := Point{Lat: 30.2713, Lon: -97.7426}

	tests := []struct {
		name  string
		a, b  Point
		want  float64
		delta float64
	}{
		{"same point", washington, washington, 0, 0},
		{"washington to new york", washington, newYork, 204, 5},
		{"washington to austin", washington, austin, 1313, 20},
		{"one degree of latitude at the equator", Point{0, 0}, Point{1, 0}, 68.7, 0.2},
		{"along the equator", Point{0, 0}, Point{0, 1}, 69.17, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Miles(tt.a, tt.b), tt.delta)
		})
	}
}

func TestMiles_Symmetric(t *testing.T) {
	a := Point{Lat: 47.6, Lon: -122.3}
	b := Point{Lat: 25.8, Lon: -80.2}
	assert.InDelta(t, Miles(a, b), Miles(b, a), 1e-6)
}

func TestLoadZipFile(t *testing.T) {
	table, err := LoadZipFile("testdata/zips.tsv")
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	p, ok := table.Lookup("20001")
	require.True(t, ok)
	assert.InDelta(t, 38.9109, p.Lat, 1e-9)
	assert.InDelta(t, -77.0163, p.Lon, 1e-9)

	_, ok = table.Lookup("78701-1234")
	assert.True(t, ok)

	_, ok = table.Lookup("99999")
	assert.False(t, ok, "rows without coordinates are skipped")
}

func TestLoadZipTable_FirstRowWins(t *testing.T) {
	data := "US\t02134\tAllston\tMA\tMA\t\t\t\t\t42.35\t-71.13\t4\n" +
		"US\t02134\tDuplicate\tMA\tMA\t\t\t\t\t0\t0\t1\n"
	table, err := LoadZipTable(strings.NewReader(data))
	require.NoError(t, err)
	p, ok := table.Lookup("02134")
	require.True(t, ok)
	assert.InDelta(t, 42.35, p.Lat, 1e-9)
}

func TestZipTable_Nil(t *testing.T) {
	var table *ZipTable
	_, ok := table.Lookup("20001")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())

	table = NewZipTable(map[string]Point{" 20001 ": {Lat: 1, Lon: 2}})
	_, ok = table.Lookup("20001")
	assert.True(t, ok)
}
