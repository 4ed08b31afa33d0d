package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// GeoNames postal code dump columns.
const (
	colPostalCode = 1
	colLatitude   = 9
	colLongitude  = 10
	minColumns    = 11
)

// ZipTable maps postal codes to centroid coordinates. It is read-only after loading.
type ZipTable struct {
	points map[string]Point
}

// NewZipTable builds a table from an in-memory map.
func NewZipTable(points map[string]Point) *ZipTable {
	cp := make(map[string]Point, len(points))
	for k, v := range points {
		cp[normalizeZip(k)] = v
	}
	return &ZipTable{points: cp}
}

// LoadZipTable reads a tab-separated GeoNames postal code file (country, postal code, place,
// ..., latitude, longitude, accuracy). Rows with unparseable coordinates are skipped.
func LoadZipTable(r io.Reader) (*ZipTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	table := &ZipTable{points: make(map[string]Point)}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read postal codes at line %d: %w", line, err)
		}
		if len(record) < minColumns {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[colLatitude]), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[colLongitude]), 64)
		if err != nil {
			continue
		}
		zip := normalizeZip(record[colPostalCode])
		if _, seen := table.points[zip]; !seen {
			table.points[zip] = Point{Lat: lat, Lon: lon}
		}
	}
	return table, nil
}

// LoadZipFile opens path and loads it with LoadZipTable.
func LoadZipFile(path string) (*ZipTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open postal code file: %w", err)
	}
	defer f.Close()
	return LoadZipTable(f)
}

// Lookup returns the centroid for zip. ZIP+4 codes are reduced to their five-digit prefix.
func (t *ZipTable) Lookup(zip string) (Point, bool) {
	if t == nil {
		return Point{}, false
	}
	p, ok := t.points[normalizeZip(zip)]
	return p, ok
}

// Len returns the number of postal codes in the table.
func (t *ZipTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

func normalizeZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if i := strings.IndexByte(zip, '-'); i > 0 {
		zip = zip[:i]
	}
	return zip
}
