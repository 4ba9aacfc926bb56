package flatten

import (
	"strconv"

	"github.com/twpayne/go-geom"
)

// Key aliases the API uses for coordinates and display names. First
// present and parseable wins.
var (
	latKeys  = []string{"trilat", "lat", "latitude"}
	lonKeys  = []string{"trilong", "lon", "longitude"}
	nameKeys = []string{"ssid", "name", "netid", "id"}
)

// GeoPoint is one coordinate-bearing point derived from a flat row,
// carrying the full row as attribute payload.
type GeoPoint struct {
	// Point holds the coordinate in XY (lon, lat) order.
	Point *geom.Point

	// Name is the display name resolved from the row.
	Name string

	// Row is the source row; exporters render its cells as attributes.
	Row *Row
}

// Lat returns the point's latitude.
func (p *GeoPoint) Lat() float64 {
	return p.Point.Y()
}

// Lon returns the point's longitude.
func (p *GeoPoint) Lon() float64 {
	return p.Point.X()
}

// Points derives the geo export view from a flattened table. Rows without
// a resolvable coordinate pair contribute no point and are skipped
// without error.
func (e *Engine) Points(t *Table) []GeoPoint {
	var points []GeoPoint
	for _, row := range t.Rows {
		lat, lon, ok := resolveCoords(row)
		if !ok {
			continue
		}
		points = append(points, GeoPoint{
			Point: geom.NewPointFlat(geom.XY, []float64{lon, lat}),
			Name:  resolveName(row),
			Row:   row,
		})
	}
	return points
}

// resolveCoords extracts a (lat, lon) pair from a row, trying each known
// alias. Both halves must be present and numeric.
func resolveCoords(row *Row) (lat, lon float64, ok bool) {
	lat, ok = firstFloat(row, latKeys)
	if !ok {
		return 0, 0, false
	}
	lon, ok = firstFloat(row, lonKeys)
	if !ok {
		return 0, 0, false
	}
	return lat, lon, true
}

func firstFloat(row *Row, keys []string) (float64, bool) {
	for _, k := range keys {
		v := row.Get(k)
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func resolveName(row *Row) string {
	for _, k := range nameKeys {
		if v := row.Get(k); v != "" {
			return v
		}
	}
	return ""
}
