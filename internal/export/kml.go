package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/wigletool/wigle-export/internal/flatten"
)

// KML document structure for point placemarks with attribute payloads.
// WiGLE consumers (Google Earth and friends) read the ExtendedData block
// as the record's full field set.
type kmlDoc struct {
	XMLName    xml.Name       `xml:"kml"`
	Xmlns      string         `xml:"xmlns,attr"`
	Placemarks []kmlPlacemark `xml:"Document>Placemark"`
}

type kmlPlacemark struct {
	Name         string    `xml:"name"`
	ExtendedData []kmlData `xml:"ExtendedData>Data"`
	Coordinates  string    `xml:"Point>coordinates"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

const kmlNamespace = "http://www.opengis.net/kml/2.2"

// WriteKML writes one placemark per geo point to path. Each placemark
// carries the point's coordinate plus every cell of its source row, in
// column-union order, as an attribute block. Zero points writes nothing
// and returns ErrNoData; rows that resolved no coordinate were already
// excluded upstream and never cause failure here.
func WriteKML(path string, columns []string, points []flatten.GeoPoint) error {
	if len(points) == 0 {
		return ErrNoData
	}

	doc := kmlDoc{Xmlns: kmlNamespace}
	for _, p := range points {
		pm := kmlPlacemark{
			Name: p.Name,
			Coordinates: strconv.FormatFloat(p.Lon(), 'f', -1, 64) + "," +
				strconv.FormatFloat(p.Lat(), 'f', -1, 64) + ",0",
		}
		for _, col := range columns {
			if !p.Row.Has(col) {
				continue
			}
			pm.ExtendedData = append(pm.ExtendedData, kmlData{
				Name:  col,
				Value: p.Row.Get(col),
			})
		}
		doc.Placemarks = append(doc.Placemarks, pm)
	}

	err := writeAtomic(path, func(f *os.File) error {
		if _, err := f.WriteString(xml.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		enc := xml.NewEncoder(f)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode kml: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	wigleExportsTotal.WithLabelValues("kml").Inc()
	wigleExportRowsTotal.WithLabelValues("kml").Add(float64(len(points)))
	return nil
}
