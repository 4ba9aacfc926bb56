// Package wigle defines the WiGLE API surface used by the export pipeline:
// endpoint descriptors, the record/page data model, and response decoding.
//
// WiGLE records carry no fixed schema. Two records returned by the same
// search may have disjoint key sets, so a Record is an arbitrarily nested
// string-keyed mapping and all downstream processing is schema-free.
package wigle

import (
	"encoding/json"
	"fmt"
)

// DefaultBaseURL is the production WiGLE API host.
const DefaultBaseURL = "https://api.wigle.net"

// SearchKind selects one of the three paginated search endpoints.
type SearchKind string

const (
	// KindWifi searches Wi-Fi network observations.
	KindWifi SearchKind = "wifi"

	// KindBluetooth searches Bluetooth device observations.
	KindBluetooth SearchKind = "bt"

	// KindCell searches cell tower observations.
	KindCell SearchKind = "cell"
)

// SearchPath returns the API path for a search kind.
func (k SearchKind) SearchPath() (string, error) {
	switch k {
	case KindWifi:
		return "/api/v2/network/search", nil
	case KindBluetooth:
		return "/api/v2/bluetooth/search", nil
	case KindCell:
		return "/api/v2/cell/search", nil
	default:
		return "", fmt.Errorf("unknown search kind %q", string(k))
	}
}

// FilePrefix returns the output-file prefix used for a search kind.
func (k SearchKind) FilePrefix() string {
	switch k {
	case KindWifi:
		return "wifi-basic"
	case KindBluetooth:
		return "bt-basic"
	case KindCell:
		return "cell-basic"
	default:
		return "search"
	}
}

// DetailPath is the single-identifier detail endpoint, shared by all kinds.
const DetailPath = "/api/v2/network/detail"

// Page is one paginated response: an ordered batch of records plus the
// pagination metadata extracted from the body. Pages are immutable once
// decoded; a run owns a strictly ordered sequence numbered from 1.
//
// Records stay raw JSON. Decoding them into Go maps would randomize key
// order on re-encode, and the flattening engine's first-seen column order
// depends on the documents' original member order.
type Page struct {
	// Number is the 1-based position of this page within the run.
	Number int

	// Records are the entities returned on this page, in response order.
	Records []json.RawMessage

	// Cursor is the continuation token for the next request.
	// Empty means the service reported exhaustion.
	Cursor string

	// TotalResults is the service's total-count hint, or -1 if absent.
	// Informational only: termination is driven by cursor exhaustion.
	TotalResults int64
}

// DecodeSearchPage decodes a search response body into a Page.
// The cursor may appear as either "search_after" or "searchAfter"
// depending on the endpoint.
func DecodeSearchPage(body []byte, number int) (*Page, error) {
	var raw struct {
		Results      []json.RawMessage `json:"results"`
		SearchAfter  json.RawMessage   `json:"search_after"`
		SearchAfter2 json.RawMessage   `json:"searchAfter"`
		TotalResults *int64            `json:"totalResults"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode search page: %w", err)
	}

	page := &Page{
		Number:       number,
		Records:      raw.Results,
		TotalResults: -1,
	}
	if raw.TotalResults != nil {
		page.TotalResults = *raw.TotalResults
	}

	cursor := raw.SearchAfter
	if len(cursor) == 0 {
		cursor = raw.SearchAfter2
	}
	page.Cursor = decodeCursor(cursor)

	return page, nil
}

// decodeCursor normalizes the continuation token to a string. WiGLE has
// returned both string and numeric cursors over time.
func decodeCursor(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// DecodeDetail decodes a detail response body into its records. The detail
// endpoint returns either a "results" array or a single "result" object;
// both shapes normalize to a raw record slice. An empty slice means the
// identifier was not found.
func DecodeDetail(body []byte) ([]json.RawMessage, error) {
	var raw struct {
		Results []json.RawMessage `json:"results"`
		Result  json.RawMessage   `json:"result"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode detail response: %w", err)
	}
	if len(raw.Results) > 0 {
		return raw.Results, nil
	}
	if isObject(raw.Result) {
		return []json.RawMessage{raw.Result}, nil
	}
	return nil, nil
}

// isObject reports whether raw holds a non-empty JSON object.
func isObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && len(m) > 0
}
