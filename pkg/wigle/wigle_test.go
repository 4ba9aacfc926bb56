package wigle

import (
	"testing"
)

func TestSearchKind_SearchPath(t *testing.T) {
	tests := []struct {
		name    string
		kind    SearchKind
		want    string
		wantErr bool
	}{
		{
			name: "wifi",
			kind: KindWifi,
			want: "/api/v2/network/search",
		},
		{
			name: "bluetooth",
			kind: KindBluetooth,
			want: "/api/v2/bluetooth/search",
		},
		{
			name: "cell",
			kind: KindCell,
			want: "/api/v2/cell/search",
		},
		{
			name:    "unknown kind",
			kind:    SearchKind("satellite"),
			wantErr: true,
		},
		{
			name:    "empty kind",
			kind:    SearchKind(""),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.kind.SearchPath()
			if (err != nil) != tt.wantErr {
				t.Fatalf("SearchPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SearchPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchKind_FilePrefix(t *testing.T) {
	tests := []struct {
		kind SearchKind
		want string
	}{
		{KindWifi, "wifi-basic"},
		{KindBluetooth, "bt-basic"},
		{KindCell, "cell-basic"},
		{SearchKind("other"), "search"},
	}

	for _, tt := range tests {
		if got := tt.kind.FilePrefix(); got != tt.want {
			t.Errorf("FilePrefix(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDecodeSearchPage(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantRecords int
		wantCursor  string
		wantTotal   int64
	}{
		{
			name:        "snake_case cursor",
			body:        `{"success":true,"results":[{"netid":"aa"},{"netid":"bb"}],"search_after":"c1","totalResults":42}`,
			wantRecords: 2,
			wantCursor:  "c1",
			wantTotal:   42,
		},
		{
			name:        "camelCase cursor",
			body:        `{"success":true,"results":[{"netid":"aa"}],"searchAfter":"c2"}`,
			wantRecords: 1,
			wantCursor:  "c2",
			wantTotal:   -1,
		},
		{
			name:        "numeric cursor",
			body:        `{"results":[{"netid":"aa"}],"searchAfter":1690000000123}`,
			wantRecords: 1,
			wantCursor:  "1690000000123",
			wantTotal:   -1,
		},
		{
			name:        "no cursor means exhaustion",
			body:        `{"results":[{"netid":"aa"}],"totalResults":1}`,
			wantRecords: 1,
			wantCursor:  "",
			wantTotal:   1,
		},
		{
			name:        "empty results",
			body:        `{"results":[]}`,
			wantRecords: 0,
			wantCursor:  "",
			wantTotal:   -1,
		},
		{
			name:        "snake_case wins over camelCase",
			body:        `{"results":[],"search_after":"snake","searchAfter":"camel"}`,
			wantRecords: 0,
			wantCursor:  "snake",
			wantTotal:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := DecodeSearchPage([]byte(tt.body), 3)
			if err != nil {
				t.Fatalf("DecodeSearchPage() error = %v", err)
			}
			if page.Number != 3 {
				t.Errorf("Number = %d, want 3", page.Number)
			}
			if len(page.Records) != tt.wantRecords {
				t.Errorf("len(Records) = %d, want %d", len(page.Records), tt.wantRecords)
			}
			if page.Cursor != tt.wantCursor {
				t.Errorf("Cursor = %q, want %q", page.Cursor, tt.wantCursor)
			}
			if page.TotalResults != tt.wantTotal {
				t.Errorf("TotalResults = %d, want %d", page.TotalResults, tt.wantTotal)
			}
		})
	}
}

func TestDecodeSearchPage_PreservesRecordBytes(t *testing.T) {
	// Records must stay raw so downstream re-encoding keeps member order.
	body := `{"results":[{"zulu":1,"alpha":2,"mike":3}]}`

	page, err := DecodeSearchPage([]byte(body), 1)
	if err != nil {
		t.Fatalf("DecodeSearchPage() error = %v", err)
	}
	if len(page.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(page.Records))
	}
	if got := string(page.Records[0]); got != `{"zulu":1,"alpha":2,"mike":3}` {
		t.Errorf("record bytes = %s, member order not preserved", got)
	}
}

func TestDecodeSearchPage_InvalidJSON(t *testing.T) {
	if _, err := DecodeSearchPage([]byte(`{"results":`), 1); err == nil {
		t.Error("DecodeSearchPage() expected error for truncated body")
	}
}

func TestDecodeDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "results array",
			body: `{"success":true,"results":[{"netid":"aa"},{"netid":"bb"}]}`,
			want: 2,
		},
		{
			name: "single result object",
			body: `{"success":true,"result":{"netid":"aa","ssid":"x"}}`,
			want: 1,
		},
		{
			name: "empty results",
			body: `{"success":true,"results":[]}`,
			want: 0,
		},
		{
			name: "empty result object",
			body: `{"success":true,"result":{}}`,
			want: 0,
		},
		{
			name: "null result",
			body: `{"success":false,"result":null}`,
			want: 0,
		},
		{
			name: "results array wins over result object",
			body: `{"results":[{"a":1}],"result":{"b":2}}`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeDetail([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeDetail() error = %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("len(records) = %d, want %d", len(records), tt.want)
			}
		})
	}
}

func TestDecodeDetail_InvalidJSON(t *testing.T) {
	if _, err := DecodeDetail([]byte(`not json`)); err == nil {
		t.Error("DecodeDetail() expected error for invalid body")
	}
}
