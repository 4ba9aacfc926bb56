package runner

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wigletool/wigle-export/internal/testutil"
)

func detailRecord(netid string) []map[string]any {
	return []map[string]any{
		{
			"netid": netid,
			"ssid":  "corp",
			"locationData": []map[string]any{
				{"trilat": 47.1, "trilong": -122.1, "lastupdt": "2025-01-01"},
				{"trilat": 47.2, "trilong": -122.2, "lastupdt": "2025-01-02"},
			},
		},
	}
}

func TestDetail_EndToEnd(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()
	mock.SetDetailResponse("/api/v2/network/detail", map[string][]map[string]any{
		"aa:bb:cc:dd:ee:ff": detailRecord("aa:bb:cc:dd:ee:ff"),
	})

	r, root := newTestRunner(t, mock.URL(), func(rc *RunContext) {
		rc.KeepJSON = true
	})

	params := url.Values{}
	params.Set("netid", "aa:bb:cc:dd:ee:ff")

	result, err := r.Detail(context.Background(), params)
	if err != nil {
		t.Fatalf("Detail() error = %v", err)
	}

	dir := filepath.Join(root, "detail-test")
	if result.OutputDir != dir {
		t.Errorf("OutputDir = %q, want %q", result.OutputDir, dir)
	}
	if result.Records != 1 {
		t.Errorf("Records = %d, want 1", result.Records)
	}

	// Location history expands to one CSV row per observation.
	data, err := os.ReadFile(result.CSVPath)
	if err != nil {
		t.Fatalf("ReadFile(csv) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("csv lines = %d, want header + 2 observations", len(lines))
	}

	// Retention in detail mode merges pages into {basename}.json.
	if want := filepath.Join(dir, "aabbccddeeff.json"); result.MergedJSON != want {
		t.Errorf("MergedJSON = %q, want %q", result.MergedJSON, want)
	}
	if _, err := os.Stat(result.MergedJSON); err != nil {
		t.Errorf("merged JSON missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "aabbccddeeff-page_1.json")); !os.IsNotExist(err) {
		t.Error("per-page file survived the merge")
	}
}

func TestDetail_NoResultsIsTerminal(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()
	mock.SetHandler("/api/v2/network/detail", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"results":[]}`))
	})

	var events []string
	r, _ := newTestRunner(t, mock.URL(), func(rc *RunContext) {
		rc.Progress = func(msg string) { events = append(events, msg) }
	})

	params := url.Values{}
	params.Set("netid", "aa:bb")

	result, err := r.Detail(context.Background(), params)
	if err != nil {
		t.Fatalf("Detail() error = %v, empty result must not fail", err)
	}
	if result.Artifacts() != 0 {
		t.Errorf("Artifacts() = %d, want 0", result.Artifacts())
	}
	if !strings.Contains(strings.Join(events, "\n"), "No results.") {
		t.Errorf("progress missing empty-result notice: %v", events)
	}
}

func TestDetail_NotFoundIsTerminal(t *testing.T) {
	mock := testutil.NewMockWigle()
	defer mock.Close()
	// Unknown netid: the endpoint answers 404.
	mock.SetDetailResponse("/api/v2/network/detail", map[string][]map[string]any{})

	var events []string
	r, _ := newTestRunner(t, mock.URL(), func(rc *RunContext) {
		rc.Progress = func(msg string) { events = append(events, msg) }
	})

	params := url.Values{}
	params.Set("netid", "99:99")

	result, err := r.Detail(context.Background(), params)
	if err != nil {
		t.Fatalf("Detail() error = %v, unknown identifier must not fail a single run", err)
	}
	if result == nil || result.Artifacts() != 0 {
		t.Errorf("result = %+v, want empty run bundle", result)
	}
	if !strings.Contains(strings.Join(events, "\n"), "No results.") {
		t.Errorf("progress missing empty-result notice: %v", events)
	}
}

func TestDetailBasename(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   string
	}{
		{
			name:   "netid wins",
			params: url.Values{"netid": {"aa:bb:cc"}, "operator": {"310"}},
			want:   "aabbcc",
		},
		{
			name:   "gsm cell triple",
			params: url.Values{"operator": {"310"}, "lac": {"1234"}, "cid": {"56789"}},
			want:   "operator-310_lac-1234_cid-56789",
		},
		{
			name:   "cdma triple",
			params: url.Values{"system": {"1"}, "network": {"2"}, "basestation": {"3"}},
			want:   "system-1_network-2_basestation-3",
		},
		{
			name:   "no identifiers",
			params: url.Values{"type": {"WIFI"}},
			want:   "detail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detailBasename(tt.params); got != tt.want {
				t.Errorf("detailBasename() = %q, want %q", got, tt.want)
			}
		})
	}
}
