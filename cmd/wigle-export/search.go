package main

import (
	"fmt"
	"net/url"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wigletool/wigle-export/pkg/wigle"
)

var (
	flagKind    string
	flagFilters []string
	flagSSID    string
	flagNetID   string
	flagCountry string
	flagBBox    string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a paginated search and export the results",
	Long: "Walks a WiGLE search endpoint's continuation cursor to exhaustion, " +
		"persisting each page of raw JSON before the next request, then exports " +
		"the accumulated records.",
	Example: `  wigle-export search --kind wifi --ssid coffeeshop --csv --kml
  wigle-export search --kind cell --filter cell_op=310260 --bbox 47.5,47.7,-122.4,-122.2 --csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := wigle.SearchKind(flagKind)
		if _, err := kind.SearchPath(); err != nil {
			return err
		}

		params, err := searchParams()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cli, err := newClient(ctx)
		if err != nil {
			return err
		}

		_, err = newRunner(cli).Search(ctx, kind, params)
		return err
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&flagKind, "kind", "wifi", "search kind: wifi, bt, or cell")
	f.StringArrayVar(&flagFilters, "filter", nil, "raw endpoint filter as key=value (repeatable)")
	f.StringVar(&flagSSID, "ssid", "", "exact SSID / name filter")
	f.StringVar(&flagNetID, "netid", "", "BSSID / network id filter")
	f.StringVar(&flagCountry, "country", "", "ISO country code filter")
	f.StringVar(&flagBBox, "bbox", "", "bounding box as south,north,west,east")

	rootCmd.AddCommand(searchCmd)
}

// searchParams assembles the endpoint parameter map from the filter
// flags. Pagination fields are owned by the fetcher and rejected here.
func searchParams() (url.Values, error) {
	params := url.Values{}

	for _, kv := range flagFilters {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --filter %q, expected key=value", kv)
		}
		if key == "searchAfter" || key == "resultsPerPage" {
			return nil, fmt.Errorf("--filter %s is managed by the fetcher", key)
		}
		params.Set(key, value)
	}

	if flagSSID != "" {
		params.Set("ssid", flagSSID)
	}
	if flagNetID != "" {
		params.Set("netid", flagNetID)
	}
	if flagCountry != "" {
		params.Set("country", flagCountry)
	}
	if flagBBox != "" {
		if err := applyBBox(params, flagBBox); err != nil {
			return nil, err
		}
	}

	return params, nil
}

// applyBBox expands south,north,west,east into the endpoint's four
// range parameters.
func applyBBox(params url.Values, bbox string) error {
	parts := strings.Split(bbox, ",")
	if len(parts) != 4 {
		return fmt.Errorf("invalid --bbox %q, expected south,north,west,east", bbox)
	}
	keys := []string{"latrange1", "latrange2", "longrange1", "longrange2"}
	for i, part := range parts {
		v := strings.TrimSpace(part)
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid --bbox coordinate %q: %w", part, err)
		}
		params.Set(keys[i], v)
	}
	return nil
}
