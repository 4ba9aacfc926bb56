// Command wigle-export queries the WiGLE wardriving API and exports the
// results: cursor-paginated searches, single-network detail lookups, and
// sequential batches of detail lookups, each materialized as raw JSON
// pages, CSV, and KML.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wigletool/wigle-export/internal/config"
	"github.com/wigletool/wigle-export/internal/runner"
	"github.com/wigletool/wigle-export/pkg/client"
	"github.com/wigletool/wigle-export/pkg/logging"
)

var cfg *config.Config

// Per-run flags shared by all subcommands.
var (
	flagOutput   string
	flagCSV      bool
	flagKML      bool
	flagKeepJSON bool
	flagPageSize int
	flagMaxPages int
)

var rootCmd = &cobra.Command{
	Use:   "wigle-export",
	Short: "Export WiGLE search and detail results to CSV/KML",
	Long: "Queries the WiGLE API (Wi-Fi, Bluetooth, and cell searches plus " +
		"network detail lookups), accumulates the raw JSON pages on disk, and " +
		"flattens them into schema-free CSV tables and KML placemarks.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		logging.Setup(logging.Config{
			Level:  logging.LogLevel(cfg.Log.Level),
			Pretty: cfg.Log.Pretty,
			Output: os.Stderr,
		})

		if cfg.MetricsAddr != "" {
			go serveMetrics(cfg.MetricsAddr)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagOutput, "output", "o", "", "output root directory (default from config)")
	pf.BoolVar(&flagCSV, "csv", false, "export a full CSV table")
	pf.BoolVar(&flagKML, "kml", false, "export KML placemarks")
	pf.BoolVar(&flagKeepJSON, "keep-json", false, "retain raw page JSON after export")
	pf.IntVar(&flagPageSize, "page-size", 0, "results per page (default from config)")
	pf.IntVar(&flagMaxPages, "max-pages", 0, "stop after this many pages (0 = unbounded)")
}

// newClient builds the WiGLE client from config, wiring the optional
// Redis detail cache when configured and reachable.
func newClient(ctx context.Context) (*client.Client, error) {
	cc := client.DefaultConfig(cfg.API.Username, cfg.API.Token)
	cc.BaseURL = cfg.API.BaseURL
	cc.UserAgent = cfg.API.UserAgent
	cc.RateLimit = cfg.API.RateLimit
	cc.Timeout = cfg.API.Timeout()
	cc.CacheTTL = cfg.Cache.TTL()

	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).
				Msg("Redis unreachable, detail cache disabled")
		} else {
			cc.Redis = rdb
		}
	}

	return client.New(cc)
}

// newRunner builds a runner whose progress events print to stdout.
func newRunner(cli *client.Client) *runner.Runner {
	rc := runner.NewRunContext(outputRoot())
	rc.CSV = flagCSV
	rc.KML = flagKML
	rc.KeepJSON = flagKeepJSON || cfg.Output.KeepJSON
	rc.PageSize = pageSize()
	rc.MaxPages = maxPages()
	rc.Progress = func(msg string) {
		fmt.Println(msg)
	}
	return runner.New(cli, rc)
}

func outputRoot() string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.Root
}

func pageSize() int {
	if flagPageSize > 0 {
		return flagPageSize
	}
	return cfg.Output.PageSize
}

func maxPages() int {
	if flagMaxPages > 0 {
		return flagMaxPages
	}
	return cfg.Output.MaxPages
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn().Err(err).Msg("Metrics server stopped")
	}
}
