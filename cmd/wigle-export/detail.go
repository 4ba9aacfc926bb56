package main

import (
	"fmt"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Cell towers are identified by operator/lac/cid (GSM-family) or
// system/network/basestation (CDMA) instead of a netid.
var (
	flagDetailNetID       string
	flagDetailType        string
	flagDetailOperator    string
	flagDetailLAC         string
	flagDetailCID         string
	flagDetailSystem      string
	flagDetailNetwork     string
	flagDetailBasestation string
)

var detailCmd = &cobra.Command{
	Use:   "detail",
	Short: "Fetch one network's detail record and export it",
	Long: "Fetches a single network detail record, expands its location " +
		"history into one row per observation, and exports the result.",
	Example: `  wigle-export detail --netid aa:bb:cc:dd:ee:ff --csv --kml
  wigle-export detail --operator 310 --lac 1234 --cid 56789 --csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := detailParams()
		if len(params) == 0 {
			return fmt.Errorf("at least one identifier flag is required (--netid or cell identifiers)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cli, err := newClient(ctx)
		if err != nil {
			return err
		}

		_, err = newRunner(cli).Detail(ctx, params)
		return err
	},
}

func init() {
	f := detailCmd.Flags()
	f.StringVar(&flagDetailNetID, "netid", "", "network id (BSSID / BT id)")
	f.StringVar(&flagDetailType, "type", "", "network type (WIFI/BT/LTE/NR/...)")
	f.StringVar(&flagDetailOperator, "operator", "", "GSM/LTE/WCDMA/NR operator id")
	f.StringVar(&flagDetailLAC, "lac", "", "location area code")
	f.StringVar(&flagDetailCID, "cid", "", "cell id / NIR")
	f.StringVar(&flagDetailSystem, "system", "", "CDMA system id")
	f.StringVar(&flagDetailNetwork, "network", "", "CDMA network id")
	f.StringVar(&flagDetailBasestation, "basestation", "", "CDMA base station id")

	rootCmd.AddCommand(detailCmd)
}

func detailParams() url.Values {
	params := url.Values{}
	for key, value := range map[string]string{
		"netid":       flagDetailNetID,
		"type":        flagDetailType,
		"operator":    flagDetailOperator,
		"lac":         flagDetailLAC,
		"cid":         flagDetailCID,
		"system":      flagDetailSystem,
		"network":     flagDetailNetwork,
		"basestation": flagDetailBasestation,
	} {
		if value != "" {
			params.Set(key, value)
		}
	}
	return params
}
