package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"valuation_service/internal/core"
)

var economicsLat, economicsLon float64

var economicsCmd = &cobra.Command{
	Use:   "economics",
	Short: "Print the market profile resolved for a coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := core.NewEconomicsResolver(initCountryResolver(cfg),
			core.WithMicroVariance(cfg.EconomicsMicroVariance),
		)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resolver.Resolve(economicsLat, economicsLon))
	},
}

func init() {
	economicsCmd.Flags().Float64Var(&economicsLat, "lat", 0, "latitude")
	economicsCmd.Flags().Float64Var(&economicsLon, "lon", 0, "longitude")
	_ = economicsCmd.MarkFlagRequired("lat")
	_ = economicsCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(economicsCmd)
}
