package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"valuation_service/internal/domain/model"
)

var (
	estimateProperty model.Property
	estimateLive     bool
)

var estimateCmd = &cobra.Command{
	Use:     "estimate",
	Short:   "Price one property and print the result as JSON",
	Example: "  valuation estimate --lat 51.5074 --lon -0.1278 --year 2030 --area 1000 --bedrooms 2 --bathrooms 1",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if estimateProperty.AreaSqft <= 0 {
			return eris.New("--area must be positive")
		}

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		p := estimateProperty
		if p.Year == 0 {
			p.Year = env.Service.ReferenceYear()
		}
		result, err := env.Service.Predict(ctx, p, estimateLive)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	f := estimateCmd.Flags()
	f.Float64Var(&estimateProperty.Latitude, "lat", 0, "latitude")
	f.Float64Var(&estimateProperty.Longitude, "lon", 0, "longitude")
	f.IntVar(&estimateProperty.Year, "year", 0, "target year (default: reference year)")
	f.Float64Var(&estimateProperty.AreaSqft, "area", 0, "floor area in square feet")
	f.IntVar(&estimateProperty.Bedrooms, "bedrooms", 0, "number of bedrooms")
	f.IntVar(&estimateProperty.Bathrooms, "bathrooms", 0, "number of bathrooms")
	f.BoolVar(&estimateLive, "live", false, "query live geodata on a cache miss")
	_ = estimateCmd.MarkFlagRequired("lat")
	_ = estimateCmd.MarkFlagRequired("lon")
	_ = estimateCmd.MarkFlagRequired("area")
	rootCmd.AddCommand(estimateCmd)
}
