package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the area metric and prediction log tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := initStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		zap.L().Info("schema up to date", zap.String("driver", cfg.StoreDriver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
