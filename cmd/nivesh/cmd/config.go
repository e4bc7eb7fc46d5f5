package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niveshlab/nivesh/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a default run configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := cfg.SaveToFile(configOutPath); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", configOutPath)
		return nil
	},
}

var configOutPath string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&configOutPath, "out", "o", "./backtest.yaml", "output path (.yaml/.yml or .json)")
}
