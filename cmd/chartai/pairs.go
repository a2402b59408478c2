package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs [search]",
	Short: "List catalog pairs, optionally filtered",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := buildApp(cmd.Context(), cfg, nil, zap.NewNop())
		if err != nil {
			return err
		}

		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		for _, p := range a.Pairs(term) {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pairsCmd)
}
