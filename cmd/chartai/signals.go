package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/report"
)

var (
	signalPair      string
	signalTimeframe string
	signalTable     bool
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Generate synthetic signals",
}

var signalsNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Generate the signal for the next minute",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := buildApp(cmd.Context(), cfg, nil, zap.NewNop())
		if err != nil {
			return err
		}

		b, err := a.NextSignal(cmd.Context(), signalPair, signalTimeframe)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.Render(b))
		return nil
	},
}

var signalsFutureCmd = &cobra.Command{
	Use:   "future",
	Short: "Generate a future signal list",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := buildApp(cmd.Context(), cfg, nil, zap.NewNop())
		if err != nil {
			return err
		}

		b, err := a.FutureList(cmd.Context())
		if err != nil {
			return err
		}
		if signalTable {
			fmt.Fprint(cmd.OutOrStdout(), report.Table(b.Signals))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.Render(b))
		return nil
	},
}

func init() {
	signalsNextCmd.Flags().StringVarP(&signalPair, "pair", "p", "", "pair from the catalog")
	signalsNextCmd.Flags().StringVarP(&signalTimeframe, "timeframe", "t", "", "expiry label (default from config)")
	_ = signalsNextCmd.MarkFlagRequired("pair")
	signalsFutureCmd.Flags().BoolVar(&signalTable, "table", false, "print the on-screen table instead of the report")

	signalsCmd.AddCommand(signalsNextCmd, signalsFutureCmd)
	rootCmd.AddCommand(signalsCmd)
}
