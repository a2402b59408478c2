package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lrchart/chartai/internal/analysis"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/report"
	"github.com/lrchart/chartai/internal/ui"
)

var analyzePair string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ask the AI about a chart screenshot",
}

var analyzeChartCmd = &cobra.Command{
	Use:   "chart <image>",
	Short: "Get a CALL/PUT verdict for the next minute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, image, err := analyzeSetup(cmd, args[0])
		if err != nil {
			return err
		}

		v, _, err := a.AnalyzeChart(cmd.Context(), image, analysis.DetectMIME(image))
		if err != nil {
			return cliError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.ChartAnalysis(v.AnalysisResult))
		return nil
	},
}

var analyzeFutureCmd = &cobra.Command{
	Use:   "future <image>",
	Short: "Predict signals for a pair over the next 30 minutes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, image, err := analyzeSetup(cmd, args[0])
		if err != nil {
			return err
		}

		f, _, err := a.Forecast(cmd.Context(), image, analysis.DetectMIME(image), analyzePair)
		if err != nil {
			return cliError(err)
		}
		if len(f.Signals) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.MsgNoSignals)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.AIForecast(f.Pair, f.Signals, a.Labels()))
		return nil
	},
}

func analyzeSetup(cmd *cobra.Command, path string) (*app.App, []byte, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	// Nobody polls a job from the command line.
	cfg.Analysis.UITimeout = cfg.Analysis.RequestTimeout

	log, err := buildLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	a, err := buildApp(cmd.Context(), cfg, nil, log)
	if err != nil {
		return nil, nil, err
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return a, image, nil
}

func cliError(err error) error {
	var te *app.TimeoutError
	if errors.As(err, &te) {
		return errors.New(ui.MsgTimeout)
	}
	return err
}

func init() {
	analyzeFutureCmd.Flags().StringVarP(&analyzePair, "pair", "p", "", "pair shown on the chart")
	_ = analyzeFutureCmd.MarkFlagRequired("pair")

	analyzeCmd.AddCommand(analyzeChartCmd, analyzeFutureCmd)
	rootCmd.AddCommand(analyzeCmd)
}
