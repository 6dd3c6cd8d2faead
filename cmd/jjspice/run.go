package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/jj-spice/pkg/plot"
	"github.com/edp1096/jj-spice/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run <netlist>",
	Short: "Simulate a netlist file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("csv") {
			cfg.Output.CSV, _ = cmd.Flags().GetString("csv")
		}
		if cmd.Flags().Changed("plot") {
			cfg.Output.Plot, _ = cmd.Flags().GetString("plot")
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		printMatrix, _ := cmd.Flags().GetBool("matrix")

		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading netlist file: %w", err)
		}

		logger := newLogger(cfg)
		out, err := runner.New(cfg, logger, nil).Run(string(content))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if printMatrix {
			out.Circuit.PrintA(w)
		}
		if !quiet {
			printResults(w, out.Results)
		}
		if out.Report != nil && !out.Report.Converged() {
			fmt.Fprintf(w, "\nNewton did not converge at %d of %d time points\n",
				len(out.Report.Failures), out.Report.Steps)
		}

		if cfg.Output.CSV != "" {
			if err := out.Circuit.SaveResultsToFile(cfg.Output.CSV); err != nil {
				return err
			}
			logger.Info("results written", "path", cfg.Output.CSV)
		}
		if cfg.Output.Plot != "" {
			err := plot.SavePNG(out.Circuit.GetResults(), out.Circuit.GetNumNodes(), cfg.Output.Plot,
				plot.Options{Title: out.Title})
			if err != nil {
				return err
			}
			logger.Info("plot written", "path", cfg.Output.Plot)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("csv", "", "Write the result history as CSV to this path")
	runCmd.Flags().String("plot", "", "Render node waveforms to this image path")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the result table")
	runCmd.Flags().Bool("matrix", false, "Print the last assembled MNA system")
}
