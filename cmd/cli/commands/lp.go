package commands

import (
	"github.com/limaJavier/courseload/internal/printer"
	"github.com/spf13/cobra"
)

var (
	lpFile string
	lpOut  string
)

var lpCmd = &cobra.Command{
	Use:   "lp",
	Short: "Export the model of an input file in CPLEX LP format",
	Long: `Build the model of an input file and write it in CPLEX LP format, so it can be
handed to any LP/MILP solver.

Examples:
  courseload lp --file testdata/professors.yaml --out model.lp`,
	RunE: runLp,
}

func init() {
	lpCmd.Flags().StringVarP(&lpFile, "file", "f", "", "Path to the input file (.yaml, .yml or .json)")
	lpCmd.Flags().StringVar(&lpOut, "out", "", "File to write the model to; if empty, the Standard Output")
	lpCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(lpCmd)
}

func runLp(cmd *cobra.Command, args []string) error {
	problem, err := buildProblem(lpFile)
	if err != nil {
		return err
	}

	if err := writeOutput([]byte(problem.Model.ToLP()), lpOut); err != nil {
		return err
	}
	if lpOut != "" {
		printer.Success("model written to %s\n", lpOut)
	}
	return nil
}
