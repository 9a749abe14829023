package commands

import (
	"os"

	"github.com/limaJavier/courseload/internal/printer"
	"github.com/limaJavier/courseload/pkg/model"
	"github.com/spf13/cobra"
)

var checkFile string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an input file and print the model dimensions",
	Long: `Load an input file and build its model without solving it.

Reports configuration errors (missing preferences, unknown entities,
unsatisfiable rule parameters) the same way solve would.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "Path to the input file (.yaml, .yml or .json)")
	checkCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	problem, err := buildProblem(checkFile)
	if err != nil {
		return err
	}

	printer.FormatSummary(os.Stdout, problem)
	printer.Success("%s is valid\n", checkFile)
	return nil
}

func buildProblem(file string) (*model.Problem, error) {
	input, err := loadInput(file)
	if err != nil {
		return nil, err
	}

	printer.Step("building model of %s\n", file)
	problem, err := model.Build(input.Registry, input.Preferences, input.Rules)
	if err != nil {
		return nil, allocationError(err, "")
	}
	problem.Model.Name = input.Name
	return problem, nil
}
