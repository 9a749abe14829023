package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/golang/glog"
	"github.com/limaJavier/courseload/pkg/milp"
	"github.com/spf13/cobra"
)

// Exit codes of the CLI
const (
	exitError              = 1
	exitSolved             = 10
	exitVerificationFailed = 15
	exitNoSolution         = 20
)

var (
	configPath string
	exitCode   int
)

var rootCmd = &cobra.Command{
	Use:   "courseload",
	Short: "courseload - Professor section allocation as an integer program",
	Long: `courseload assigns course sections to professors across semesters.

It builds an integer linear program from an input file (professors, courses,
semesters, preferences and teaching rules), maximises the total satisfaction
and reports how many sections of each course every professor teaches in each
semester.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its flags from the Go flag set, which cobra has already filled
		if err := flag.CommandLine.Parse(nil); err != nil {
			return err
		}
		setConfigPath()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	defer log.Flush()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		return exitError
	}
	return exitCode
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the solver config (defaults to config.json next to the executable)")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// setConfigPath points the solver adapters at the config file. Without one, solver executables are
// looked up in the PATH.
func setConfigPath() {
	if configPath != "" {
		milp.ConfigPath = configPath
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		log.Exitf("cannot determine executable path: %v", err)
	}
	milp.ConfigPath = filepath.Join(filepath.Dir(execPath), "config.json")
	log.V(1).Infof("solver config: %v", milp.ConfigPath)
}
