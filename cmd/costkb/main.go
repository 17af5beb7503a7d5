package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "costkb",
	Short: "costkb - reproducibility generator for the cost/incident knowledge base",
	Long: `costkb turns the cost-tuple and incident-tuple knowledge base into
auditable decision-support artifacts: competency-question results,
SHACL constraint verdicts, VOI priorities, sensitivity rankings and
weighted objective comparisons.

The ontology is a Google Mangle program; records are merged into it as
facts and the validation layer queries the evaluated graph. All five
output tables are deterministic: identical inputs yield byte-identical
artifacts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the generator version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("costkb 1.0.0")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
