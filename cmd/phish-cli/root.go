package main

import (
	"context"

	"github.com/mikey/phish-detector/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/dig"
)

var flags = &di.CLIFlags{}

var rootCmd = &cobra.Command{
	Use:   "phish-cli",
	Short: "Phishing email detector",
	Long: `phish-cli classifies emails as phishing or legitimate with a random forest
trained on text statistics and TF-IDF terms.

Train a model with 'phish-cli train', then scan text, files or whole
directories with 'phish-cli scan'.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.ConfigFile, "config", "c", "", "Path to config file")
	pf.StringVarP(&flags.ModelPath, "model", "m", "", "Path to the model artifact (overrides model.path)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	pf.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	pf.BoolVar(&flags.JSONOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(infoCmd)
}

// invoke builds the CLI container and runs each fn in order against it,
// unwrapping dig's error chain so users see the underlying failure
func invoke(fns ...interface{}) error {
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		return err
	}
	for _, fn := range fns {
		if err := container.Invoke(fn); err != nil {
			return dig.RootCause(err)
		}
	}
	return nil
}
