package main

import (
	"errors"
	"os"

	"github.com/mikey/phish-detector/internal/adapters/cli"
	"github.com/spf13/cobra"
)

var (
	scanText        string
	scanFile        string
	scanDir         string
	scanInteractive bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Classify emails as phishing or legitimate",
	Example: `  phish-cli scan -i                    # Interactive mode
  phish-cli scan -f email.eml          # Analyze a single file
  phish-cli scan -d emails/            # Batch analyze a directory
  phish-cli scan -t "Click here now!"  # Analyze text directly`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		return invoke(func(scanner *cli.Scanner) error {
			switch {
			case scanText != "":
				_, err := scanner.ScanText(ctx, scanText)
				return err
			case scanFile != "":
				_, err := scanner.ScanFile(ctx, scanFile)
				return err
			case scanDir != "":
				_, err := scanner.ScanDir(ctx, scanDir)
				return err
			case scanInteractive:
				return scanner.Interactive(ctx, os.Stdin)
			default:
				return errors.New("nothing to scan: pass non-empty --text, --file or --directory, or --interactive")
			}
		})
	},
}

func init() {
	f := scanCmd.Flags()
	f.StringVarP(&scanText, "text", "t", "", "Analyze email text directly")
	f.StringVarP(&scanFile, "file", "f", "", "Analyze an email from a .txt or .eml file")
	f.StringVarP(&scanDir, "directory", "d", "", "Batch analyze all .txt and .eml files in a directory")
	f.BoolVarP(&scanInteractive, "interactive", "i", false, "Interactive mode")

	scanCmd.MarkFlagsMutuallyExclusive("text", "file", "directory", "interactive")
	scanCmd.MarkFlagsOneRequired("text", "file", "directory", "interactive")
}
