package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/phish-detector/internal/features"
	"github.com/mikey/phish-detector/internal/model"
	"github.com/spf13/cobra"
)

var infoFeatures bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the loaded model's metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(m *model.Model) error {
			meta := m.Metadata()
			schema := m.Schema()

			if flags.JSONOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Metadata model.Metadata `json:"metadata"`
					Schema   string         `json:"schema"`
					Features int            `json:"features"`
					Names    []string       `json:"names,omitempty"`
				}{meta, schema.Version, schema.Len(), namesIf(infoFeatures, schema)})
			}

			fmt.Printf("Model version:   %s\n", meta.Version)
			fmt.Printf("Trained at:      %s\n", meta.TrainedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Printf("Training size:   %d samples\n", meta.Samples)
			fmt.Printf("Test accuracy:   %.4f\n", meta.TestAccuracy)
			fmt.Printf("CV accuracy:     %.4f (+/- %.4f)\n", meta.CVMean, meta.CVStd*2)
			fmt.Printf("Forest:          %d trees, max depth %d, min split %d, seed %d\n",
				meta.Params.Trees, meta.Params.MaxDepth, meta.Params.MinSamplesSplit, meta.Params.Seed)
			fmt.Printf("Feature schema:  %s (%d features, %d terms)\n",
				schema.Version, schema.Len(), schema.Len()-features.StatCount)
			if infoFeatures {
				fmt.Printf("\n%s\n", strings.Join(schema.Names, "\n"))
			}
			return nil
		})
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoFeatures, "features", false, "List every feature name")
}

func namesIf(ok bool, schema features.Schema) []string {
	if !ok {
		return nil
	}
	return schema.Names
}
