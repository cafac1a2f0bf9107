package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/training"
	"github.com/spf13/cobra"
)

var (
	trainDataset string
	trainTrees   int
	trainDepth   int
	trainSeed    int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model and write the artifact",
	Long: `Train a random forest from a labelled dataset and write the model artifact
to model.path (or --model).

The dataset may be CSV with email_text,label columns, a JSON array or YAML
list of {email_text, label} objects. Labels are 1 (phishing) and
0 (legitimate). Without a dataset the built-in 40-email sample is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		applyOverrides := func(cfg *config.Config) {
			v := cfg.GetViper()
			if cmd.Flags().Changed("dataset") {
				v.Set("training.dataset_path", trainDataset)
			}
			if cmd.Flags().Changed("trees") {
				v.Set("training.trees", trainTrees)
			}
			if cmd.Flags().Changed("max-depth") {
				v.Set("training.max_depth", trainDepth)
			}
			if cmd.Flags().Changed("seed") {
				v.Set("training.seed", trainSeed)
			}
		}
		return invoke(applyOverrides, func(cfg *config.Config, trainer *training.Trainer) error {
			return runTrain(ctx, cfg, trainer)
		})
	},
}

func init() {
	f := trainCmd.Flags()
	f.StringVar(&trainDataset, "dataset", "", "Dataset file (.csv, .json, .yaml)")
	f.IntVar(&trainTrees, "trees", 100, "Number of trees in the forest")
	f.IntVar(&trainDepth, "max-depth", 10, "Maximum tree depth")
	f.Int64Var(&trainSeed, "seed", 42, "Random seed")
}

func runTrain(ctx context.Context, cfg *config.Config, trainer *training.Trainer) error {
	trainingCfg := cfg.GetTraining()
	dataset, err := training.LoadDataset(trainingCfg.DatasetPath)
	if err != nil {
		return err
	}
	legitimate, phishing := dataset.Counts()

	m, report, err := trainer.Train(ctx, dataset)
	if err != nil {
		return err
	}

	path := cfg.GetModel().Path
	if err := m.Save(path); err != nil {
		return err
	}

	if flags.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*training.Report
			Model string `json:"model"`
			Path  string `json:"path"`
		}{report, m.Version(), path})
	}

	source := trainingCfg.DatasetPath
	if source == "" {
		source = "built-in sample"
	}
	fmt.Printf("Dataset: %s (%d samples: %d phishing, %d legitimate)\n",
		source, len(dataset), phishing, legitimate)
	fmt.Printf("Train/test split: %d/%d, %d features\n\n", report.TrainSamples, report.TestSamples, report.Features)
	fmt.Print(report.Test.String())
	if len(report.CVScores) > 0 {
		fmt.Printf("\ncross-validation scores: %.4f\n", report.CVScores)
		fmt.Printf("mean CV score: %.4f (+/- %.4f)\n", report.CVMean, report.CVStd*2)
	}
	fmt.Printf("\nModel %s saved to %s (%v)\n", m.Version(), path, report.Elapsed.Round(time.Millisecond))
	return nil
}
