package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tspthomas/BDS/internal/pipeline"
	"github.com/tspthomas/BDS/internal/report"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full default-prediction analysis",
		RunE:  runAnalysis,
	}

	defaults := pipeline.DefaultConfig()
	cmd.Flags().String("data", defaults.DataPath, "path to the credit CSV")
	cmd.Flags().String("out", defaults.OutputDir, "directory for plot artifacts")
	cmd.Flags().Int64("seed", defaults.Seed, "seed for cross-validation folds and the train/test split")
	cmd.Flags().Int("folds", defaults.Folds, "cross-validation folds")
	cmd.Flags().Float64("cutoff", defaults.Cutoff, "classification cutoff on the fitted probability")
	cmd.Flags().Int("nlambda", defaults.NLambda, "number of penalty grid points")
	cmd.Flags().Float64("lambda-min-ratio", defaults.LambdaMinRatio, "smallest penalty as a fraction of the largest")
	cmd.Flags().Float64("train-fraction", defaults.TrainFraction, "share of rows in the training half")
	cmd.Flags().Float64("positive-label", defaults.PositiveLabel, "outcome value that counts as a default")
	cmd.Flags().StringSlice("mosaic", defaults.MosaicFields, "categorical fields to draw mosaic plots for")

	for _, name := range []string{
		"data", "out", "seed", "folds", "cutoff", "nlambda", "lambda-min-ratio",
		"train-fraction", "positive-label", "mosaic",
	} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

// analysisConfig assembles the pipeline configuration from viper, so flags,
// the config file, and CREDIT_ environment variables all apply.
func analysisConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.DataPath = viper.GetString("data")
	cfg.OutputDir = viper.GetString("out")
	cfg.Seed = viper.GetInt64("seed")
	cfg.Folds = viper.GetInt("folds")
	cfg.Cutoff = viper.GetFloat64("cutoff")
	cfg.NLambda = viper.GetInt("nlambda")
	cfg.LambdaMinRatio = viper.GetFloat64("lambda-min-ratio")
	cfg.TrainFraction = viper.GetFloat64("train-fraction")
	cfg.PositiveLabel = viper.GetFloat64("positive-label")
	cfg.MosaicFields = viper.GetStringSlice("mosaic")
	return cfg
}

func runAnalysis(cmd *cobra.Command, _ []string) error {
	cfg := analysisConfig()

	plots, err := report.NewPlotter(cfg.OutputDir)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, slog.Default(), cmd.OutOrStdout(), plots)
	_, err = p.Run(cmd.Context())
	return err
}
