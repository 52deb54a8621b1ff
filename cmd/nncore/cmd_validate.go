package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/nncore/internal/fixture"
	"github.com/born-ml/nncore/internal/model"
	"github.com/born-ml/nncore/internal/parallel"
	"github.com/born-ml/nncore/internal/validation"
)

func newValidateCmd(v *viper.Viper) *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate model or request fixtures",
	}

	modelCmd := &cobra.Command{
		Use:   "model FILE...",
		Short: "Validate model files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ValidateModelsHandler(cmd, v, args)
		},
	}

	requestCmd := &cobra.Command{
		Use:   "request --model FILE REQUEST...",
		Short: "Validate request files against a model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ValidateRequestsHandler(cmd, v, args)
		},
	}
	requestCmd.Flags().String("model", "", "model file the requests invoke")
	_ = requestCmd.MarkFlagRequired("model")

	validateCmd.AddCommand(modelCmd, requestCmd)
	return validateCmd
}

// ValidateModelsHandler validates each model file and reports one line per
// file.
func ValidateModelsHandler(cmd *cobra.Command, v *viper.Viper, paths []string) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}
	validator := validation.New(cfg)

	results := make([]error, len(paths))
	files := parallel.Config{Enabled: cfg.Parallel.Enabled, NumWorkers: workers(cfg), MinChunkSize: 1}
	parallel.ForEach(len(paths), func(i int) {
		m, err := fixture.LoadModel(paths[i])
		if err == nil {
			err = validator.Model(m)
		}
		results[i] = err
	}, files)

	return report(cmd, paths, results)
}

// ValidateRequestsHandler validates the model named by --model and then
// every request file against it.
func ValidateRequestsHandler(cmd *cobra.Command, v *viper.Viper, paths []string) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}
	validator := validation.New(cfg)

	modelPath, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}
	m, err := fixture.LoadModel(modelPath)
	if err != nil {
		return err
	}
	if err := validator.Model(m); err != nil {
		return fmt.Errorf("model %s: %w", modelPath, err)
	}

	docs, err := fixture.LoadRequests(cmd.Context(), paths, workers(cfg))
	if err != nil {
		return err
	}
	reqs := make([]*model.Request, len(docs))
	pools := make([][]uint64, len(docs))
	for i, doc := range docs {
		reqs[i], pools[i] = &doc.Request, doc.Pools
	}

	return report(cmd, paths, validator.Requests(m, reqs, pools))
}

func report(cmd *cobra.Command, paths []string, results []error) error {
	failed := 0
	for i, err := range results {
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: FAIL %v\n", paths[i], err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", paths[i])
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(paths))
	}
	return nil
}
