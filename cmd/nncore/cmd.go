package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/nncore/internal/logutil"
	"github.com/born-ml/nncore/internal/validation"
)

const version = "v0.1.0"

// NewCLI builds the nncore command tree. Settings come from flags, then
// NNCORE_* environment variables, then the --config file.
func NewCLI() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("nncore")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "nncore",
		Short:         "Validate neural network models and requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML validation config file")
	flags.String("verbose", "", "log level (0, 1, 2 or a level name)")
	flags.String("tags", "", "components with detailed logging (model, compilation, ... or all)")
	flags.String("mode", "", "model validation mode: strict or partial")
	flags.Bool("allow-unspecified-outputs", false, "accept zero-length output arguments")
	flags.Int("workers", 0, "maximum number of concurrent validations")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		newValidateCmd(v),
		newSizeCmd(),
		newAlignCmd(),
		newLayoutCmd(),
		newTypesCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nncore version %s\n", version)
		},
	}
}

// loadConfig builds the validation config: the config file (or defaults)
// overlaid with any flag or environment setting.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (validation.Config, error) {
	cfg := validation.DefaultConfig()
	if path := v.GetString("config"); path != "" {
		var err error
		if cfg, err = validation.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if v.IsSet("mode") {
		if err := cfg.Mode.UnmarshalText([]byte(v.GetString("mode"))); err != nil {
			return cfg, err
		}
	}
	if v.IsSet("tags") {
		tags, err := logutil.ParseTags(v.GetString("tags"))
		if err != nil {
			return cfg, err
		}
		cfg.Tags = tags
	}
	if v.IsSet("allow-unspecified-outputs") {
		cfg.AllowUnspecifiedOutputs = v.GetBool("allow-unspecified-outputs")
	}
	if v.IsSet("workers") {
		n := v.GetInt("workers")
		if n < 0 {
			return cfg, fmt.Errorf("workers must not be negative, got %d", n)
		}
		cfg.Parallel.NumWorkers = n
		cfg.Parallel.Enabled = n > 1
	}

	level, err := logutil.ParseLevel(v.GetString("verbose"))
	if err != nil {
		return cfg, err
	}
	cfg.Logger = logutil.NewLogger(cmd.ErrOrStderr(), level)
	cfg.Logger.Debug("configuration",
		"mode", cfg.Mode,
		"tags", cfg.Tags,
		"failureLevel", cfg.FailureLevel,
		"workers", cfg.Parallel.NumWorkers)

	return cfg, cfg.Validate()
}

// workers returns the fan-out limit for file-level work.
func workers(cfg validation.Config) int {
	if cfg.Parallel.NumWorkers > 0 {
		return cfg.Parallel.NumWorkers
	}
	return 1
}
