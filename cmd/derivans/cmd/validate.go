package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:          "validate-config",
	Short:        "Load configuration and report validation errors without running anything",
	SilenceUsage: true,
	RunE:         runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := GetConfigLoader().LoadWithFileWithoutValidation(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "derivans: configuration invalid: %v\n", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "derivans: configuration valid (%d steps, poolsize=%d, quality=%d)\n",
		len(cfg.Steps), cfg.PoolSize, cfg.Quality)
	return nil
}
