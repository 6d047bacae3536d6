package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/reviewlens/internal/config"
)

// newConfigInitCmd creates the config init command, which writes the
// default configuration.
func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Annotations: map[string]string{annotationSkipConfigLoad: "true"},
		Short: "Initialize configuration file with default values",
		Long: `Creates a configuration file with default values at the --config path,
$REVIEWLENS_CONFIG, or ./reviewlens.yaml.`,
		Example: `  # Create ./reviewlens.yaml
  reviewlens config init

  # Create configuration, overwriting existing
  reviewlens config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := config.ResolvePath(a.configPath)
			if err := config.New().Save(path, force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return fmt.Errorf("%w, use --force to overwrite", err)
				}
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			cmd.Printf("Configuration initialized at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	return cmd
}

// newConfigShowCmd creates the config show command, which prints the
// effective configuration as YAML.
func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.effectiveConfig().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
