package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ajxudir/updatecheck/pkg/config"
	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/verbose"
)

var (
	configShowDefaultsFlag  bool
	configShowEffectiveFlag bool
	configInitFlag          bool
	configValidateFlag      bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create configuration",
	Long:  `Show, validate or create configuration files.`,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowDefaultsFlag, "show-defaults", false, "Show default configuration")
	configCmd.Flags().BoolVar(&configShowEffectiveFlag, "show-effective", false, "Show effective configuration")
	configCmd.Flags().BoolVar(&configInitFlag, "init", false, "Create .updatecheck.yml template")
	configCmd.Flags().BoolVar(&configValidateFlag, "validate", false, "Validate configuration file (rejects unknown fields)")
}

// runConfig executes the config command with the specified flags.
//
// Behavior depends on flags:
//   - --init: Creates a .updatecheck.yml template file in --dir
//   - --validate: Validates the configuration file for schema errors
//   - --show-defaults: Displays the default configuration
//   - --show-effective: Displays the effective merged configuration
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Command line arguments
//
// Returns:
//   - error: Returns error on validation or file operation failure
func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if configInitFlag {
		return createConfigTemplate(out)
	}

	if configValidateFlag {
		return validateConfigFile(out)
	}

	if configShowDefaultsFlag {
		fmt.Fprintln(out, "Default configuration:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, config.GetDefaultConfig())
		return nil
	}

	if configShowEffectiveFlag {
		cfg, err := loadEngineConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}

		fmt.Fprintln(out, "Effective configuration:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Registry: %s\n", cfg.GetRegistrySource())
		fmt.Fprintf(out, "Breakpoint packages: %d\n", len(cfg.Breakpoints))
		fmt.Fprintf(out, "Plugins: %d\n\n", len(cfg.Plugins))
		fmt.Fprint(out, string(data))
		return nil
	}

	return cmd.Help()
}

// configFilePath returns the config file named by --config, or the local
// config file in --dir.
func configFilePath() string {
	if configFlag != "" {
		return configFlag
	}
	return filepath.Join(dirFlag, config.LocalConfigName)
}

// validateConfigFile validates the configuration file selected by --config
// or found in --dir. Reports validation errors and warnings.
//
// Returns:
//   - error: Returns ExitError with ExitConfigError code on validation failure
func validateConfigFile(out io.Writer) error {
	configPath := configFilePath()

	data, err := readFileFunc(configPath)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to read config file '%s': %w", configPath, err))
	}

	result := config.ValidateConfigFile(data)

	if result.HasErrors() {
		fmt.Fprintf(out, "%s Configuration validation failed for: %s\n\n", constants.IconError, configPath)

		for _, e := range result.Errors {
			if verbose.IsEnabled() {
				fmt.Fprintf(out, "  ERROR: %s\n", e.VerboseError())
			} else {
				fmt.Fprintf(out, "  ERROR: %s\n", e.Error())
			}
		}

		if len(result.Warnings) > 0 {
			fmt.Fprintln(out)
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "  WARNING: %s\n", w)
			}
		}
		fmt.Fprintln(out)
		if !verbose.IsEnabled() {
			fmt.Fprintf(out, "%s Run with --verbose for detailed schema information\n", constants.IconLightbulb)
		}
		fmt.Fprintf(out, "%s Run 'updatecheck config --show-defaults' for valid configuration options\n", constants.IconLightbulb)
		verbose.Infof("Exit code %d (config error): configuration validation failed for %s", errors.ExitConfigError, configPath)
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("configuration validation failed"))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "%s Configuration valid with warnings: %s\n\n", constants.IconWarn, configPath)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  WARNING: %s\n", w)
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprintf(out, "%s Configuration valid: %s\n", constants.IconCheckmark, configPath)
	}

	return nil
}

// createConfigTemplate creates a new .updatecheck.yml template file.
//
// The template is created in --dir. Fails if a config file already exists
// at that location.
//
// Returns:
//   - error: Returns error if file exists or cannot be created
func createConfigTemplate(out io.Writer) error {
	configPath := filepath.Join(dirFlag, config.LocalConfigName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	// 0600: owner read/write only
	if err := writeFileFunc(configPath, []byte(config.GetTemplateConfig()), 0600); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(out, "Created configuration template: %s\n", configPath)
	return nil
}
