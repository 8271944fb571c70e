package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/rulebook/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, check or print the RuleBook config file",
	Long: `The config file holds the journal location, your profile email, the
weekly goal and lifetime target, the timezone weeks are counted in, and
logging and server settings. YAML and JSON are both accepted.

Examples:
  rulebook config init -o rulebook.yaml
  rulebook config validate -f rulebook.yaml
  rulebook -c rulebook.yaml config show`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config with default goals",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a config file and report its goals and journal",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings in effect after flags are applied",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var (
	initPath     string
	validatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configValidateCmd, configShowCmd)

	configInitCmd.Flags().StringVarP(&initPath, "output", "o", "rulebook.yaml", "where to write the new config")
	configValidateCmd.Flags().StringVarP(&validatePath, "file", "f", "", "config file to check (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.Default().SaveToFile(initPath); err != nil {
		return fmt.Errorf("write %s: %w", initPath, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Wrote %s\n", initPath)
	fmt.Fprintf(out, "Next: rulebook -c %s signup --name <name> --email <email> --capital <amount>\n", initPath)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromFile(validatePath)
	if err != nil {
		return fmt.Errorf("%s: %w", validatePath, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ %s is valid\n", validatePath)
	fmt.Fprintf(out, "  journal  %s\n", c.Journal.DBPath)
	fmt.Fprintf(out, "  weekly   %.2f\n", c.Goals.WeeklyGoal)
	fmt.Fprintf(out, "  lifetime %.2f\n", c.Goals.LifetimeTarget)
	if c.User.Email != "" {
		fmt.Fprintf(out, "  profile  %s\n", c.User.Email)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
