package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a profile with a starting capital",
	Long: `Register a new profile. The starting capital seeds the running balance
and can later only be changed after re-entering the password.

Example:
  rulebook signup --name Asha --email asha@example.com --capital 10000`,
	Args: cobra.NoArgs,
	RunE: runSignup,
}

var (
	signupName    string
	signupCapital float64
	signupSave    bool
)

func init() {
	rootCmd.AddCommand(signupCmd)

	signupCmd.Flags().StringVarP(&signupName, "name", "n", "", "display name (required)")
	signupCmd.Flags().Float64Var(&signupCapital, "capital", 0, "starting capital")
	signupCmd.Flags().StringVarP(&password, "password", "p", "", "password (default: $RULEBOOK_PASSWORD or prompt)")
	signupCmd.Flags().BoolVar(&signupSave, "save", true, "remember the email in the config file")
	signupCmd.MarkFlagRequired("name")
}

func runSignup(cmd *cobra.Command, args []string) error {
	if cfg.User.Email == "" {
		return fmt.Errorf("--email is required")
	}
	pw, err := readPassword(cmd)
	if err != nil {
		return err
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	p, err := j.CreateProfile(context.Background(), signupName, cfg.User.Email, pw, signupCapital)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	log.Info().Str("user", p.ID).Str("email", p.Email).Msg("profile created")

	if signupSave {
		cfg.User.Email = p.Email
		if err := cfg.SaveToFile(cfgFile); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Welcome %s, starting capital %.2f\n", p.Name, p.StartingCapital)
	return nil
}
