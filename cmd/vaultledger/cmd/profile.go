package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile with a new master password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Master password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Repeat master password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
		if password == "" {
			return fmt.Errorf("master password must not be empty")
		}

		id, err := service.CreateProfile(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		color.Green("✓ Profile %q created with id %d", args[0], id)
		color.Yellow("The master password cannot be recovered. Losing it means losing access to all encrypted fields.")
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		profiles, err := service.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles yet. Create one with: vaultledger profile create <name>")
			return nil
		}
		for _, p := range profiles {
			fmt.Printf("%4d  %s\n", p.ID, p.Name)
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the master password for a profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := authenticatedPassword(cmd); err != nil {
			return err
		}
		color.Green("✓ Password verified")
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileCreateCmd, profileListCmd)
	rootCmd.AddCommand(profileCmd, loginCmd)
}
