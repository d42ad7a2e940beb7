package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session on the server and clear the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.session.Bootstrap(cmd.Context()); err != nil {
			return err
		}

		if err := a.session.Logout(cmd.Context()); err != nil {
			// Local state is already cleared; the server call is best effort.
			a.log.Warn("server logout failed", "error", err.Error())
		}

		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
