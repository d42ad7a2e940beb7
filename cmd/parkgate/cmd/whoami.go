package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	parkgate "github.com/zg04ckpt/parkgate"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Resolve the current session and print the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		session, err := a.session.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		if session.State != parkgate.StateAuthenticated || session.User == nil {
			fmt.Println("Not signed in.")
			return nil
		}

		u := session.User
		fmt.Printf("%s\t%s\t%s\n", u.ID, u.Email, u.Role)
		if home, ok := a.session.Policy().Home(string(u.Role)); ok {
			fmt.Printf("home route: %s\n", home)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
