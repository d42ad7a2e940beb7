package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	parkgate "github.com/zg04ckpt/parkgate"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll active parking sessions until interrupted",
	Long: `Polls the active parking sessions endpoint through the coordinated
transport. A 401 from the backend invalidates the session and surfaces a
navigation intent in the log; repeated failures inside the coalescing window
collapse into a single episode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		session, err := a.session.Bootstrap(ctx)
		if err != nil {
			return err
		}
		if session.State != parkgate.StateAuthenticated {
			return errors.New("not signed in; run login first")
		}

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		for {
			active, err := a.backend.ActiveParkingSessions(ctx)
			switch {
			case err == nil:
				fmt.Printf("%s\tactive sessions: %d\n", time.Now().Format(time.TimeOnly), len(active))
			case errors.Is(err, parkgate.ErrUnauthorized):
				return errors.New("session invalidated by the backend")
			default:
				a.log.Warn("poll failed", "error", err.Error())
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 5*time.Second, "polling interval")
	rootCmd.AddCommand(watchCmd)
}
