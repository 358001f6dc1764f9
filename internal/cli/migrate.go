package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/majorcompass-backend/internal/app"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			dbs, err := app.OpenDatabase(log, app.LoadConfig(log))
			if err != nil {
				return err
			}
			defer dbs.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", dbs.Driver())
			return nil
		},
	}
}
