package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context(), true)
		if err != nil {
			return err
		}
		db.Close()
		fmt.Fprintln(cmd.OutOrStdout(), good("schema applied"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
