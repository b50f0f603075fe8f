package cmd

import (
	"github.com/spf13/cobra"

	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer closeDB(db)

		if err := repository.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("migration finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
