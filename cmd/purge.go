package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/refi-auto/ms-go-accounts/app/repository"
	"github.com/refi-auto/ms-go-accounts/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var purgeRevokedCmd = &cobra.Command{
	Use:   "purge-revoked",
	Short: "Delete denylist entries for tokens that have expired",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := sql.Open("mysql", cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return err
		}

		revokedRepo := repository.NewRevokedTokenRepository(db)
		deleted, err := revokedRepo.DeleteExpired(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("deleted: %d\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeRevokedCmd)
}
