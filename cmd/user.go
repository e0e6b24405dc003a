/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/mobilecollector/backoffice/config"
	"github.com/mobilecollector/backoffice/internal/db"
	"github.com/mobilecollector/backoffice/internal/logging"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/mobilecollector/backoffice/internal/store"
	"github.com/mobilecollector/backoffice/types"
	"github.com/spf13/cobra"
)

var newUser services.NewUserInput

// userCmd groups account maintenance commands.
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage back-office accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account, e.g. the first SUPERADMIN",
	Long: `Creates an account directly in the database. Usage:

	backoffice user create --username root --email root@bank.co.id \
		--full-name "Super Admin" --password secret --role SUPERADMIN
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := logging.Setup(cfg.LogLevel, cfg.Env)

		sqlDB, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer sqlDB.Close()

		gormDB, err := db.NewGorm(sqlDB, logger)
		if err != nil {
			return fmt.Errorf("open gorm: %w", err)
		}

		users := services.NewUserService(store.NewUserRepository(gormDB))
		user, err := users.Create(cmd.Context(), newUser)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (id=%s)\n", user.Role, user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	flags := userCreateCmd.Flags()
	flags.StringVar(&newUser.Username, "username", "", "login username")
	flags.StringVar(&newUser.Email, "email", "", "login email")
	flags.StringVar(&newUser.FullName, "full-name", "", "display name")
	flags.StringVar(&newUser.Password, "password", "", "plain password, stored as a bcrypt hash")
	flags.StringVar(&newUser.Role, "role", string(types.RoleSuperAdmin), "one of SUPERADMIN, ADMIN, MARKETING, TELLER")
	flags.StringVar(&newUser.AccessToken, "access-token", "", "office code for TELLER accounts")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}
