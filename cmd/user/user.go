// Package user implements the user subcommand for account management from
// the command line, mainly to bootstrap the first admin account.
package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/security"
)

// Command creates the user command and its subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(createCommand(settings))
	return cmd
}

func createCommand(settings *conf.Settings) *cobra.Command {
	req := &security.SignupRequest{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long:  "Create a user account directly in the database, bypassing the HTTP API. Use --role admin to bootstrap the first administrator.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.UserID == "" || req.Password == "" {
				return errors.Newf("--id and --password are required").
					Component("cmd").
					Category(errors.CategoryValidation).
					Build()
			}

			ds := datastore.New(settings)
			if ds == nil {
				return errors.Newf("no database output enabled in configuration").
					Component("cmd").
					Category(errors.CategoryConfiguration).
					Build()
			}
			if err := ds.Open(); err != nil {
				return err
			}
			defer func() { _ = ds.Close() }()

			auth := security.NewAuthService(ds, security.NewTokenProvider(settings))
			info, err := auth.Register(req)
			if err != nil {
				return err
			}

			fmt.Printf("created user %s (%s)\n", info.UserID, info.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.UserID, "id", "", "Login ID for the new account")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password for the new account")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Role, "role", "user", "Account role (user or admin)")

	return cmd
}
