package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/bizdesk/internal/bootstrap"
	"github.com/dropDatabas3/bizdesk/internal/http/server"
	"github.com/dropDatabas3/bizdesk/internal/store"
)

func newAdminCmd(o *rootOpts) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}

	var email, name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account (password from BIZDESK_ADMIN_PASSWORD or prompt)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			st, err := store.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			policy, err := server.PolicyFromConfig(cfg)
			if err != nil {
				return err
			}

			pass := os.Getenv("BIZDESK_ADMIN_PASSWORD")
			if pass == "" {
				if pass, err = bootstrap.PromptPassword(os.Stdin, cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			u, err := bootstrap.CreateAdmin(ctx, bootstrap.AdminConfig{
				Users:    st.Users,
				Policy:   policy,
				Email:    email,
				Name:     name,
				Password: pass,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin created: id=%s email=%s\n", u.ID, u.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "admin email")
	create.Flags().StringVar(&name, "name", "", "display name")
	_ = create.MarkFlagRequired("email")

	admin.AddCommand(create)
	return admin
}
