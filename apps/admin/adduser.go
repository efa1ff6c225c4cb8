package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var email, phone string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a learner, or reactivate an existing one with a new password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireEmail(cmd, email); err != nil {
				return err
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			usr, err := cli.addUser(cmd.Context(), email, phone, pwd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s (%s) is active\n", usr.Email, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The learner's email. The password will be prompted next.")
	cmd.Flags().StringVar(&phone, "phone", "", "Optional phone number")
	return cmd
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, email, phone, pwd string) (user.User, error) {
	nu := user.NewUser{Email: email, Phone: phone, Password: pwd}
	if err := nu.Validate(cli.validate); err != nil {
		return user.User{}, err
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, nu.Email)
	if err != nil {
		if err != user.ErrNotFound {
			return user.User{}, err
		}
		return cli.usrSvc.Create(ctx, nu)
	}

	if usr, err = cli.usrSvc.SetPassword(ctx, usr, nu.Password); err != nil {
		return user.User{}, err
	}
	return cli.usrSvc.SetActive(ctx, usr, true)
}
