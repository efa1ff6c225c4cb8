package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
)

func (cli *commandLine) premiumCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:       "premium grant|revoke|status",
		Short:     "Manage a learner's premium access",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"grant", "revoke", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEmail(cmd, email); err != nil {
				return err
			}
			return cli.premium(cmd, args[0], email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The learner's email")
	return cmd
}

func (cli *commandLine) premium(cmd *cobra.Command, action, email string) error {
	ctx := cmd.Context()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch action {
	case "grant":
		ent, created, err := cli.entSvc.Grant(ctx, usr.ID, entitlement.SourceAdmin)
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(out, "%s is already premium (%s since %s)\n", usr.Email, ent.Source, ent.GrantedAt.Format("2006-01-02"))
			return nil
		}
		fmt.Fprintf(out, "%s is now premium\n", usr.Email)
	case "revoke":
		if err := cli.entSvc.Revoke(ctx, usr.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is no longer premium\n", usr.Email)
	default:
		ent, err := cli.entSvc.Get(ctx, usr.ID)
		switch err {
		case nil:
			fmt.Fprintf(out, "%s: premium (%s since %s)\n", usr.Email, ent.Source, ent.GrantedAt.Format("2006-01-02"))
		case entitlement.ErrNotFound:
			fmt.Fprintf(out, "%s: free\n", usr.Email)
		default:
			return err
		}
	}
	return nil
}
