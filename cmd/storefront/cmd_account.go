package main

import (
	"errors"
	"fmt"

	"kinderstep-backend/internal/client/reconcile"
	"kinderstep-backend/internal/client/session"
	"kinderstep-backend/internal/client/view"
	"kinderstep-backend/internal/domain"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	regFirstName string
	regLastName  string
	regPhone     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and move the device cart and favorites into the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := a.session.Login(cmd.Context(), domain.LoginRequest{Email: authEmail, Password: authPassword})
		if err != nil {
			return err
		}
		reportSignIn(cmd, res)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := a.session.Register(cmd.Context(), domain.RegisterRequest{
			Email:     authEmail,
			Password:  authPassword,
			FirstName: regFirstName,
			LastName:  regLastName,
			Phone:     regPhone,
		})
		if err != nil {
			return err
		}
		reportSignIn(cmd, res)
		return nil
	},
}

func reportSignIn(cmd *cobra.Command, res *session.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, view.OK("Signed in as "+res.User.Email))
	if res.MergeErr != nil {
		fmt.Fprintln(out, view.Error(describe(res.MergeErr)))
		fmt.Fprintln(out, "Run \"storefront sync\" to try again.")
	} else {
		reportMerge(cmd, res.Merge)
	}
	printBadges(cmd)
}

func reportMerge(cmd *cobra.Command, r *reconcile.Report) {
	if r == nil {
		return
	}
	out := cmd.OutOrStdout()
	if r.CartLines > 0 {
		fmt.Fprintf(out, "Moved %d cart line(s) into your account\n", r.CartLines)
	}
	for _, s := range r.CartSkipped {
		fmt.Fprintf(out, "  skipped %s size %s: %s\n", s.ArticleNumber, s.Size, s.Reason)
	}
	if r.FavoritesSent > 0 {
		fmt.Fprintf(out, "Moved %d favorite(s) into your account\n", r.FavoritesSent)
	}
	if r.LinkedOrders > 0 {
		fmt.Fprintf(out, "Linked %d earlier order(s) to your account\n", r.LinkedOrders)
	}
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out on this device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := a.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("Signed out"))
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Retry moving the device cart and favorites into the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := a.session.Sync(cmd.Context())
		var rerr *reconcile.Error
		if err != nil && !errors.As(err, &rerr) {
			return err
		}
		reportMerge(cmd, report)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("Device state is in sync"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who is signed in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		id, ok := a.creds.Identity()
		if !ok {
			fmt.Fprintln(out, "Not signed in (guest)")
		} else {
			fmt.Fprintf(out, "%s (%s), session valid until %s\n", id.Email, id.Role, id.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		printBadges(cmd)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Email")
		c.Flags().StringVar(&authPassword, "password", "", "Password")
		c.MarkFlagRequired("email")
		c.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&regFirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&regLastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&regPhone, "phone", "", "Phone")
}
