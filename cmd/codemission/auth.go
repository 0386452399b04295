package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/oauth"
	"github.com/noah-isme/codemission/internal/view"
	"github.com/noah-isme/codemission/internal/viewstate"
)

const oauthWait = 5 * time.Minute

var stdin = bufio.NewReader(os.Stdin)

func newLoginCommand(a *app) *cobra.Command {
	var req dto.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = prompt("Password: ")
			}
			state := viewstate.NewAuthState(a.auth)
			if _, err := state.Login(cmd.Context(), req); err != nil {
				return err
			}
			a.success(fmt.Sprintf("Welcome, %s!", state.User().Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var req dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = prompt("Password: ")
			}
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = prompt("Confirm password: ")
			}
			state := viewstate.NewAuthState(a.auth)
			if _, err := state.Register(cmd.Context(), req); err != nil {
				return err
			}
			a.success(fmt.Sprintf("Account created. Welcome, %s!", state.User().Name))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Name, "name", "", "full name")
	flags.StringVar(&req.Email, "email", "", "account email")
	flags.StringVar(&req.Password, "password", "", "password (prompted when empty)")
	flags.StringVar(&req.ConfirmPassword, "confirm-password", "", "password confirmation (prompted when empty)")
	flags.StringVar(&req.StudentID, "student-id", "", "student identifier")
	flags.StringVar(&req.University, "university", "", "university")
	flags.StringVar(&req.Career, "career", "", "career")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := viewstate.NewAuthState(a.auth).Logout(cmd.Context()); err != nil {
				return err
			}
			a.success("Signed out.")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := viewstate.NewAuthState(a.auth)
			if err := state.Restore(cmd.Context()); err != nil {
				return err
			}
			user := state.User()
			if user == nil {
				return errNotSignedIn
			}
			return a.render(user, func() string { return view.Profile(*user) })
		},
	}
}

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile with analysis totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := a.auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(profile, func() string {
				return view.Profile(profile.User) + "\n" + view.AnalysisList(profile.RecentAnalyses, a.now())
			})
		},
	}

	var name, university, career, studentID string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req dto.ProfileUpdateRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("university") {
				req.University = &university
			}
			if flags.Changed("career") {
				req.Career = &career
			}
			if flags.Changed("student-id") {
				req.StudentID = &studentID
			}

			state := viewstate.NewAuthState(a.auth)
			if err := state.UpdateProfile(cmd.Context(), req); err != nil {
				return err
			}
			user := state.User()
			a.success("Profile updated.")
			return a.render(user, func() string { return view.Profile(*user) })
		},
	}
	update.Flags().StringVar(&name, "name", "", "full name")
	update.Flags().StringVar(&university, "university", "", "university")
	update.Flags().StringVar(&career, "career", "", "career")
	update.Flags().StringVar(&studentID, "student-id", "", "student identifier")

	cmd.AddCommand(update)
	return cmd
}

func newAuthCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Alternative sign-in methods",
	}

	google := &cobra.Command{
		Use:   "google",
		Short: "Sign in with Google through the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), oauthWait)
			defer cancel()

			var user models.User
			receiver := oauth.NewReceiver(a.auth, a.logger)
			listenErr := make(chan error, 1)
			go func() {
				listenErr <- receiver.Listen(ctx, a.cfg.OAuthCallbackAddr)
			}()

			fmt.Fprintf(a.out, "Open this address in your browser to continue:\n\n  %s\n\nWaiting for the sign-in to finish on http://%s%s ...\n",
				a.auth.GoogleAuthURL(), a.cfg.OAuthCallbackAddr, oauth.CallbackPath)

			select {
			case err := <-listenErr:
				if err == nil {
					err = ctx.Err()
				}
				return err
			case result := <-receiver.Results():
				if result.Err != nil {
					return result.Err
				}
				user = result.User
			case <-ctx.Done():
				return &api.Error{Kind: api.KindTimeout, Message: "Timed out waiting for Google sign-in.", Err: ctx.Err()}
			}
			a.success(fmt.Sprintf("Signed in as %s.", user.Email))
			return nil
		},
	}

	cmd.AddCommand(google)
	return cmd
}

func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
