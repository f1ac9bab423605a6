package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func credentialFlags(cmd *cobra.Command, username, password *string) {
	cmd.Flags().StringVarP(username, "username", "u", "", "username")
	cmd.Flags().StringVarP(password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
}

func newRegisterCommand(opts *options) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Args:  cobra.NoArgs,
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.client().Register(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", username)
			return nil
		},
	}
	credentialFlags(cmd, &username, &password)
	return cmd
}

func newLoginCommand(opts *options) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Args:  cobra.NoArgs,
		Short: "Log in and store the session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.client().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := saveSession(opts.sessionFile, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", s.Username)
			return nil
		},
	}
	credentialFlags(cmd, &username, &password)
	return cmd
}

func newRefreshCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Args:  cobra.NoArgs,
		Short: "Get a new access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(opts.sessionFile)
			if err != nil {
				return err
			}
			s, err = opts.client().Refresh(cmd.Context(), s)
			if err != nil {
				return err
			}
			return saveSession(opts.sessionFile, s)
		},
	}
}

func newLogoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Args:  cobra.NoArgs,
		Short: "Revoke the refresh token and forget the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(opts.sessionFile)
			if err != nil {
				return err
			}
			lerr := opts.client().Logout(cmd.Context(), s)
			return errors.Join(lerr, removeSession(opts.sessionFile))
		},
	}
}
