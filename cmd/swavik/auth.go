// ABOUTME: Account commands: signup, login, logout, and whoami
// ABOUTME: Passwords are read without echo when stdin is a terminal

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/2389/swavik-portal/internal/auth"
)

func newSignupCmd(flags *rootFlags) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			if err := a.directory.SignUp(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			return startSession(cmd, a, args[0], "Account created")
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			if err := a.directory.Login(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			return startSession(cmd, a, args[0], "Signed in")
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func startSession(cmd *cobra.Command, a *app, username, verb string) error {
	username = strings.TrimSpace(username)
	if _, err := a.sessions.Start(cmd.Context(), username); err != nil {
		return err
	}
	green := color.New(color.FgGreen)
	green.Fprint(a.out, "✓ ")
	fmt.Fprintf(a.out, "%s as %s\n", verb, username)
	return nil
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.sessions.End(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		}),
	}
}

func newWhoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			username, _, err := a.sessions.Current(cmd.Context())
			if errors.Is(err, auth.ErrNotSignedIn) || errors.Is(err, auth.ErrExpiredToken) {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, username)
			return nil
		}),
	}
}

// readPassword returns flagValue when set, otherwise prompts on stdin.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	in := cmd.InOrStdin()
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
