// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/booknotes/internal/logger"
	"github.com/pdiddy/booknotes/internal/prompt"
	"github.com/pdiddy/booknotes/internal/sealed"
	"github.com/pdiddy/booknotes/internal/telegram"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Telegram session",
	Long: `Auth manages the Telegram user session used to talk to the ebook bot.
Run "auth setup" once; later runs reuse the saved session.`,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the saved session is logged in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := telegram.Status(cmd.Context(), cfg.Telegram)
		if errors.Is(err, telegram.ErrUnauthorized) {
			log.Warn("Not authenticated. Run: booknotes auth setup")
			return err
		}
		if err != nil {
			return err
		}
		logger.OK(log, "Authenticated as: %s", acct)
		return nil
	},
}

var authSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Log in to Telegram and save the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := prompt.NewOnDemand(os.Stdin, os.Stderr)
		acct, err := telegram.Setup(cmd.Context(), cfg.Telegram, p, log)
		if err != nil {
			return err
		}
		logger.OK(log, "Login successful! Welcome, %s", acct.FirstName)
		log.Infof("Session saved to: %s", telegram.SessionPath(cfg.Telegram))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		existed, err := telegram.Logout(cfg.Telegram)
		if err != nil {
			return err
		}
		if existed {
			logger.OK(log, "Session deleted")
		} else {
			log.Warn("No session found")
		}
		return nil
	},
}

var authKeygenCmd = &cobra.Command{
	Use:   "keygen [path]",
	Short: "Create an age identity for encrypting the session",
	Long: `Keygen writes a new age X25519 identity. Point telegram.session_key at
it to keep the Telegram session encrypted at rest. Existing files are never
overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Telegram.SessionKey
		if len(args) == 1 {
			path = expandHome(args[0])
		}
		if path == "" {
			path = filepath.Join(cfg.Telegram.SessionDir, "session.key")
		}

		id, err := sealed.GenerateIdentity(path)
		if err != nil {
			return err
		}
		logger.OK(log, "Identity written to: %s", path)
		fmt.Println(id.Recipient().String())
		if cfg.Telegram.SessionKey != path {
			log.Infof("Set telegram.session_key to %s to encrypt the session", path)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd, authSetupCmd, authLogoutCmd, authKeygenCmd)
	rootCmd.AddCommand(authCmd)
}
