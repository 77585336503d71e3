// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/booknotes/internal/logger"
	"github.com/pdiddy/booknotes/pkg/types"
)

// Account identifies the logged-in user.
type Account struct {
	FirstName string
	Username  string
}

func (a Account) String() string {
	if a.Username == "" {
		return a.FirstName
	}
	return fmt.Sprintf("%s (@%s)", a.FirstName, a.Username)
}

func accountOf(u *tg.User) Account {
	if u == nil {
		return Account{}
	}
	return Account{FirstName: u.FirstName, Username: u.Username}
}

// Prompter reads the login answers from the user.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Password(prompt string) (string, error)
}

// Status reports the account of the stored session, or ErrUnauthorized.
func Status(ctx context.Context, cfg types.TelegramConfig) (Account, error) {
	var acct Account
	err := connect(ctx, cfg, func(ctx context.Context, client *telegram.Client) error {
		st, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("checking authorization: %w", err)
		}
		if !st.Authorized {
			return ErrUnauthorized
		}
		acct = accountOf(st.User)
		return nil
	})
	return acct, err
}

// Setup logs in interactively with phone, code and optional 2FA password
// and saves the session. An already authorised session is left as is.
func Setup(ctx context.Context, cfg types.TelegramConfig, p Prompter, log logrus.FieldLogger) (Account, error) {
	var acct Account
	err := connect(ctx, cfg, func(ctx context.Context, client *telegram.Client) error {
		st, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("checking authorization: %w", err)
		}
		if st.Authorized {
			acct = accountOf(st.User)
			logger.OK(log, "Already authenticated as: %s", acct.FirstName)
			return nil
		}

		logger.Step(log, "Starting Telegram login...")
		flow := auth.NewFlow(terminalAuth{prompter: p, log: log}, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("reading account: %w", err)
		}
		acct = accountOf(self)
		return nil
	})
	return acct, err
}

// Logout deletes the session file. It reports whether a session existed.
func Logout(cfg types.TelegramConfig) (bool, error) {
	err := os.Remove(SessionPath(cfg))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting session: %w", err)
	}
	return true, nil
}

// terminalAuth answers the gotd login flow from a Prompter.
type terminalAuth struct {
	prompter Prompter
	log      logrus.FieldLogger
}

var errSignUp = errors.New("this phone number has no Telegram account; sign up with an official app first")

func (a terminalAuth) Phone(_ context.Context) (string, error) {
	phone, err := a.prompter.Prompt("Enter your phone number (with country code, e.g., +1xxx): ")
	return strings.TrimSpace(phone), err
}

func (a terminalAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	a.log.Info("Verification code sent")
	code, err := a.prompter.Prompt("Enter the verification code: ")
	return strings.TrimSpace(code), err
}

func (a terminalAuth) Password(_ context.Context) (string, error) {
	a.log.Info("Two-factor authentication enabled")
	return a.prompter.Password("Enter your 2FA password: ")
}

func (a terminalAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return errSignUp
}

func (a terminalAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errSignUp
}
