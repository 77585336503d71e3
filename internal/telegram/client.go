// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telegram is the MTProto user client that talks to the ebook bot.
// A connection is opened once per run: Dial authenticates from the stored
// session, resolves the bot and hands the caller a Chat bound to it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/telegram/message"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"

	"github.com/pdiddy/booknotes/internal/sealed"
	"github.com/pdiddy/booknotes/pkg/types"
)

var (
	ErrMissingCredentials = errors.New("API credentials not configured")
	ErrUnauthorized       = errors.New("not authenticated: run 'booknotes auth setup' first")
	ErrBotNotFound        = errors.New("bot not found")
)

// SessionFile is the session file name inside telegram.session_dir.
const SessionFile = "telegram.session"

// SessionPath returns the session file location for cfg.
func SessionPath(cfg types.TelegramConfig) string {
	return filepath.Join(cfg.SessionDir, SessionFile)
}

// Dial connects with the stored session, resolves cfg.Bot and runs fn with
// a Chat bound to the bot. The connection is closed when fn returns.
func Dial(ctx context.Context, cfg types.TelegramConfig, log logrus.FieldLogger, fn func(ctx context.Context, chat *Chat) error) error {
	return connect(ctx, cfg, func(ctx context.Context, client *telegram.Client) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("checking authorization: %w", err)
		}
		if !status.Authorized {
			return ErrUnauthorized
		}

		api := client.API()
		sender := message.NewSender(api)
		bot := strings.TrimPrefix(cfg.Bot, "@")
		peer, err := sender.Resolve(bot).AsInputPeer(ctx)
		if err != nil {
			return fmt.Errorf("%w: @%s: %v", ErrBotNotFound, bot, err)
		}
		log.WithField("bot", bot).Debug("Resolved bot")

		return fn(ctx, newChat(api, sender, peer))
	})
}

// connect opens a client for cfg and runs fn while it is connected.
func connect(ctx context.Context, cfg types.TelegramConfig, fn func(ctx context.Context, client *telegram.Client) error) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	return client.Run(ctx, func(ctx context.Context) error {
		return fn(ctx, client)
	})
}

func newClient(cfg types.TelegramConfig) (*telegram.Client, error) {
	if !cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}

	storage, err := SessionStorage(cfg)
	if err != nil {
		return nil, err
	}
	opts := telegram.Options{SessionStorage: storage}

	if cfg.Proxy != "" {
		dial, err := proxyDialer(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		opts.Resolver = dcs.Plain(dcs.PlainOptions{Dial: dial})
	}
	return telegram.NewClient(cfg.APIID, cfg.APIHash, opts), nil
}

// SessionStorage returns the session store for cfg: an age-sealed file when
// a session key is configured, a plain file otherwise. The session
// directory is created if needed.
func SessionStorage(cfg types.TelegramConfig) (session.Storage, error) {
	if err := os.MkdirAll(cfg.SessionDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory %s: %w", cfg.SessionDir, err)
	}
	path := SessionPath(cfg)
	if cfg.SessionKey != "" {
		s, err := sealed.Open(path, cfg.SessionKey)
		if err != nil {
			return nil, fmt.Errorf("opening sealed session: %w", err)
		}
		return s, nil
	}
	return &session.FileStorage{Path: path}, nil
}

// proxyDialer builds a SOCKS5 dial function from "host:port" or a
// socks5:// URL (credentials allowed in the URL).
func proxyDialer(addr string) (dcs.DialFunc, error) {
	if !strings.Contains(addr, "://") {
		addr = "socks5://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy %q: %w", addr, err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q has no host", addr)
	}

	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("creating proxy dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("proxy dialer for %q does not support contexts", addr)
	}
	return cd.DialContext, nil
}
