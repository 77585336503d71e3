// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify sends a Bot API message when a book is ready.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pdiddy/booknotes/pkg/types"
)

// Notifier posts results to one chat through a bot.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New connects to the Bot API with cfg.BotToken.
func New(cfg types.NotifyConfig) (*Notifier, error) {
	return NewWithEndpoint(cfg, tgbotapi.APIEndpoint, &http.Client{})
}

// NewWithEndpoint connects through a custom endpoint format and client.
func NewWithEndpoint(cfg types.NotifyConfig, endpoint string, client tgbotapi.HTTPClient) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("notify: bot token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connecting notification bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: cfg.ChatID}, nil
}

// Notify sends the summary of r.
func (n *Notifier) Notify(ctx context.Context, r types.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, Message(r))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}

// Message renders the notification text for r.
func Message(r types.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 %s is ready\n", r.BookName)
	if r.NotebookURL != "" {
		fmt.Fprintf(&b, "%s\n", r.NotebookURL)
	}
	if r.NotebookID != "" {
		fmt.Fprintf(&b, "Notebook ID: %s\n", r.NotebookID)
	}
	return strings.TrimRight(b.String(), "\n")
}
