// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/booknotes/pkg/types"
)

// errPollTimeout signals that cfg.Timeout elapsed without a match.
var errPollTimeout = errors.New("poll timeout")

const defaultPollInterval = time.Second

// poll reads the latest messages every cfg.PollInterval until match
// returns true or cfg.Timeout elapses. The first read happens one interval
// after the call so the bot has time to answer. When the interval is longer
// than the timeout the chat is still read once, at the deadline.
// Cancellation of ctx is returned as is; the timeout is reported as
// errPollTimeout.
func (a *Acquirer) poll(ctx context.Context, cfg types.PollConfig, match func([]types.BotMessage) bool) error {
	parent := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	lim := rate.NewLimiter(rate.Every(interval), 1)
	lim.Allow()

	read := func(ctx context.Context) (bool, error) {
		msgs, err := a.chat.Recent(ctx, recentLimit)
		if err != nil {
			return false, err
		}
		return match(msgs), nil
	}

	for reads := 0; ; reads++ {
		if err := lim.Wait(ctx); err != nil {
			if parent.Err() != nil {
				return parent.Err()
			}
			if reads > 0 {
				return errPollTimeout
			}
			<-ctx.Done()
			if parent.Err() != nil {
				return parent.Err()
			}
			ok, err := read(parent)
			if err != nil {
				return fmt.Errorf("reading replies: %w", err)
			}
			if !ok {
				return errPollTimeout
			}
			return nil
		}

		ok, err := read(ctx)
		if err != nil {
			if parent.Err() != nil {
				return parent.Err()
			}
			if ctx.Err() != nil {
				return errPollTimeout
			}
			return fmt.Errorf("reading replies: %w", err)
		}
		if ok {
			return nil
		}
	}
}
