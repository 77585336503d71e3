// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire finds an ebook through the search bot and downloads it.
// The run is a single sequence over one chat: send the query, wait for the
// results reply, pick a record, send its command, wait for the document.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/booknotes/internal/logger"
	"github.com/pdiddy/booknotes/internal/metrics"
	"github.com/pdiddy/booknotes/internal/naming"
	"github.com/pdiddy/booknotes/internal/search"
	"github.com/pdiddy/booknotes/pkg/types"
)

var (
	ErrNoResults       = errors.New("no books found")
	ErrSearchTimeout   = errors.New("search timeout: the bot did not reply")
	ErrDownloadTimeout = errors.New("download timeout")
	ErrInvalidIndex    = errors.New("invalid result index")
)

// recentLimit is how many of the latest chat messages each poll reads.
const recentLimit = 5

// Messenger is a chat with the search bot.
type Messenger interface {
	// SendText sends text to the bot and returns the sent message ID.
	SendText(ctx context.Context, text string) (int, error)

	// Recent returns up to limit of the latest messages, newest first.
	Recent(ctx context.Context, limit int) ([]types.BotMessage, error)

	// Download streams the document attached to message msgID into w.
	Download(ctx context.Context, msgID int, w io.Writer) error
}

// Prompter reads one line of user input.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// Options configures an Acquirer.
type Options struct {
	Search   types.SearchConfig
	Download types.DownloadConfig

	// Prompter answers interactive selections. Required only for
	// SelectInteractive.
	Prompter Prompter

	// Progress receives a progress bar while a document downloads. Nil
	// disables the bar.
	Progress io.Writer

	// Metrics times the search step. Nil disables it.
	Metrics *metrics.Recorder
}

// Acquirer runs the search and download sequence against a Messenger.
type Acquirer struct {
	chat Messenger
	opts Options
	log  logrus.FieldLogger
}

// New creates an Acquirer on chat.
func New(chat Messenger, opts Options, log logrus.FieldLogger) *Acquirer {
	return &Acquirer{chat: chat, opts: opts, log: log}
}

// Search sends query to the bot and waits for a reply that parses to at
// least one record. Replies older than the query are ignored.
func (a *Acquirer) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	logger.Step(a.log, "Searching: %s", query)
	start := time.Now()
	results, err := a.search(ctx, query)
	if a.opts.Metrics != nil {
		a.opts.Metrics.Observe(metrics.StageSearch, start, err)
	}
	if err != nil {
		return nil, err
	}
	a.log.Infof("Found %d books", len(results))
	return results, nil
}

func (a *Acquirer) search(ctx context.Context, query string) ([]types.SearchResult, error) {
	sentID, err := a.chat.SendText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sending query: %w", err)
	}

	var results []types.SearchResult
	replied := false
	err = a.poll(ctx, a.opts.Search.PollConfig, func(msgs []types.BotMessage) bool {
		for _, m := range msgs {
			if !isReply(m, sentID) {
				continue
			}
			replied = true
			if !search.IsResultsMessage(m.Text) {
				continue
			}
			if r := search.Parse(m.Text, a.opts.Search.MaxResults); len(r) > 0 {
				results = r
				return true
			}
		}
		return false
	})
	switch {
	case errors.Is(err, errPollTimeout) && replied:
		a.log.Info("Found 0 books")
		return nil, ErrNoResults
	case errors.Is(err, errPollTimeout):
		return nil, ErrSearchTimeout
	case err != nil:
		return nil, err
	}
	return results, nil
}

// Download sends the record's command and saves the document the bot
// replies with into the download directory. The file keeps its original
// name unless customName is given; either is sanitised. It returns the
// saved path.
func (a *Acquirer) Download(ctx context.Context, r types.SearchResult, customName string) (string, error) {
	logger.Step(a.log, "Downloading: %s", r.Title)

	dir := a.opts.Download.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	sentID, err := a.chat.SendText(ctx, r.Command)
	if err != nil {
		return "", fmt.Errorf("sending command %s: %w", r.Command, err)
	}

	var reply types.BotMessage
	err = a.poll(ctx, a.opts.Download.PollConfig, func(msgs []types.BotMessage) bool {
		for _, m := range msgs {
			if isReply(m, sentID) && m.Document != nil && m.Document.FileName != "" {
				reply = m
				return true
			}
		}
		return false
	})
	if errors.Is(err, errPollTimeout) {
		return "", ErrDownloadTimeout
	}
	if err != nil {
		return "", err
	}

	filename := targetName(reply, customName)
	path := filepath.Join(dir, filename)
	a.log.Infof("Receiving file: %s (%s)", filename, formatSize(reply.Document.Size))

	if err := a.save(ctx, reply, path); err != nil {
		return "", fmt.Errorf("downloading %s: %w", filename, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("downloaded file missing: %w", err)
	}
	logger.OK(a.log, "Downloaded: %s", path)
	a.log.Infof("Size: %s", formatSize(info.Size()))
	return path, nil
}

// SearchAndDownload searches, lists the results, selects one and downloads it.
func (a *Acquirer) SearchAndDownload(ctx context.Context, query string, sel Selection, customName string) (string, error) {
	results, err := a.Search(ctx, query)
	if err != nil {
		return "", err
	}

	a.logResults(results)

	idx, err := a.Select(results, sel)
	if err != nil {
		return "", err
	}
	return a.Download(ctx, results[idx], customName)
}

func (a *Acquirer) logResults(results []types.SearchResult) {
	a.log.Info("Search Results:")
	for i, r := range results {
		a.log.Infof("  [%d] %s", i, r.Title)
		if r.Author != "" {
			a.log.Infof("      Author: %s", r.Author)
		}
		a.log.Infof("      %s | %s | %s", r.Language, r.Format, r.Size)
	}
}

// save streams the document into a temp file next to path and renames it
// into place once complete.
func (a *Acquirer) save(ctx context.Context, m types.BotMessage, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	var w io.Writer = tmp
	if a.opts.Progress != nil {
		bar := progressbar.NewOptions64(m.Document.Size,
			progressbar.OptionSetWriter(a.opts.Progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetDescription(filepath.Base(path)),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(a.opts.Progress) }),
		)
		defer bar.Finish()
		w = io.MultiWriter(tmp, bar)
	}

	dlErr := a.chat.Download(ctx, m.ID, w)
	closeErr := tmp.Close()
	if dlErr != nil {
		os.Remove(tmpPath)
		return dlErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// isReply reports whether m is an incoming message sent after sentID.
// A zero sentID accepts every incoming message.
func isReply(m types.BotMessage, sentID int) bool {
	return !m.Outgoing && m.ID > sentID
}

// targetName picks the local file name for a document reply.
func targetName(m types.BotMessage, customName string) string {
	original := m.Document.FileName
	ext := filepath.Ext(original)

	var name string
	if customName != "" {
		name = naming.WithExtension(naming.SanitizeFilename(customName), ext)
	} else {
		name = naming.SanitizeFilename(original)
	}
	if name == "" || name == ext {
		name = fmt.Sprintf("book-%d%s", m.ID, ext)
	}
	return name
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
