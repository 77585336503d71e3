// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/booknotes/internal/acquire"
	"github.com/pdiddy/booknotes/internal/container"
	"github.com/pdiddy/booknotes/internal/convert"
	"github.com/pdiddy/booknotes/internal/executil"
	"github.com/pdiddy/booknotes/internal/library"
	"github.com/pdiddy/booknotes/internal/metrics"
	"github.com/pdiddy/booknotes/internal/notify"
	"github.com/pdiddy/booknotes/internal/pipeline"
	"github.com/pdiddy/booknotes/internal/prompt"
	"github.com/pdiddy/booknotes/internal/telegram"
	"github.com/pdiddy/booknotes/internal/upload"
	"github.com/pdiddy/booknotes/pkg/types"
)

var _ acquire.Messenger = (*telegram.Chat)(nil)

// resultMarker precedes the result JSON on stdout.
const resultMarker = "--- RESULT JSON ---"

// newConverter builds the configured conversion backend.
func newConverter(ctx context.Context, c types.ConvertConfig, runner executil.Runner) (convert.Converter, error) {
	if c.Backend == types.BackendContainer {
		rt, err := container.DetectRuntime(ctx, runner)
		if err != nil {
			return nil, err
		}
		return convert.NewContainer(rt, c.Image, c.Tool), nil
	}
	return convert.NewCalibre(c.Tool, runner), nil
}

// fetch searches the bot for query and downloads the selected record. The
// search step is timed into rec.
func fetch(ctx context.Context, query string, sel acquire.Selection, customName string, rec *metrics.Recorder) (string, error) {
	var p acquire.Prompter
	if sel.Mode == acquire.SelectInteractive {
		p = prompt.NewOnDemand(os.Stdin, os.Stderr)
	}

	var path string
	err := telegram.Dial(ctx, cfg.Telegram, log, func(ctx context.Context, chat *telegram.Chat) error {
		a := acquire.New(chat, acquire.Options{
			Search:   cfg.Search,
			Download: cfg.Download,
			Prompter: p,
			Progress: progressWriter(),
			Metrics:  rec,
		}, log)
		var err error
		path, err = a.SearchAndDownload(ctx, query, sel, customName)
		return err
	})
	return path, err
}

// progressWriter returns stderr when it is a terminal, nil otherwise.
func progressWriter() io.Writer {
	info, err := os.Stderr.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return nil
	}
	return os.Stderr
}

// newPipeline wires the pipeline from cfg. The returned cleanup closes the
// library. A converter that cannot be set up fails the pre-flight unless
// the source is a local PDF.
func newPipeline(ctx context.Context, rec *metrics.Recorder) (*pipeline.Pipeline, func()) {
	runner := executil.OS{}
	conv, err := newConverter(ctx, cfg.Convert, runner)
	if err != nil {
		conv = convert.Unavailable{Err: err}
	}

	deps := pipeline.Deps{
		Acquire: func(ctx context.Context, query string, sel acquire.Selection) (string, error) {
			return fetch(ctx, query, sel, "", rec)
		},
		Converter: conv,
		Uploader:  upload.New(cfg.Upload, runner, log),
		Metrics:   rec,
		Log:       log,
	}

	cleanup := func() {}
	if cfg.LibraryDB != "" {
		store, err := library.NewStore(cfg.LibraryDB)
		if err != nil {
			log.Warnf("Library unavailable: %v", err)
		} else {
			deps.Library = store
			cleanup = func() { store.Close() }
		}
	}

	if cfg.Notify.Enabled() {
		n, err := notify.New(cfg.Notify)
		if err != nil {
			log.Warnf("Notifications disabled: %v", err)
		} else {
			deps.Notifier = n
		}
	}

	return pipeline.New(deps, pipeline.Options{
		TempDir:   cfg.Convert.TempDir,
		OutputDir: cfg.OutputDir,
	}), cleanup
}

// writeMetrics dumps rec to the configured textfile, if any.
func writeMetrics(rec *metrics.Recorder) {
	log.Debugf("Stage outcomes: %v", rec.Snapshot())
	if cfg.MetricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn(err)
	}
}

// printJSON writes v as indented JSON without HTML escaping.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// printResult writes the result marker followed by v as JSON.
func printResult(w io.Writer, v any) error {
	if _, err := fmt.Fprintln(w, resultMarker); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return printJSON(w, v)
}

// selection maps the -i and -s flags to a Selection. An explicit index
// wins over interactive mode.
func selection(interactive bool, index int) acquire.Selection {
	switch {
	case index >= 0:
		return acquire.Selection{Mode: acquire.SelectIndex, Index: index}
	case interactive:
		return acquire.Selection{Mode: acquire.SelectInteractive}
	default:
		return acquire.Selection{Mode: acquire.SelectAuto}
	}
}
