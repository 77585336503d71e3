// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/booknotes/internal/executil"
	"github.com/pdiddy/booknotes/internal/library"
	"github.com/pdiddy/booknotes/internal/metrics"
	"github.com/pdiddy/booknotes/internal/pipeline"
	"github.com/pdiddy/booknotes/internal/upload"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <pdf>",
	Short: "Upload a PDF to the notebook service",
	Long: `Upload runs the external upload tool for a PDF and prints the notebook
it created as JSON. A notebook that already exists is resolved from the
library of prepared books.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringP("name", "n", "", "notebook name (required)")
	uploadCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	pdf := args[0]
	name, _ := cmd.Flags().GetString("name")
	if _, err := os.Stat(pdf); err != nil {
		return fmt.Errorf("%w: %s", pipeline.ErrFileNotFound, pdf)
	}

	up := upload.New(cfg.Upload, executil.OS{}, log)
	if err := up.Check(cmd.Context()); err != nil {
		return err
	}

	rec := metrics.New()
	defer writeMetrics(rec)

	deps := pipeline.Deps{Uploader: up, Metrics: rec, Log: log}
	if cfg.LibraryDB != "" {
		if store, err := library.NewStore(cfg.LibraryDB); err == nil {
			defer store.Close()
			deps.Library = store
		} else {
			log.Warnf("Library unavailable: %v", err)
		}
	}

	start := time.Now()
	nb, err := pipeline.New(deps, pipeline.Options{}).Upload(cmd.Context(), pdf, name)
	rec.Observe(metrics.StageUpload, start, err)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, nb)
}
