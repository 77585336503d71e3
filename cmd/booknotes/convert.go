// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/booknotes/internal/convert"
	"github.com/pdiddy/booknotes/internal/executil"
	"github.com/pdiddy/booknotes/internal/metrics"
	"github.com/pdiddy/booknotes/internal/naming"
	"github.com/pdiddy/booknotes/internal/pipeline"
	"github.com/pdiddy/booknotes/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert an ebook to PDF",
	Long: `Convert normalises an ebook to PDF with the configured backend: the
local ebook-convert binary or the same tool inside a container image. PDF
input is copied. The PDF is written to the temp directory and its path is
printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("name", "n", "", "output name (default: derived from the file name)")
	convertCmd.Flags().String("backend", "", "conversion backend: calibre or container (default from config)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	in := args[0]
	name, _ := cmd.Flags().GetString("name")
	c := cfg.Convert
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		c.Backend = types.ConversionBackend(backend)
	}
	if c.Backend != types.BackendCalibre && c.Backend != types.BackendContainer {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("%w: %s", pipeline.ErrFileNotFound, in)
	}
	if ext := strings.ToLower(filepath.Ext(in)); !slices.Contains(pipeline.SupportedExtensions, ext) {
		return fmt.Errorf("%w: %q", pipeline.ErrUnsupportedFormat, filepath.Ext(in))
	}
	if name == "" {
		name = naming.BookName(in)
	}

	var conv convert.Converter = convert.Unavailable{}
	if !convert.IsPDF(in) {
		var err error
		if conv, err = newConverter(cmd.Context(), c, executil.OS{}); err != nil {
			return err
		}
		if err := conv.Check(cmd.Context()); err != nil {
			return err
		}
	}

	rec := metrics.New()
	defer writeMetrics(rec)

	start := time.Now()
	out, err := convert.ToPDF(cmd.Context(), conv, in, name, c.TempDir, log)
	rec.Observe(metrics.StageConvert, start, err)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
