// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/booknotes/internal/metrics"
	"github.com/pdiddy/booknotes/internal/pipeline"
	"github.com/pdiddy/booknotes/pkg/types"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare [query]",
	Short: "Download, convert and upload a book",
	Long: `Prepare runs the whole sequence for one book: search the ebook bot for
the query (or use --file), convert the book to PDF and upload it to the
notebook service. The result is printed as JSON after a
"--- RESULT JSON ---" marker.`,
	Example: `  booknotes prepare "deep work"
  booknotes prepare "deep work" -i
  booknotes prepare --file books/deep-work.epub --name "Deep Work"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrepare,
}

func init() {
	prepareCmd.Flags().StringP("file", "f", "", "local ebook file path")
	prepareCmd.Flags().StringP("name", "n", "", "custom book name")
	prepareCmd.Flags().BoolP("interactive", "i", false, "choose from the search results")
	prepareCmd.Flags().IntP("select", "s", -1, "pick search result N")

	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	name, _ := cmd.Flags().GetString("name")
	interactive, _ := cmd.Flags().GetBool("interactive")
	index, _ := cmd.Flags().GetInt("select")

	var query string
	if len(args) > 0 {
		query = strings.TrimSpace(args[0])
	}
	if query == "" && file == "" {
		cmd.Help()
		return fmt.Errorf("please provide either a book title or --file path")
	}

	rec := metrics.New()
	defer writeMetrics(rec)

	p, cleanup := newPipeline(cmd.Context(), rec)
	defer cleanup()

	fmt.Fprintln(os.Stderr, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(os.Stderr, "BookToNotes - Preparation")
	fmt.Fprintln(os.Stderr, strings.Repeat("=", 60)+"\n")

	res, err := p.Prepare(cmd.Context(), pipeline.Request{
		Query:     query,
		File:      file,
		Name:      name,
		Selection: selection(interactive, index),
	})
	if err != nil {
		return err
	}

	printSummary(res)
	return printResult(os.Stdout, res)
}

func printSummary(r types.Result) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(os.Stderr, "\n"+rule)
	fmt.Fprintln(os.Stderr, "Preparation Complete!")
	fmt.Fprintln(os.Stderr, rule)
	fmt.Fprintf(os.Stderr, "\nBook Name: %s\n", r.BookName)
	fmt.Fprintf(os.Stderr, "Source File: %s\n", r.SourceFile)
	fmt.Fprintf(os.Stderr, "PDF File: %s\n", r.PDFFile)
	fmt.Fprintf(os.Stderr, "Notebook ID: %s\n", r.NotebookID)
	if r.NotebookURL != "" {
		fmt.Fprintf(os.Stderr, "Notebook URL: %s\n", r.NotebookURL)
	}
	fmt.Fprintf(os.Stderr, "Output Directory: %s\n", r.OutputDir)
	fmt.Fprintln(os.Stderr, rule+"\n")
}
