// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/booknotes/internal/library"
)

var historyCmd = &cobra.Command{
	Use:   "history [filter]",
	Short: "List prepared books",
	Long: `History lists the books recorded in the library, newest first. The
optional filter matches part of the book name or source file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	opts := library.QueryOptions{Limit: limit}
	if len(args) == 1 {
		opts.Filter = args[0]
	}

	store, err := library.NewStore(cfg.LibraryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	books, err := store.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if asJSON {
		if books == nil {
			return printJSON(os.Stdout, []any{})
		}
		return printJSON(os.Stdout, books)
	}

	if len(books) == 0 {
		fmt.Fprintln(os.Stderr, "No books prepared yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PREPARED\tBOOK\tNOTEBOOK")
	for _, b := range books {
		nb := b.NotebookURL
		if nb == "" {
			nb = b.NotebookID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", humanize.Time(b.PreparedAt), b.BookName, nb)
	}
	return w.Flush()
}
