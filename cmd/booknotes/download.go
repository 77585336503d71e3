// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/booknotes/internal/metrics"
	"github.com/pdiddy/booknotes/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download <query>",
	Short: "Search the ebook bot and download a book",
	Long: `Download sends the query to the ebook bot, lists the results, selects
one (the first by default) and saves the document the bot sends back into
the download directory. The outcome is printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolP("interactive", "i", false, "choose from the search results")
	downloadCmd.Flags().IntP("select", "s", -1, "pick search result N")
	downloadCmd.Flags().StringP("name", "n", "", "save under this name (extension kept)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	index, _ := cmd.Flags().GetInt("select")
	name, _ := cmd.Flags().GetString("name")

	rec := metrics.New()
	defer writeMetrics(rec)

	start := time.Now()
	path, err := fetch(cmd.Context(), strings.TrimSpace(args[0]), selection(interactive, index), name, rec)
	rec.Observe(metrics.StageDownload, start, err)
	if err != nil {
		return err
	}

	res := types.DownloadResult{Success: true, File: path}
	if info, err := os.Stat(path); err == nil {
		res.Size = info.Size()
		rec.AddBytes(res.Size)
	}
	return printResult(os.Stdout, res)
}
