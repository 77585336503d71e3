// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the booknotes CLI.
// booknotes finds an ebook through a Telegram search bot, normalises it to
// PDF and hands it to the notebook upload tool.
package main

import (
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/booknotes/internal/logger"
	"github.com/pdiddy/booknotes/internal/secrets"
	"github.com/pdiddy/booknotes/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

var (
	// log is replaced once flags and config are read.
	log = logger.New(os.Stderr, "info")

	// cfg is the resolved configuration of the run.
	cfg types.Config
)

// rootCmd is the base command for the booknotes CLI.
var rootCmd = &cobra.Command{
	Use:   "booknotes",
	Short: "Prepare ebooks for analysis in a notebook service",
	Long: `booknotes prepares a book for analysis: it searches an ebook bot on
Telegram, downloads the selected book, converts it to PDF and uploads it
to the notebook service through the external upload tool.

Each stage is also available on its own: download, convert and upload.
Use "booknotes auth setup" once to log in to Telegram.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		log = logger.New(os.Stderr, viper.GetString("log.level"))
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}

		s, err := secrets.Load(secretsDir, log)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debugf("Loaded secrets: %v", keys)
		}
		applySecrets(viper.GetViper(), s)

		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./booknotes.yaml or ~/.config/booknotes/booknotes.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "shorthand for --log-level debug")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
