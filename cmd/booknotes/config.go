// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/booknotes/internal/secrets"
	"github.com/pdiddy/booknotes/pkg/types"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configure(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configure points v at the config file, sets defaults and enables
// BOOKNOTES_* environment overrides.
func configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("booknotes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "booknotes"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("BOOKNOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.api_id", 0)
	v.SetDefault("telegram.api_hash", "")
	v.SetDefault("telegram.bot", "zlaboratory_bot")
	v.SetDefault("telegram.session_dir", filepath.Join("data", "session"))
	v.SetDefault("telegram.session_key", "")
	v.SetDefault("telegram.proxy", "")

	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.poll_interval", 5*time.Second)

	v.SetDefault("download.dir", "downloads")
	v.SetDefault("download.timeout", 120*time.Second)
	v.SetDefault("download.poll_interval", 3*time.Second)

	v.SetDefault("convert.backend", string(types.BackendCalibre))
	v.SetDefault("convert.tool", "ebook-convert")
	v.SetDefault("convert.image", "booknotes/calibre:latest")
	v.SetDefault("convert.temp_dir", "temp")

	v.SetDefault("upload.skill_dir", filepath.Join("~", ".claude", "skills", "notebooklm"))
	v.SetDefault("upload.python", "")
	v.SetDefault("upload.script", "")
	v.SetDefault("upload.args", []string{"--add-to-library", "--show-browser"})

	v.SetDefault("output.dir", "output")
	v.SetDefault("library.db", filepath.Join("data", "library.db"))
	v.SetDefault("metrics.file", "")

	v.SetDefault("notify.bot_token", "")
	v.SetDefault("notify.chat_id", 0)

	v.SetDefault("log.level", "info")
}

// applySecrets fills configuration keys that are still empty from the
// secrets directory. Config files and the environment take precedence.
func applySecrets(v *viper.Viper, s map[string]string) {
	for key, value := range secrets.ConfigValues(s) {
		if v.GetString(key) == "" || v.GetString(key) == "0" {
			v.Set(key, value)
		}
	}
}

// loadConfig decodes v into a Config and resolves derived paths.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding configuration: %w", err)
	}
	c.OutputDir = v.GetString("output.dir")
	c.LibraryDB = v.GetString("library.db")
	c.MetricsFile = v.GetString("metrics.file")

	switch c.Convert.Backend {
	case types.BackendCalibre, types.BackendContainer:
	default:
		return c, fmt.Errorf("unknown convert.backend %q (want %s or %s)",
			c.Convert.Backend, types.BackendCalibre, types.BackendContainer)
	}

	c.Telegram.SessionKey = expandHome(c.Telegram.SessionKey)
	c.Upload.SkillDir = expandHome(c.Upload.SkillDir)
	if c.Upload.Python == "" {
		c.Upload.Python = venvPython(c.Upload.SkillDir)
	}
	if c.Upload.Script == "" {
		c.Upload.Script = filepath.Join(c.Upload.SkillDir, "scripts", "upload_file.py")
	}
	c.Upload.Python = expandHome(c.Upload.Python)
	c.Upload.Script = expandHome(c.Upload.Script)
	return c, nil
}

func venvPython(skillDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(skillDir, ".venv", "Scripts", "python.exe")
	}
	return filepath.Join(skillDir, ".venv", "bin", "python")
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
