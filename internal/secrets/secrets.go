// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads the Telegram credentials and the notification token
// from the .secrets/ directory, one file per secret named after its key.
// The values only fill configuration keys left empty by the config file
// and the environment.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Known secret file names.
const (
	TelegramAPIID   = "telegram-api-id"
	TelegramAPIHash = "telegram-api-hash"
	NotifyBotToken  = "notify-bot-token"
)

// configKeys maps a secret file name to the configuration key it fills.
var configKeys = map[string]string{
	TelegramAPIID:   "telegram.api_id",
	TelegramAPIHash: "telegram.api_hash",
	NotifyBotToken:  "notify.bot_token",
}

// Load returns the trimmed contents of every regular, non-hidden file in
// dir keyed by file name. A missing directory yields an empty map; a file
// that cannot be read is skipped with a warning.
func Load(dir string, log logrus.FieldLogger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warnf("Skipping secret %s: %v", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ConfigValues returns the known secrets keyed by the configuration key
// they fill. Unknown files are ignored.
func ConfigValues(secrets map[string]string) map[string]string {
	out := make(map[string]string)
	for name, value := range secrets {
		if key, ok := configKeys[name]; ok {
			out[key] = value
		}
	}
	return out
}
