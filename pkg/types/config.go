// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TelegramConfig holds the MTProto user-client settings.
type TelegramConfig struct {
	// APIID and APIHash are the application credentials from my.telegram.org.
	APIID   int    `json:"api_id" yaml:"api_id" mapstructure:"api_id"`
	APIHash string `json:"api_hash" yaml:"api_hash" mapstructure:"api_hash"`

	// Bot is the username of the ebook bot, without the leading @.
	Bot string `json:"bot" yaml:"bot" mapstructure:"bot"`

	// SessionDir holds the session file (telegram.session).
	SessionDir string `json:"session_dir" yaml:"session_dir" mapstructure:"session_dir"`

	// SessionKey is an optional age identity file. When set, the session
	// file is stored encrypted to that identity.
	SessionKey string `json:"session_key,omitempty" yaml:"session_key,omitempty" mapstructure:"session_key"`

	// Proxy is an optional SOCKS5 host:port used for the MTProto connection.
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty" mapstructure:"proxy"`
}

// HasCredentials reports whether both API credentials are set.
func (c TelegramConfig) HasCredentials() bool {
	return c.APIID != 0 && c.APIHash != ""
}

// PollConfig bounds a wait for a bot reply.
type PollConfig struct {
	// Timeout is the overall wait before giving up.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// PollInterval is the delay between two reads of the chat history.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`
}

// SearchConfig holds settings for the search step.
type SearchConfig struct {
	PollConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults caps the number of records kept from one reply (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// DownloadConfig holds settings for the download step.
type DownloadConfig struct {
	PollConfig `yaml:",inline" mapstructure:",squash"`

	// Dir is where downloaded ebooks are written.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// ConversionBackend identifies how the converter binary is run.
type ConversionBackend string

const (
	BackendCalibre   ConversionBackend = "calibre"
	BackendContainer ConversionBackend = "container"
)

// ConvertConfig holds settings for the PDF normalisation step.
type ConvertConfig struct {
	// Backend selects the local binary or a container image.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Tool is the converter binary, invoked as <tool> <input> <output>.
	Tool string `json:"tool" yaml:"tool" mapstructure:"tool"`

	// Image is the container image providing Tool (container backend only).
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// TempDir receives the converted PDFs.
	TempDir string `json:"temp_dir" yaml:"temp_dir" mapstructure:"temp_dir"`
}

// UploadConfig holds settings for the external upload tool.
type UploadConfig struct {
	// SkillDir is the upload tool's install directory.
	SkillDir string `json:"skill_dir" yaml:"skill_dir" mapstructure:"skill_dir"`

	// Python is the interpreter that runs Script.
	Python string `json:"python" yaml:"python" mapstructure:"python"`

	// Script is the upload script path.
	Script string `json:"script" yaml:"script" mapstructure:"script"`

	// Args are appended after --file and --name.
	Args []string `json:"args" yaml:"args" mapstructure:"args"`
}

// NotifyConfig holds the optional Bot API notification target.
type NotifyConfig struct {
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty" mapstructure:"bot_token"`
	ChatID   int64  `json:"chat_id,omitempty" yaml:"chat_id,omitempty" mapstructure:"chat_id"`
}

// Enabled reports whether a notification target is configured.
func (c NotifyConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// Config groups all settings of a run.
type Config struct {
	Telegram TelegramConfig `json:"telegram" yaml:"telegram" mapstructure:"telegram"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Download DownloadConfig `json:"download" yaml:"download" mapstructure:"download"`
	Convert  ConvertConfig  `json:"convert" yaml:"convert" mapstructure:"convert"`
	Upload   UploadConfig   `json:"upload" yaml:"upload" mapstructure:"upload"`
	Notify   NotifyConfig   `json:"notify" yaml:"notify" mapstructure:"notify"`

	// OutputDir receives one YAML manifest per prepared book.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// LibraryDB is the SQLite file recording prepared books.
	LibraryDB string `json:"library_db" yaml:"library_db" mapstructure:"library_db"`

	// MetricsFile is an optional Prometheus textfile written after each run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}
