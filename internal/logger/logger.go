// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger configures the logrus logger used by every stage. Lines
// are printed with a bracketed level tag ("[INFO] Searching: dune"); the
// extra STEP and OK tags mark stage starts and successes.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// TagField overrides the tag derived from the entry level.
const TagField = "tag"

const (
	TagStep = "STEP"
	TagOK   = "OK"
)

// New returns a logger writing tagged lines to w at the given level name
// (debug, info, warn, error). Unknown levels fall back to info.
func New(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&TagFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Logger {
	return New(io.Discard, "panic")
}

// Step logs the start of a stage.
func Step(log logrus.FieldLogger, format string, args ...any) {
	log.WithField(TagField, TagStep).Infof(format, args...)
}

// OK logs a successful stage.
func OK(log logrus.FieldLogger, format string, args ...any) {
	log.WithField(TagField, TagOK).Infof(format, args...)
}

// TagFormatter renders "[TAG] message key=value ...".
type TagFormatter struct{}

// Format implements logrus.Formatter.
func (f *TagFormatter) Format(e *logrus.Entry) ([]byte, error) {
	tag, _ := e.Data[TagField].(string)
	if tag == "" {
		tag = levelTag(e.Level)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s", tag, e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != TagField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelTag(l logrus.Level) string {
	switch l {
	case logrus.WarnLevel:
		return "WARN"
	case logrus.InfoLevel:
		return "INFO"
	default:
		return strings.ToUpper(l.String())
	}
}
