// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Info("Searching: dune")
	Step(log, "Converting %s -> PDF", ".epub")
	OK(log, "Converted: %s", "temp/Dune.pdf")
	log.Warn("Notebook already exists")
	log.WithError(errors.New("boom")).Error("Upload failed")
	log.Debug("details")

	want := "[INFO] Searching: dune\n" +
		"[STEP] Converting .epub -> PDF\n" +
		"[OK] Converted: temp/Dune.pdf\n" +
		"[WARN] Notebook already exists\n" +
		"[ERROR] Upload failed error=boom\n" +
		"[DEBUG] details\n"
	assert.Equal(t, want, buf.String())
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown")
	assert.Equal(t, "[WARN] shown\n", buf.String())

	log = New(&buf, "not-a-level")
	assert.Equal(t, "info", log.GetLevel().String())
}
