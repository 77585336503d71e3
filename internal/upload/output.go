// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pdiddy/booknotes/pkg/types"
)

var (
	// ErrNoNotebookURL is returned when the tool output carries no notebook URL.
	ErrNoNotebookURL = errors.New("upload failed: no notebook URL in tool output")

	// ErrAlreadyExists is returned when the service reports the notebook exists.
	ErrAlreadyExists = errors.New("notebook already exists")
)

var (
	notebookURLRe = regexp.MustCompile(`Notebook URL: (https://notebooklm\.google\.com/notebook/[a-zA-Z0-9_-]+)`)
	notebookIDRe  = regexp.MustCompile(`Notebook ID: ([a-zA-Z0-9_-]+)`)
)

const alreadyExistsMarker = "already exists"

// resultSchema is the structured contract a tool may print as a single
// JSON line instead of (or next to) the human-readable lines.
const resultSchema = `{
  "type": "object",
  "required": ["notebook_url"],
  "properties": {
    "notebook_url": {
      "type": "string",
      "pattern": "^https://notebooklm\\.google\\.com/notebook/[A-Za-z0-9_-]+$"
    },
    "notebook_id": {
      "type": "string",
      "pattern": "^[A-Za-z0-9_-]+$"
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(resultSchema)

// ParseOutput extracts the notebook from the tool's combined output. A JSON
// line matching the result contract wins; otherwise the "Notebook URL:" and
// "Notebook ID:" lines are scraped. A missing ID is taken from the URL.
func ParseOutput(output string) (types.Notebook, error) {
	if nb, ok := parseJSONLine(output); ok {
		return withIDFromURL(nb), nil
	}

	m := notebookURLRe.FindStringSubmatch(output)
	if m == nil {
		if strings.Contains(output, alreadyExistsMarker) {
			return types.Notebook{}, ErrAlreadyExists
		}
		return types.Notebook{}, ErrNoNotebookURL
	}
	nb := types.Notebook{URL: m[1]}
	if m := notebookIDRe.FindStringSubmatch(output); m != nil {
		nb.ID = m[1]
	}
	return withIDFromURL(nb), nil
}

// ValidateJSON checks a candidate line against the result contract.
func ValidateJSON(line string) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(line))
	if err != nil {
		return fmt.Errorf("validating upload result: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid upload result: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func parseJSONLine(output string) (types.Notebook, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		if ValidateJSON(line) != nil {
			continue
		}
		var nb types.Notebook
		if err := json.Unmarshal([]byte(line), &nb); err != nil {
			continue
		}
		return nb, true
	}
	return types.Notebook{}, false
}

func withIDFromURL(nb types.Notebook) types.Notebook {
	if nb.ID == "" && nb.URL != "" {
		nb.ID = path.Base(nb.URL)
	}
	return nb
}
