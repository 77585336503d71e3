// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/booknotes/pkg/types"
)

// SelectMode says how a record is picked from the search results.
type SelectMode int

const (
	// SelectAuto picks the first record.
	SelectAuto SelectMode = iota
	// SelectIndex picks Selection.Index.
	SelectIndex
	// SelectInteractive asks the Prompter; an unparsable answer picks 0.
	SelectInteractive
)

// Selection is a record choice.
type Selection struct {
	Mode  SelectMode
	Index int
}

// Select returns the index of the chosen record.
func (a *Acquirer) Select(results []types.SearchResult, sel Selection) (int, error) {
	if len(results) == 0 {
		return 0, ErrNoResults
	}

	var idx int
	switch sel.Mode {
	case SelectAuto:
		a.log.Infof("Auto-selecting first result: %s", results[0].Title)
	case SelectIndex:
		idx = sel.Index
	case SelectInteractive:
		idx = a.ask(len(results))
	}

	if idx < 0 || idx >= len(results) {
		return 0, fmt.Errorf("%w: %d (have %d results)", ErrInvalidIndex, idx, len(results))
	}
	return idx, nil
}

// ask prompts for an index, falling back to 0 on any input problem.
func (a *Acquirer) ask(n int) int {
	if a.opts.Prompter == nil {
		return 0
	}
	answer, err := a.opts.Prompter.Prompt(fmt.Sprintf("Select book number (0-%d): ", n-1))
	if err != nil {
		return 0
	}
	idx, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return 0
	}
	return idx
}
