// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/booknotes/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dune(at time.Time, id string) types.Result {
	return types.Result{
		Success:     true,
		BookName:    "Dune",
		SourceFile:  "downloads/Dune.epub",
		PDFFile:     "temp/Dune.pdf",
		NotebookID:  id,
		NotebookURL: "https://notebooklm.google.com/notebook/" + id,
		OutputDir:   "output",
		PreparedAt:  at,
	}
}

func TestRecordAndLookup(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Lookup(ctx, "Dune")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Record(ctx, dune(base, "old"))
	require.NoError(t, err)
	_, err = s.Record(ctx, dune(base.Add(500*time.Millisecond), "new"))
	require.NoError(t, err)

	nb, err := s.Lookup(ctx, "dune")
	require.NoError(t, err)
	assert.Equal(t, "new", nb.ID)
	assert.Equal(t, "https://notebooklm.google.com/notebook/new", nb.URL)
}

func TestLookupSkipsRowsWithoutURL(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Record(ctx, dune(base, "abc"))
	require.NoError(t, err)
	noURL := dune(base.Add(time.Hour), "dune")
	noURL.NotebookURL = ""
	_, err = s.Record(ctx, noURL)
	require.NoError(t, err)

	nb, err := s.Lookup(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, "abc", nb.ID)
}

func TestRecordSetsTime(t *testing.T) {
	s := testStore(t)
	r, err := s.Record(context.Background(), types.Result{BookName: "Emma"})
	require.NoError(t, err)
	assert.False(t, r.PreparedAt.IsZero())
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	books := []types.Result{
		{BookName: "Dune", SourceFile: "downloads/Dune.epub", PreparedAt: base},
		{BookName: "Emma", SourceFile: "downloads/emma.mobi", PreparedAt: base.Add(time.Minute)},
		{BookName: "100% Go_lang", SourceFile: "x.pdf", PreparedAt: base.Add(2 * time.Minute)},
	}
	for _, b := range books {
		_, err := s.Record(ctx, b)
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{name: "all newest first", opts: QueryOptions{}, want: []string{"100% Go_lang", "Emma", "Dune"}},
		{name: "limit", opts: QueryOptions{Limit: 1}, want: []string{"100% Go_lang"}},
		{name: "filter by name", opts: QueryOptions{Filter: "dun"}, want: []string{"Dune"}},
		{name: "filter by source", opts: QueryOptions{Filter: ".mobi"}, want: []string{"Emma"}},
		{name: "percent is literal", opts: QueryOptions{Filter: "0%"}, want: []string{"100% Go_lang"}},
		{name: "underscore is literal", opts: QueryOptions{Filter: "o_l"}, want: []string{"100% Go_lang"}},
		{name: "no match", opts: QueryOptions{Filter: "zzz"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			var names []string
			for _, r := range got {
				names = append(names, r.BookName)
				assert.True(t, r.Success)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestListRoundTripsFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	_, err := s.Record(ctx, dune(at, "abc"))
	require.NoError(t, err)

	got, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dune(at, "abc"), got[0])
}

func TestWriteManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	r := dune(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), "abc")
	r.BookName = `Dune: Messiah?`

	path, err := WriteManifest(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Dune Messiah.yaml"), path)

	assert.Equal(t, r, readManifest(t, path))
}

func readManifest(t *testing.T, path string) types.Result {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r types.Result
	require.NoError(t, yaml.Unmarshal(data, &r))
	return r
}

func TestWriteManifestEmptyName(t *testing.T) {
	path, err := WriteManifest(t.TempDir(), types.Result{BookName: "???"})
	require.NoError(t, err)
	assert.Equal(t, "book.yaml", filepath.Base(path))
}
