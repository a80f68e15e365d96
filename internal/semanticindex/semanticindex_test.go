package semanticindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/types"
	"github.com/theodags/mantic/internal/version"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	idx.ScannedAt = time.Now()
	idx.Files["a.ts"] = types.FileEntry{Path: "a.ts"}

	require.NoError(t, Save(dir, idx))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, 1, len(loaded.Files))
}

func TestLoad_MissingFileReturnsNil(t *testing.T) {
	dir := t.TempDir()
	idx, err := Load(dir)
	require.NoError(t, err)
	require.Nil(t, idx)
}

func TestLoad_VersionMismatchInvalidates(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	idx.ScannedAt = time.Now()
	idx.Version = "stale-version"
	require.NoError(t, Save(dir, idx))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestLoad_StaleIndexInvalidates(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	idx.Version = version.Version
	idx.ScannedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, Save(dir, idx))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestCache_GetPutAndEviction(t *testing.T) {
	c := NewCache(2)
	c.Put("a", New("a"))
	c.Put("b", New("b"))
	c.Put("c", New("c"))

	_, ok := c.Get("a")
	require.False(t, ok)
	_, ok = c.Get("b")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache(2)
	c.Put("a", New("a"))
	c.Invalidate("a")
	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestParse_ExtractsExportsImportsAndComponents(t *testing.T) {
	src := `
import React from 'react'
import { useState } from 'react'

export function Button(props) {
  return <div>Click</div>
}

export const Count = 0
`
	entry := Parse("Button.tsx", []byte(src), types.LangTSX)
	require.Empty(t, entry.ParseError)

	var names []string
	for _, e := range entry.Exports {
		names = append(names, e.Name)
	}
	require.Contains(t, names, "Button")
	require.Contains(t, names, "Count")

	require.NotEmpty(t, entry.Imports)
	require.NotEmpty(t, entry.Components)
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestRefresh_ClassifiesAddedModifiedDeleted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "export const a = 1")

	idx := New(dir)
	idx.Files["b.ts"] = types.FileEntry{Path: "b.ts"}

	result := Refresh(context.Background(), dir, idx, []string{"a.ts"}, 10)
	require.Equal(t, 1, result.Added)
	require.Equal(t, 1, result.Deleted)
	require.Contains(t, idx.Files, "a.ts")
	require.NotContains(t, idx.Files, "b.ts")
}

func TestRefresh_MtimeBumpWithUnchangedContentSkipsReparse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "export const a = 1")

	idx := New(dir)
	first := Refresh(context.Background(), dir, idx, []string{"a.ts"}, 10)
	require.Equal(t, 1, first.Added)

	entryBefore := idx.Files["a.ts"]
	require.NotZero(t, entryBefore.FastHash)

	// bump mtime without changing bytes, like a touch or a no-op checkout.
	future := entryBefore.ModTime.Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.ts"), future, future))

	second := Refresh(context.Background(), dir, idx, []string{"a.ts"}, 10)
	require.Equal(t, 0, second.Modified)
	require.Equal(t, entryBefore.FastHash, idx.Files["a.ts"].FastHash)
	require.True(t, idx.Files["a.ts"].ModTime.Equal(future))
}

func TestRefresh_MtimeBumpWithChangedContentReparsesAndUpdatesHash(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "export const a = 1")

	idx := New(dir)
	Refresh(context.Background(), dir, idx, []string{"a.ts"}, 10)
	before := idx.Files["a.ts"].FastHash

	future := idx.Files["a.ts"].ModTime.Add(time.Hour)
	writeFile(t, dir, "a.ts", "export const a = 2")
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.ts"), future, future))

	result := Refresh(context.Background(), dir, idx, []string{"a.ts"}, 10)
	require.Equal(t, 1, result.Modified)
	require.NotEqual(t, before, idx.Files["a.ts"].FastHash)
}
