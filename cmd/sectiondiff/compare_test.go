// ABOUTME: Tests for CLI flag merging and heading file parsing.
// ABOUTME: Exercises compareOptions and readHeadings without touching the network.
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/sectiondiff/internal/align"
	"github.com/2389-research/sectiondiff/internal/config"
)

func newFlagCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addCompareFlags(cmd)
	prev := globalConfig
	globalConfig = config.Default()
	t.Cleanup(func() { globalConfig = prev })
	return cmd
}

func TestCompareOptions_Defaults(t *testing.T) {
	cmd := newFlagCommand(t)

	opts, err := compareOptions(cmd)
	require.NoError(t, err)
	assert.Nil(t, opts.Threshold)
	assert.Equal(t, align.ModeGreedy, opts.Mode)
	assert.False(t, opts.Normalize)
	assert.InDelta(t, align.RawThreshold, opts.EffectiveThreshold(), 1e-9)
}

func TestCompareOptions_FlagsOverride(t *testing.T) {
	cmd := newFlagCommand(t)
	require.NoError(t, cmd.Flags().Set("threshold", "0.5"))
	require.NoError(t, cmd.Flags().Set("normalize", "true"))
	require.NoError(t, cmd.Flags().Set("one-to-one", "true"))
	require.NoError(t, cmd.Flags().Set("stopword", "nrl"))

	opts, err := compareOptions(cmd)
	require.NoError(t, err)
	require.NotNil(t, opts.Threshold)
	assert.InDelta(t, 0.5, *opts.Threshold, 1e-9)
	assert.True(t, opts.Normalize)
	assert.Equal(t, align.ModeOneToOne, opts.Mode)
	assert.Contains(t, opts.Stopwords, "nrl")
}

func TestCompareOptions_RejectsBadThreshold(t *testing.T) {
	cmd := newFlagCommand(t)
	require.NoError(t, cmd.Flags().Set("threshold", "1.5"))

	_, err := compareOptions(cmd)
	assert.ErrorIs(t, err, align.ErrInvalidThreshold)
}

func TestReadHeadings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("Privacy Policy\n\n  Cookies  \nYour Rights\n"), 0o600))

	got, err := readHeadings(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Privacy Policy", "Cookies", "Your Rights"}, got)
}

func TestReadHeadings_Stdin(t *testing.T) {
	got, err := readHeadings("-", strings.NewReader("one\ntwo\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestReadHeadings_MissingFile(t *testing.T) {
	_, err := readHeadings(filepath.Join(t.TempDir(), "nope.txt"), nil)
	assert.Error(t, err)
}
