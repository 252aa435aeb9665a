// ABOUTME: CLI command that discovers an organization's privacy policy URL.
// ABOUTME: Uses SerpAPI; requires SERPAPI_API_KEY or search.api_key.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/sectiondiff/internal/search"
)

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find an organization's privacy policy URL",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	searcher := newSearcher(globalConfig)
	if searcher == nil {
		return errors.New("policy search is not configured: set SERPAPI_API_KEY or search.api_key")
	}

	name := strings.Join(args, " ")
	url, err := searcher.FindPolicyURL(cmd.Context(), name)
	if errors.Is(err, search.ErrNoResult) {
		return fmt.Errorf("no privacy policy found for %q", name)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
