// ABOUTME: CLI commands that compare two documents or two heading lists.
// ABOUTME: Renders a table to stdout and optionally writes the report as CSV.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/sectiondiff/internal/align"
	"github.com/2389-research/sectiondiff/internal/compare"
	"github.com/2389-research/sectiondiff/internal/models"
	"github.com/2389-research/sectiondiff/internal/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare <urlA> <urlB>",
	Short: "Compare the headings of two web pages",
	Long: `Fetch two pages, extract their headings (h1-h6 and bold text), and align them.

With --find, the arguments are organization names and their privacy policy
URLs are discovered through SerpAPI first.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var compareHeadingsCmd = &cobra.Command{
	Use:   "compare-headings",
	Short: "Compare two heading lists read from files",
	Long:  "Align two files of headings, one heading per line. Use - to read a file from stdin.",
	Args:  cobra.NoArgs,
	RunE:  runCompareHeadings,
}

// Flags
var (
	compareThreshold float64
	compareNormalize bool
	compareOneToOne  bool
	compareStopwords []string
	compareCSVPath   string
	compareFind      bool
	comparePlain     bool
	headingsAPath    string
	headingsBPath    string
)

func addCompareFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&compareThreshold, "threshold", 0, "minimum cosine similarity for a match, 0-1 (default 0.75, or 0.65 with --normalize)")
	cmd.Flags().BoolVar(&compareNormalize, "normalize", false, "strip numbering, punctuation, and stopwords before comparing")
	cmd.Flags().BoolVar(&compareOneToOne, "one-to-one", false, "match each B heading at most once")
	cmd.Flags().StringSliceVar(&compareStopwords, "stopword", nil, "word to drop when normalizing (repeatable)")
	cmd.Flags().StringVar(&compareCSVPath, "csv", "", "write the report as CSV to this file (- for stdout)")
	cmd.Flags().BoolVar(&comparePlain, "plain", false, "disable colors in the table")
}

func init() {
	addCompareFlags(compareCmd)
	compareCmd.Flags().BoolVar(&compareFind, "find", false, "treat arguments as organization names and search for their policies")

	addCompareFlags(compareHeadingsCmd)
	compareHeadingsCmd.Flags().StringVar(&headingsAPath, "a", "", "file with side A headings (required)")
	compareHeadingsCmd.Flags().StringVar(&headingsBPath, "b", "", "file with side B headings (required)")
	_ = compareHeadingsCmd.MarkFlagRequired("a")
	_ = compareHeadingsCmd.MarkFlagRequired("b")

	rootCmd.AddCommand(compareCmd, compareHeadingsCmd)
}

// compareOptions merges config defaults with any flags the user set.
func compareOptions(cmd *cobra.Command) (compare.Options, error) {
	opts := globalConfig.CompareOptions()
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		if err := align.ValidateThreshold(compareThreshold); err != nil {
			return opts, err
		}
		t := compareThreshold
		opts.Threshold = &t
	}
	if flags.Changed("normalize") {
		opts.Normalize = compareNormalize
	}
	if flags.Changed("one-to-one") {
		opts.Mode = align.ModeGreedy
		if compareOneToOne {
			opts.Mode = align.ModeOneToOne
		}
	}
	opts.Stopwords = append(opts.Stopwords, compareStopwords...)
	return opts, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	opts, err := compareOptions(cmd)
	if err != nil {
		return err
	}
	svc, cleanup, err := newService(globalConfig, globalLogger, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	var r *models.Report
	if compareFind {
		r, err = svc.FindAndCompare(cmd.Context(), args[0], args[1], opts)
	} else {
		r, err = svc.CompareURLs(cmd.Context(), args[0], args[1], opts)
	}
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), r)
}

func runCompareHeadings(cmd *cobra.Command, args []string) error {
	opts, err := compareOptions(cmd)
	if err != nil {
		return err
	}
	a, err := readHeadings(headingsAPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	b, err := readHeadings(headingsBPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(globalConfig, globalLogger, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := svc.CompareHeadings(cmd.Context(), a, b, opts)
	if err != nil {
		return err
	}
	r.SourceA, r.SourceB = headingsAPath, headingsBPath
	return printReport(cmd.OutOrStdout(), r)
}

// readHeadings reads one heading per line, skipping blank lines.
func readHeadings(path string, stdin io.Reader) ([]string, error) {
	var rd io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		rd = f
	}

	var out []string
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

func printReport(w io.Writer, r *models.Report) error {
	if compareCSVPath == "-" {
		return report.WriteCSV(w, r)
	}

	if r.SourceA != "" || r.SourceB != "" {
		fmt.Fprintf(w, "A: %s\nB: %s\n", r.SourceA, r.SourceB)
	}
	fmt.Fprint(w, report.RenderTable(r, report.TableOptions{Plain: comparePlain}))

	if compareCSVPath == "" {
		return nil
	}
	f, err := os.Create(compareCSVPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", compareCSVPath, err)
	}
	if err := report.WriteCSV(f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Report written to %s\n", compareCSVPath)
	return nil
}
