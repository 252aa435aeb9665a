// ABOUTME: CSV serialization of comparison reports.
// ABOUTME: One row per match record; scores use two decimals or "-" when absent.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/2389-research/sectiondiff/internal/models"
)

// Header is the first CSV row.
var Header = []string{"Heading A", "Matched Heading B", "Similarity Score", "Status"}

// ErrMalformed is returned when CSV input does not match the report format.
var ErrMalformed = errors.New("malformed report csv")

// FormatScore renders a score to two decimals, or "-" when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return models.ScoreAbsent
	}
	return strconv.FormatFloat(*score, 'f', 2, 64)
}

// WriteCSV writes the header and one row per record.
func WriteCSV(w io.Writer, r *models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range r.Records {
		row := []string{rec.HeadingA, rec.HeadingB, FormatScore(rec.Score), rec.Status.String()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses output produced by WriteCSV back into records.
func ReadCSV(rd io.Reader) ([]models.MatchRecord, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformed, header)
	}

	var records []models.MatchRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		status, ok := models.ParseStatus(row[3])
		if !ok {
			return nil, fmt.Errorf("%w: line %d: unknown status %q", ErrMalformed, line, row[3])
		}
		rec := models.MatchRecord{HeadingA: row[0], HeadingB: row[1], Status: status}
		if row[2] != models.ScoreAbsent {
			score, err := strconv.ParseFloat(row[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad score %q", ErrMalformed, line, row[2])
			}
			rec.Score = &score
		}
		records = append(records, rec)
	}
	return records, nil
}
