// ABOUTME: Core data models for heading comparison: headings, match records, reports.
// ABOUTME: Provides constructor functions and status labels shared by every output surface.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Side identifies which document a heading came from.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Heading is a short extracted section title with its position on one side.
type Heading struct {
	Text  string
	Side  Side
	Index int
}

// NewHeadings wraps raw strings as headings on the given side, indexed in order.
func NewHeadings(side Side, texts []string) []Heading {
	out := make([]Heading, len(texts))
	for i, t := range texts {
		out[i] = Heading{Text: t, Side: side, Index: i}
	}
	return out
}

// Status tags a match record.
type Status int

const (
	StatusMatched Status = iota
	StatusMissingInB
	StatusMissingInA
)

// String returns the plain label used in CSV output.
func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "Matched"
	case StatusMissingInB:
		return "Missing in B"
	case StatusMissingInA:
		return "Missing in A"
	default:
		return "Unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(label string) (Status, bool) {
	for _, s := range []Status{StatusMatched, StatusMissingInB, StatusMissingInA} {
		if s.String() == label {
			return s, true
		}
	}
	return 0, false
}

// Placeholders used where one side of a record has no heading.
const (
	NotFound    = "Not Found"
	Unmatched   = "-"
	ScoreAbsent = "-"
)

// MatchRecord is one row of a comparison report.
type MatchRecord struct {
	HeadingA string
	HeadingB string
	Score    *float64 // nil unless Status is StatusMatched
	Status   Status
}

// Matched builds a record pairing a with b at the given score.
func Matched(a, b string, score float64) MatchRecord {
	return MatchRecord{HeadingA: a, HeadingB: b, Score: &score, Status: StatusMatched}
}

// MissingInB builds a record for an A heading with no match on side B.
func MissingInB(a string) MatchRecord {
	return MatchRecord{HeadingA: a, HeadingB: NotFound, Status: StatusMissingInB}
}

// MissingInA builds a record for a B heading that no A heading claimed.
func MissingInA(b string) MatchRecord {
	return MatchRecord{HeadingA: Unmatched, HeadingB: b, Status: StatusMissingInA}
}

// Report is the ordered result of one comparison: A rows first, then unclaimed B rows.
type Report struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Threshold float64
	Mode      string
	SourceA   string
	SourceB   string
	Records   []MatchRecord
}

// NewReport creates an empty report with generated UUID and timestamp.
func NewReport(threshold float64, mode string) *Report {
	return &Report{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Threshold: threshold,
		Mode:      mode,
	}
}

// Count returns how many records carry the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

// Summary returns matched, missing-in-B, and missing-in-A counts.
func (r *Report) Summary() (matched, missingInB, missingInA int) {
	return r.Count(StatusMatched), r.Count(StatusMissingInB), r.Count(StatusMissingInA)
}
