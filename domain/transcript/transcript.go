// Package transcript provides domain types for summarised meeting transcripts.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/helixml/briefer/domain/repository"
)

// DateLayout is the wire and storage format of a meeting date.
const DateLayout = time.DateOnly

// DefaultCompanyName is used when a submission names no company.
const DefaultCompanyName = "N/A"

// ErrValidation indicates a submission was rejected before any work was done.
var ErrValidation = errors.New("validation failed")

// Store persists transcript records.
type Store interface {
	repository.Store[Transcript]
	// FindRecent returns up to limit records, newest first. A non-empty
	// company matches case-insensitively.
	FindRecent(ctx context.Context, company string, limit int) ([]Transcript, error)
}

// Submission is a validated request to summarise a transcript.
type Submission struct {
	companyName string
	attendees   []string
	text        string
	date        time.Time
}

// NewSubmission validates raw input. The text is required; a blank company
// becomes DefaultCompanyName; blank attendees are dropped; date, when
// non-empty, must be YYYY-MM-DD.
func NewSubmission(companyName string, attendees []string, text string, date string) (Submission, error) {
	if strings.TrimSpace(text) == "" {
		return Submission{}, fmt.Errorf("%w: transcript_text is required", ErrValidation)
	}

	var d time.Time
	if date = strings.TrimSpace(date); date != "" {
		parsed, err := time.Parse(DateLayout, date)
		if err != nil {
			return Submission{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, date)
		}
		d = parsed
	}

	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		companyName = DefaultCompanyName
	}

	return Submission{
		companyName: companyName,
		attendees:   CleanAttendees(attendees),
		text:        text,
		date:        d,
	}, nil
}

// CompanyName returns the company name.
func (s Submission) CompanyName() string { return s.companyName }

// Attendees returns a copy of the attendee list, in submission order.
func (s Submission) Attendees() []string { return clone(s.attendees) }

// Text returns the transcript text.
func (s Submission) Text() string { return s.text }

// Date returns the meeting date and whether one was given.
func (s Submission) Date() (time.Time, bool) { return s.date, !s.date.IsZero() }

// Payload returns the plain-text form of the submission used for queue
// transport. It decodes back into an equivalent Submission.
func (s Submission) Payload() Payload {
	p := Payload{
		CompanyName:    s.companyName,
		Attendees:      s.Attendees(),
		TranscriptText: s.text,
	}
	if !s.date.IsZero() {
		p.Date = s.date.Format(DateLayout)
	}
	return p
}

// Payload is the JSON job body published to the queue.
type Payload struct {
	CompanyName    string   `json:"company_name"`
	Attendees      []string `json:"attendees"`
	TranscriptText string   `json:"transcript_text"`
	Date           string   `json:"date,omitempty"`
}

// Transcript is a stored, summarised transcript.
type Transcript struct {
	id            int64
	companyName   string
	attendees     []string
	text          string
	date          time.Time
	summary       string
	dateGenerated time.Time
}

// NewTranscript creates a record for a submission that has been summarised.
func NewTranscript(s Submission, summary string, dateGenerated time.Time) Transcript {
	return Transcript{
		companyName:   s.companyName,
		attendees:     clone(s.attendees),
		text:          s.text,
		date:          s.date,
		summary:       summary,
		dateGenerated: dateGenerated,
	}
}

// Reconstruct recreates a transcript from persistence.
func Reconstruct(
	id int64,
	companyName string,
	attendees []string,
	text string,
	date time.Time,
	summary string,
	dateGenerated time.Time,
) Transcript {
	return Transcript{
		id:            id,
		companyName:   companyName,
		attendees:     clone(attendees),
		text:          text,
		date:          date,
		summary:       summary,
		dateGenerated: dateGenerated,
	}
}

// ID returns the store-assigned identifier, or 0 before insertion.
func (t Transcript) ID() int64 { return t.id }

// CompanyName returns the company name.
func (t Transcript) CompanyName() string { return t.companyName }

// Attendees returns a copy of the attendee list.
func (t Transcript) Attendees() []string { return clone(t.attendees) }

// Text returns the transcript text.
func (t Transcript) Text() string { return t.text }

// Date returns the meeting date and whether one was recorded.
func (t Transcript) Date() (time.Time, bool) { return t.date, !t.date.IsZero() }

// Summary returns the AI summary.
func (t Transcript) Summary() string { return t.summary }

// DateGenerated returns when generation started.
func (t Transcript) DateGenerated() time.Time { return t.dateGenerated }

// CleanAttendees trims names and drops blank entries, keeping order.
func CleanAttendees(names []string) []string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	return cleaned
}

// SplitAttendees parses the comma-separated form of an attendee list.
func SplitAttendees(s string) []string {
	return CleanAttendees(strings.Split(s, ","))
}

// JoinAttendees renders an attendee list in its comma-separated form.
func JoinAttendees(names []string) string {
	return strings.Join(CleanAttendees(names), ", ")
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
