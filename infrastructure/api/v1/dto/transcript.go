// Package dto holds the request and response bodies of the v1 API.
package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/helixml/briefer/domain/transcript"
)

// Attendees decodes either a JSON array of names or a single
// comma-separated string.
type Attendees []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Attendees) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("attendees must be a list of names or a comma-separated string")
	}
	*a = transcript.SplitAttendees(s)
	return nil
}

// TranscriptRequest is the body of POST /api/transcript and the worker
// callback.
type TranscriptRequest struct {
	CompanyName    string    `json:"company_name"`
	Attendees      Attendees `json:"attendees"`
	TranscriptText string    `json:"transcript_text"`
	Date           string    `json:"date"`
}

// Submission validates the request.
func (r TranscriptRequest) Submission() (transcript.Submission, error) {
	return transcript.NewSubmission(r.CompanyName, r.Attendees, r.TranscriptText, r.Date)
}

// TranscriptResponse is returned when a transcript is summarised.
type TranscriptResponse struct {
	ID            int64     `json:"id"`
	AISummary     string    `json:"ai_summary"`
	DateGenerated time.Time `json:"date_generated"`
}

// NewTranscriptResponse converts a stored transcript.
func NewTranscriptResponse(t transcript.Transcript) TranscriptResponse {
	return TranscriptResponse{ID: t.ID(), AISummary: t.Summary(), DateGenerated: t.DateGenerated()}
}

// TranscriptRecord is one row of GET /api/transcripts.
type TranscriptRecord struct {
	ID             int64     `json:"id"`
	CompanyName    string    `json:"company_name"`
	Attendees      []string  `json:"attendees"`
	TranscriptText string    `json:"transcript_text"`
	Date           *string   `json:"date"`
	AISummary      string    `json:"ai_summary"`
	DateGenerated  time.Time `json:"date_generated"`
}

// TranscriptListResponse is the body of GET /api/transcripts.
type TranscriptListResponse struct {
	Transcripts []TranscriptRecord `json:"transcripts"`
}

// NewTranscriptListResponse converts stored transcripts. The list is never
// nil.
func NewTranscriptListResponse(records []transcript.Transcript) TranscriptListResponse {
	rows := make([]TranscriptRecord, 0, len(records))
	for _, t := range records {
		row := TranscriptRecord{
			ID:             t.ID(),
			CompanyName:    t.CompanyName(),
			Attendees:      t.Attendees(),
			TranscriptText: t.Text(),
			AISummary:      t.Summary(),
			DateGenerated:  t.DateGenerated(),
		}
		if row.Attendees == nil {
			row.Attendees = []string{}
		}
		if d, ok := t.Date(); ok {
			s := d.Format(transcript.DateLayout)
			row.Date = &s
		}
		rows = append(rows, row)
	}
	return TranscriptListResponse{Transcripts: rows}
}

// QueuedResponse is returned when a submission is handed to the push queue.
type QueuedResponse struct {
	Queued           bool   `json:"queued"`
	ProviderStatus   int    `json:"provider_status"`
	ProviderResponse string `json:"provider_response"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
