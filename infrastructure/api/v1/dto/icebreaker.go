package dto

import (
	"time"

	"github.com/helixml/briefer/domain/icebreaker"
)

// IcebreakerRequest is the body of POST /api/icebreaker and the worker
// callback.
type IcebreakerRequest struct {
	CompanyName string `json:"company_name"`
	LinkedInBio string `json:"linkedin_bio"`
	PitchDeck   string `json:"pitch_deck"`
}

// Submission validates the request.
func (r IcebreakerRequest) Submission() (icebreaker.Submission, error) {
	return icebreaker.NewSubmission(r.CompanyName, r.LinkedInBio, r.PitchDeck)
}

// IcebreakerResponse is returned when an icebreaker is generated.
type IcebreakerResponse struct {
	ID            int64     `json:"id"`
	Icebreaker    string    `json:"icebreaker"`
	DateGenerated time.Time `json:"date_generated"`
}

// NewIcebreakerResponse converts a stored icebreaker.
func NewIcebreakerResponse(i icebreaker.Icebreaker) IcebreakerResponse {
	return IcebreakerResponse{ID: i.ID(), Icebreaker: i.Text(), DateGenerated: i.DateGenerated()}
}

// IcebreakerRecord is one row of GET /api/all_icebreker.
type IcebreakerRecord struct {
	ID             int64     `json:"id"`
	CompanyName    string    `json:"company_name"`
	LinkedInBio    string    `json:"linkedin_bio"`
	PitchDeck      string    `json:"pitch_deck"`
	IcebreakerText string    `json:"icebreaker_text"`
	DateGenerated  time.Time `json:"date_generated"`
}

// IcebreakerListResponse is the body of GET /api/all_icebreker.
type IcebreakerListResponse struct {
	Icebreakers []IcebreakerRecord `json:"linkedin_icebreakers"`
}

// NewIcebreakerListResponse converts stored icebreakers. The list is never
// nil.
func NewIcebreakerListResponse(records []icebreaker.Icebreaker) IcebreakerListResponse {
	rows := make([]IcebreakerRecord, 0, len(records))
	for _, i := range records {
		rows = append(rows, IcebreakerRecord{
			ID:             i.ID(),
			CompanyName:    i.CompanyName(),
			LinkedInBio:    i.LinkedInBio(),
			PitchDeck:      i.PitchDeck(),
			IcebreakerText: i.Text(),
			DateGenerated:  i.DateGenerated(),
		})
	}
	return IcebreakerListResponse{Icebreakers: rows}
}
