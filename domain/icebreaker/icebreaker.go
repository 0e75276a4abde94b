// Package icebreaker provides domain types for LinkedIn conversation openers.
package icebreaker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/helixml/briefer/domain/repository"
)

// ErrValidation indicates a submission was rejected before any work was done.
var ErrValidation = errors.New("validation failed")

// Store persists icebreaker records.
type Store interface {
	repository.Store[Icebreaker]
	// FindRecent returns up to limit records, newest first. A non-empty
	// company matches case-insensitively.
	FindRecent(ctx context.Context, company string, limit int) ([]Icebreaker, error)
}

// Submission is a validated request to write an icebreaker.
type Submission struct {
	companyName string
	linkedInBio string
	pitchDeck   string
}

// NewSubmission validates raw input. Only the bio is required.
func NewSubmission(companyName, linkedInBio, pitchDeck string) (Submission, error) {
	if strings.TrimSpace(linkedInBio) == "" {
		return Submission{}, fmt.Errorf("%w: linkedin_bio is required", ErrValidation)
	}
	return Submission{
		companyName: strings.TrimSpace(companyName),
		linkedInBio: linkedInBio,
		pitchDeck:   pitchDeck,
	}, nil
}

// CompanyName returns the company name.
func (s Submission) CompanyName() string { return s.companyName }

// LinkedInBio returns the profile bio.
func (s Submission) LinkedInBio() string { return s.linkedInBio }

// PitchDeck returns the pitch deck text.
func (s Submission) PitchDeck() string { return s.pitchDeck }

// Payload returns the JSON job body used for queue transport.
func (s Submission) Payload() Payload {
	return Payload{
		CompanyName: s.companyName,
		LinkedInBio: s.linkedInBio,
		PitchDeck:   s.pitchDeck,
	}
}

// Payload is the JSON job body published to the queue.
type Payload struct {
	CompanyName string `json:"company_name"`
	LinkedInBio string `json:"linkedin_bio"`
	PitchDeck   string `json:"pitch_deck"`
}

// Icebreaker is a stored, generated opener.
type Icebreaker struct {
	id            int64
	companyName   string
	linkedInBio   string
	pitchDeck     string
	text          string
	dateGenerated time.Time
}

// New creates a record for a submission that has been generated.
func New(s Submission, text string, dateGenerated time.Time) Icebreaker {
	return Icebreaker{
		companyName:   s.companyName,
		linkedInBio:   s.linkedInBio,
		pitchDeck:     s.pitchDeck,
		text:          text,
		dateGenerated: dateGenerated,
	}
}

// Reconstruct recreates an icebreaker from persistence.
func Reconstruct(id int64, companyName, linkedInBio, pitchDeck, text string, dateGenerated time.Time) Icebreaker {
	return Icebreaker{
		id:            id,
		companyName:   companyName,
		linkedInBio:   linkedInBio,
		pitchDeck:     pitchDeck,
		text:          text,
		dateGenerated: dateGenerated,
	}
}

// ID returns the store-assigned identifier, or 0 before insertion.
func (i Icebreaker) ID() int64 { return i.id }

// CompanyName returns the company name.
func (i Icebreaker) CompanyName() string { return i.companyName }

// LinkedInBio returns the profile bio.
func (i Icebreaker) LinkedInBio() string { return i.linkedInBio }

// PitchDeck returns the pitch deck text.
func (i Icebreaker) PitchDeck() string { return i.pitchDeck }

// Text returns the generated icebreaker.
func (i Icebreaker) Text() string { return i.text }

// DateGenerated returns when generation started.
func (i Icebreaker) DateGenerated() time.Time { return i.dateGenerated }
