package persistence

import (
	"time"

	"github.com/helixml/briefer/domain/icebreaker"
	"github.com/helixml/briefer/domain/transcript"
)

// TranscriptMapper maps between transcript.Transcript and TranscriptModel.
// Attendees are stored comma-joined; this is the only place that form exists.
type TranscriptMapper struct{}

// ToDomain converts a TranscriptModel to a domain Transcript.
func (TranscriptMapper) ToDomain(m TranscriptModel) transcript.Transcript {
	var date time.Time
	if m.Date != nil {
		// Rows written outside this service may hold anything; an
		// unparseable date reads back as absent.
		if d, err := time.Parse(transcript.DateLayout, *m.Date); err == nil {
			date = d
		}
	}
	return transcript.Reconstruct(
		m.ID,
		m.CompanyName,
		transcript.SplitAttendees(m.Attendees),
		m.TranscriptText,
		date,
		m.AISummary,
		m.DateGenerated,
	)
}

// ToModel converts a domain Transcript to a TranscriptModel.
func (TranscriptMapper) ToModel(t transcript.Transcript) TranscriptModel {
	m := TranscriptModel{
		ID:             t.ID(),
		CompanyName:    t.CompanyName(),
		Attendees:      transcript.JoinAttendees(t.Attendees()),
		TranscriptText: t.Text(),
		AISummary:      t.Summary(),
		DateGenerated:  t.DateGenerated(),
	}
	if d, ok := t.Date(); ok {
		s := d.Format(transcript.DateLayout)
		m.Date = &s
	}
	return m
}

// IcebreakerMapper maps between icebreaker.Icebreaker and IcebreakerModel.
type IcebreakerMapper struct{}

// ToDomain converts an IcebreakerModel to a domain Icebreaker.
func (IcebreakerMapper) ToDomain(m IcebreakerModel) icebreaker.Icebreaker {
	return icebreaker.Reconstruct(
		m.ID,
		m.CompanyName,
		m.LinkedInBio,
		m.PitchDeck,
		m.IcebreakerText,
		m.DateGenerated,
	)
}

// ToModel converts a domain Icebreaker to an IcebreakerModel.
func (IcebreakerMapper) ToModel(i icebreaker.Icebreaker) IcebreakerModel {
	return IcebreakerModel{
		ID:             i.ID(),
		CompanyName:    i.CompanyName(),
		LinkedInBio:    i.LinkedInBio(),
		PitchDeck:      i.PitchDeck(),
		IcebreakerText: i.Text(),
		DateGenerated:  i.DateGenerated(),
	}
}
