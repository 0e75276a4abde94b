package persistence

import "time"

// TranscriptModel is the row shape of the transcripts table.
type TranscriptModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CompanyName    string    `gorm:"column:company_name;not null;default:'N/A'"`
	Attendees      string    `gorm:"column:attendees;not null;default:''"`
	TranscriptText string    `gorm:"column:transcript_text;type:text;not null"`
	Date           *string   `gorm:"column:date;size:10"`
	AISummary      string    `gorm:"column:ai_summary;type:text;not null"`
	DateGenerated  time.Time `gorm:"column:date_generated;not null;index"`
}

// TableName returns the table name.
func (TranscriptModel) TableName() string { return "transcripts" }

// IcebreakerModel is the row shape of the linkedin_icebreakers table.
type IcebreakerModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CompanyName    string    `gorm:"column:company_name;not null;default:''"`
	LinkedInBio    string    `gorm:"column:linkedin_bio;type:text;not null"`
	PitchDeck      string    `gorm:"column:pitch_deck;type:text;not null;default:''"`
	IcebreakerText string    `gorm:"column:icebreaker_text;type:text;not null"`
	DateGenerated  time.Time `gorm:"column:date_generated;not null;index"`
}

// TableName returns the table name.
func (IcebreakerModel) TableName() string { return "linkedin_icebreakers" }
