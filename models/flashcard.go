package models

import (
	"time"

	"gorm.io/gorm"
)

// Flashcard represents an individual flashcard together with its current
// spaced-repetition scheduling state. The scheduling fields are a
// denormalized copy of the StudyProgress ledger, kept in sync by the same
// review transaction, so due-card queries never need a join.
type Flashcard struct {
	gorm.Model
	Front    string `gorm:"not null;size:1000"`
	Back     string `gorm:"not null;size:2000"`
	Category string `gorm:"size:100"`
	Tags     string `gorm:"size:500"` // comma-separated labels
	PublicID string `gorm:"size:100;uniqueIndex"`

	DeckID uint `gorm:"not null"`
	Deck   Deck `gorm:"foreignKey:DeckID" json:"-"`

	OwnerID   uint   `gorm:"not null;index:idx_flashcards_owner"`
	OwnerKind string `gorm:"not null;size:20;index:idx_flashcards_owner"`

	// Scheduling state, mutated only through review submission
	IntervalDays int        `gorm:"default:1"`
	Repetitions  int        `gorm:"default:0"`
	Ease         float64    `gorm:"default:2.5"`
	LastReviewed *time.Time `gorm:"default:null"`
	NextReview   time.Time  `gorm:"index"`

	// Outcome counters, monotonically incremented, never reset
	CorrectCount   int `gorm:"default:0"`
	IncorrectCount int `gorm:"default:0"`
}
