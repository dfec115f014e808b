package models

import (
	"time"

	"gorm.io/gorm"
)

// StudyProgress is the canonical per-(owner, flashcard) review ledger. At
// most one record exists per pair; the unique index gives upsert semantics.
type StudyProgress struct {
	gorm.Model
	OwnerID     uint `gorm:"not null;uniqueIndex:idx_progress_owner_card"`
	FlashcardID uint `gorm:"not null;uniqueIndex:idx_progress_owner_card"`
	DeckID      uint `gorm:"not null;index"`

	// Scheduling snapshot, same fields as Flashcard, written by the same
	// review transaction.
	IntervalDays int
	Repetitions  int
	Ease         float64
	LastReviewed *time.Time
	NextReview   time.Time
	MasteryLevel string `gorm:"size:20"`

	Sessions []StudySession `gorm:"foreignKey:StudyProgressID"`

	// Aggregate counters across all sessions
	TotalSessions     int
	CorrectSessions   int
	TotalStudyTimeMs  int64
	AverageResponseMs int64
	Accuracy          float64
	CurrentStreak     int
	BestStreak        int
}

// StudySession records a single review. Append-only, one row per review.
type StudySession struct {
	gorm.Model
	StudyProgressID uint   `gorm:"not null;index"`
	Response        string `gorm:"not null;size:10"`
	ResponseTimeMs  int64  `gorm:"not null"`
	WasCorrect      bool
	StudyMode       string `gorm:"size:30"`
	ReviewedAt      time.Time
}
