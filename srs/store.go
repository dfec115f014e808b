package srs

import (
	"context"
	"errors"
	"time"

	"github.com/quizcraft/quizcraft-api/models"
)

// ErrNotFound is returned when a referenced flashcard does not exist.
// Non-retryable; HTTP callers should map it to a 404.
var ErrNotFound = errors.New("srs: flashcard not found")

// ErrInvalidResponse is returned when a review response is outside the
// closed again/hard/good/easy set. Callers are expected to validate before
// reaching the scheduler, so hitting this is a precondition violation.
var ErrInvalidResponse = errors.New("srs: unrecognized review response")

// Owner identifies who a query runs on behalf of: a registered account or
// an anonymous session, distinguished by Kind.
type Owner struct {
	ID   uint
	Kind string
}

// Store is the persistence contract the scheduler requires.
//
// SaveReview must be atomic: the flashcard scheduling update, the progress
// upsert and the session append either all apply or none do. That closes
// the window where the denormalized Flashcard fields could drift from the
// StudyProgress ledger.
type Store interface {
	FlashcardByID(ctx context.Context, id uint) (*models.Flashcard, error)
	SaveReview(ctx context.Context, card *models.Flashcard, progress *models.StudyProgress, session models.StudySession) error
	CountFlashcards(ctx context.Context, owner Owner) (int64, error)
	CountDueFlashcards(ctx context.Context, owner Owner, due time.Time) (int64, error)
	DueFlashcards(ctx context.Context, owner Owner, due time.Time, limit int) ([]models.Flashcard, error)
	ProgressFor(ctx context.Context, ownerID, flashcardID uint) (*models.StudyProgress, error)
	ProgressForOwner(ctx context.Context, owner Owner) ([]models.StudyProgress, error)
}
