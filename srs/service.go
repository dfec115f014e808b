package srs

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/quizcraft/quizcraft-api/models"
)

// DefaultReviewLimit caps a due-card query when the caller does not supply
// its own limit.
const DefaultReviewLimit = 20

// Service implements review submission, due-card selection and study
// statistics on top of a Store.
type Service struct {
	store  Store
	params Params
	now    func() time.Time

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewService creates a scheduler service using the given store and
// scheduling constants.
func NewService(store Store, params Params) *Service {
	return &Service{
		store:  store,
		params: params,
		now:    time.Now,
		locks:  make(map[uint]*sync.Mutex),
	}
}

// cardLock returns the per-flashcard mutex, serializing concurrent reviews
// of the same card so interval/repetitions/ease updates cannot race.
func (s *Service) cardLock(flashcardID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[flashcardID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[flashcardID] = l
	}
	return l
}

// ReviewResult reports the outcome of a review submission.
type ReviewResult struct {
	Success    bool       `json:"success"`
	NextReview *time.Time `json:"nextReview,omitempty"`
}

// SubmitReview applies one review to a flashcard: computes the next
// scheduling state, bumps exactly one outcome counter, and upserts the
// owner's StudyProgress ledger with one appended session.
//
// Best-effort contract: failures are logged and reported through the
// Success flag rather than returned, so a study session can continue past
// a missing card or a transient storage hiccup. Callers must check Success.
func (s *Service) SubmitReview(ctx context.Context, owner Owner, flashcardID uint, response Response, responseTimeMs int64, mode StudyMode) ReviewResult {
	if !response.Valid() {
		log.Printf("SubmitReview: rejected invalid response %q for flashcard %d", response, flashcardID)
		return ReviewResult{}
	}
	if responseTimeMs < 0 {
		responseTimeMs = 0
	}
	if mode == "" {
		mode = ModeSpacedRepetition
	}

	lock := s.cardLock(flashcardID)
	lock.Lock()
	defer lock.Unlock()

	card, err := s.store.FlashcardByID(ctx, flashcardID)
	if err != nil {
		log.Printf("SubmitReview: load flashcard %d: %v", flashcardID, err)
		return ReviewResult{}
	}

	update, err := s.params.ComputeNextReview(State{
		IntervalDays: card.IntervalDays,
		Repetitions:  card.Repetitions,
		Ease:         card.Ease,
	}, response)
	if err != nil {
		log.Printf("SubmitReview: compute next review for flashcard %d: %v", flashcardID, err)
		return ReviewResult{}
	}

	now := s.now()
	nextReview := now.AddDate(0, 0, update.IntervalDays)
	correct := response != Again

	card.IntervalDays = update.IntervalDays
	card.Repetitions = update.Repetitions
	card.Ease = update.Ease
	card.LastReviewed = &now
	card.NextReview = nextReview
	if correct {
		card.CorrectCount++
	} else {
		card.IncorrectCount++
	}

	progress, err := s.store.ProgressFor(ctx, owner.ID, flashcardID)
	if err != nil {
		log.Printf("SubmitReview: load progress for owner %d flashcard %d: %v", owner.ID, flashcardID, err)
		return ReviewResult{}
	}
	if progress == nil {
		progress = &models.StudyProgress{
			OwnerID:     owner.ID,
			FlashcardID: flashcardID,
			DeckID:      card.DeckID,
		}
	}

	progress.IntervalDays = update.IntervalDays
	progress.Repetitions = update.Repetitions
	progress.Ease = update.Ease
	progress.LastReviewed = &now
	progress.NextReview = nextReview
	progress.MasteryLevel = string(update.Mastery)
	progress.TotalSessions++
	if correct {
		progress.CorrectSessions++
		progress.CurrentStreak++
		if progress.CurrentStreak > progress.BestStreak {
			progress.BestStreak = progress.CurrentStreak
		}
	} else {
		progress.CurrentStreak = 0
	}
	progress.TotalStudyTimeMs += responseTimeMs
	progress.AverageResponseMs = progress.TotalStudyTimeMs / int64(progress.TotalSessions)
	progress.Accuracy = round2(float64(progress.CorrectSessions) / float64(progress.TotalSessions) * 100)

	session := models.StudySession{
		Response:       string(response),
		ResponseTimeMs: responseTimeMs,
		WasCorrect:     correct,
		StudyMode:      string(mode),
		ReviewedAt:     now,
	}

	if err := s.store.SaveReview(ctx, card, progress, session); err != nil {
		log.Printf("SubmitReview: persist review for flashcard %d: %v", flashcardID, err)
		return ReviewResult{}
	}

	return ReviewResult{Success: true, NextReview: &nextReview}
}

// CardsForReview returns the owner's flashcards whose next review is due,
// most overdue first, capped at limit. An owner with no cards gets an empty
// slice, not an error.
func (s *Service) CardsForReview(ctx context.Context, owner Owner, limit int) ([]models.Flashcard, error) {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	return s.store.DueFlashcards(ctx, owner, s.now(), limit)
}

// Statistics aggregates an owner's study state. Cards that have never been
// reviewed carry no StudyProgress record; they are reported in NewCards so
// the four buckets sum to TotalCards.
type Statistics struct {
	TotalCards        int64   `json:"totalCards"`
	DueCards          int64   `json:"dueCards"`
	NewCards          int64   `json:"newCards"`
	LearningCards     int64   `json:"learningCards"`
	ReviewingCards    int64   `json:"reviewingCards"`
	MasteredCards     int64   `json:"masteredCards"`
	AverageAccuracy   float64 `json:"averageAccuracy"`
	TotalStudyMinutes int64   `json:"totalStudyMinutes"`
}

// StudyStatistics computes the owner's aggregate study statistics. Unlike
// SubmitReview, storage failures propagate: there is no safe degraded
// answer for "which cards are due".
func (s *Service) StudyStatistics(ctx context.Context, owner Owner) (*Statistics, error) {
	total, err := s.store.CountFlashcards(ctx, owner)
	if err != nil {
		return nil, err
	}
	due, err := s.store.CountDueFlashcards(ctx, owner, s.now())
	if err != nil {
		return nil, err
	}
	progresses, err := s.store.ProgressForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalCards: total, DueCards: due}
	var sessions, correct, studyTimeMs int64
	for _, p := range progresses {
		switch MasteryLevel(p.MasteryLevel) {
		case Learning:
			stats.LearningCards++
		case Reviewing:
			stats.ReviewingCards++
		case Mastered:
			stats.MasteredCards++
		}
		sessions += int64(p.TotalSessions)
		correct += int64(p.CorrectSessions)
		studyTimeMs += p.TotalStudyTimeMs
	}

	stats.NewCards = total - int64(len(progresses))
	if stats.NewCards < 0 {
		stats.NewCards = 0
	}
	if sessions > 0 {
		stats.AverageAccuracy = round2(float64(correct) / float64(sessions) * 100)
	}
	stats.TotalStudyMinutes = int64(math.Round(float64(studyTimeMs) / 60000))

	return stats, nil
}
