package srs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizcraft/quizcraft-api/models"
)

type progressKey struct {
	ownerID     uint
	flashcardID uint
}

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	mu       sync.Mutex
	cards    map[uint]*models.Flashcard
	progress map[progressKey]*models.StudyProgress
	sessions []models.StudySession
	failSave bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cards:    make(map[uint]*models.Flashcard),
		progress: make(map[progressKey]*models.StudyProgress),
	}
}

func (f *fakeStore) addCard(card models.Flashcard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := card
	f.cards[c.ID] = &c
}

func (f *fakeStore) FlashcardByID(ctx context.Context, id uint) (*models.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *card
	return &c, nil
}

func (f *fakeStore) SaveReview(ctx context.Context, card *models.Flashcard, progress *models.StudyProgress, session models.StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("store unavailable")
	}
	c := *card
	f.cards[c.ID] = &c
	if progress.ID == 0 {
		progress.ID = uint(len(f.progress) + 1)
	}
	p := *progress
	f.progress[progressKey{p.OwnerID, p.FlashcardID}] = &p
	session.StudyProgressID = p.ID
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeStore) CountFlashcards(ctx context.Context, owner Owner) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, card := range f.cards {
		if card.OwnerID == owner.ID && card.OwnerKind == owner.Kind {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountDueFlashcards(ctx context.Context, owner Owner, due time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, card := range f.cards {
		if card.OwnerID == owner.ID && card.OwnerKind == owner.Kind && !card.NextReview.After(due) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DueFlashcards(ctx context.Context, owner Owner, due time.Time, limit int) ([]models.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cards := []models.Flashcard{}
	for _, card := range f.cards {
		if card.OwnerID == owner.ID && card.OwnerKind == owner.Kind && !card.NextReview.After(due) {
			cards = append(cards, *card)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].NextReview.Before(cards[j].NextReview)
	})
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return cards, nil
}

func (f *fakeStore) ProgressFor(ctx context.Context, ownerID, flashcardID uint) (*models.StudyProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	progress, ok := f.progress[progressKey{ownerID, flashcardID}]
	if !ok {
		return nil, nil
	}
	p := *progress
	return &p, nil
}

func (f *fakeStore) ProgressForOwner(ctx context.Context, owner Owner) ([]models.StudyProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var progresses []models.StudyProgress
	for key, progress := range f.progress {
		if key.ownerID == owner.ID {
			progresses = append(progresses, *progress)
		}
	}
	return progresses, nil
}

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(store Store) *Service {
	svc := NewService(store, DefaultParams())
	svc.now = func() time.Time { return testNow }
	return svc
}

func newCard(id, ownerID uint) models.Flashcard {
	card := models.Flashcard{
		Front:        "front",
		Back:         "back",
		DeckID:       1,
		OwnerID:      ownerID,
		OwnerKind:    models.AccountRegistered,
		IntervalDays: 1,
		Repetitions:  0,
		Ease:         2.5,
		NextReview:   testNow,
	}
	card.ID = id
	return card
}

func TestSubmitReviewGood(t *testing.T) {
	store := newFakeStore()
	store.addCard(newCard(1, 7))
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	result := svc.SubmitReview(context.Background(), owner, 1, Good, 4200, ModeSpacedRepetition)

	require.True(t, result.Success)
	require.NotNil(t, result.NextReview)
	assert.Equal(t, testNow.AddDate(0, 0, 3), *result.NextReview)

	card := store.cards[1]
	assert.Equal(t, 3, card.IntervalDays)
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, 2.5, card.Ease)
	assert.Equal(t, 1, card.CorrectCount)
	assert.Equal(t, 0, card.IncorrectCount)
	require.NotNil(t, card.LastReviewed)
	assert.Equal(t, testNow, *card.LastReviewed)
	assert.Equal(t, card.NextReview, *result.NextReview)

	progress := store.progress[progressKey{7, 1}]
	require.NotNil(t, progress)
	assert.Equal(t, string(Learning), progress.MasteryLevel)
	assert.Equal(t, 1, progress.TotalSessions)
	assert.Equal(t, 1, progress.CorrectSessions)
	assert.Equal(t, int64(4200), progress.TotalStudyTimeMs)
	assert.Equal(t, int64(4200), progress.AverageResponseMs)
	assert.Equal(t, 100.0, progress.Accuracy)
	assert.Equal(t, 1, progress.CurrentStreak)

	require.Len(t, store.sessions, 1)
	session := store.sessions[0]
	assert.Equal(t, string(Good), session.Response)
	assert.True(t, session.WasCorrect)
	assert.Equal(t, string(ModeSpacedRepetition), session.StudyMode)
}

func TestSubmitReviewAgainCountsIncorrectOnly(t *testing.T) {
	store := newFakeStore()
	store.addCard(newCard(1, 7))
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	result := svc.SubmitReview(context.Background(), owner, 1, Again, 900, ModeSpacedRepetition)

	require.True(t, result.Success)
	card := store.cards[1]
	assert.Equal(t, 0, card.CorrectCount)
	assert.Equal(t, 1, card.IncorrectCount)
	assert.Equal(t, 1, card.IntervalDays)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, 2.3, card.Ease)

	progress := store.progress[progressKey{7, 1}]
	assert.Equal(t, string(Learning), progress.MasteryLevel)
	assert.Equal(t, 0, progress.CurrentStreak)
	assert.Equal(t, 0.0, progress.Accuracy)
}

func TestSubmitReviewMissingCard(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	result := svc.SubmitReview(context.Background(), owner, 99, Good, 1000, ModeSpacedRepetition)

	assert.False(t, result.Success)
	assert.Nil(t, result.NextReview)
	assert.Empty(t, store.sessions)
}

func TestSubmitReviewInvalidResponse(t *testing.T) {
	store := newFakeStore()
	store.addCard(newCard(1, 7))
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	result := svc.SubmitReview(context.Background(), owner, 1, Response("perfect"), 1000, ModeSpacedRepetition)

	assert.False(t, result.Success)
	assert.Equal(t, 0, store.cards[1].CorrectCount)
}

func TestSubmitReviewStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.addCard(newCard(1, 7))
	store.failSave = true
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	result := svc.SubmitReview(context.Background(), owner, 1, Good, 1000, ModeSpacedRepetition)

	// Reported, not raised: the study session must go on
	assert.False(t, result.Success)
	assert.Equal(t, 0, store.cards[1].CorrectCount)
	assert.Empty(t, store.sessions)
}

func TestSubmitReviewGoodProgression(t *testing.T) {
	store := newFakeStore()
	store.addCard(newCard(1, 7))
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	wantIntervals := []int{3, 8, 20}
	wantMastery := []string{"learning", "reviewing", "reviewing"}

	for i := range wantIntervals {
		result := svc.SubmitReview(context.Background(), owner, 1, Good, 1000, ModeSpacedRepetition)
		require.True(t, result.Success, "review %d", i+1)

		card := store.cards[1]
		assert.Equal(t, wantIntervals[i], card.IntervalDays, "review %d", i+1)
		assert.Equal(t, i+1, card.Repetitions, "review %d", i+1)

		progress := store.progress[progressKey{7, 1}]
		assert.Equal(t, wantMastery[i], progress.MasteryLevel, "review %d", i+1)
		assert.Equal(t, i+1, progress.TotalSessions, "review %d", i+1)
	}
}

func TestCardsForReviewOrderingAndIdempotence(t *testing.T) {
	store := newFakeStore()
	overdue := newCard(1, 7)
	overdue.NextReview = testNow.AddDate(0, 0, -3)
	dueToday := newCard(2, 7)
	dueToday.NextReview = testNow
	notDue := newCard(3, 7)
	notDue.NextReview = testNow.AddDate(0, 0, 5)
	otherOwner := newCard(4, 8)
	otherOwner.NextReview = testNow.AddDate(0, 0, -10)
	store.addCard(overdue)
	store.addCard(dueToday)
	store.addCard(notDue)
	store.addCard(otherOwner)

	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	cards, err := svc.CardsForReview(context.Background(), owner, 10)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, uint(1), cards[0].ID, "most overdue first")
	assert.Equal(t, uint(2), cards[1].ID)

	// No intervening review, same answer
	again, err := svc.CardsForReview(context.Background(), owner, 10)
	require.NoError(t, err)
	assert.Equal(t, cards, again)
}

func TestCardsForReviewLimit(t *testing.T) {
	store := newFakeStore()
	for i := uint(1); i <= 5; i++ {
		card := newCard(i, 7)
		card.NextReview = testNow.AddDate(0, 0, -int(i))
		store.addCard(card)
	}
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	cards, err := svc.CardsForReview(context.Background(), owner, 2)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestCardsForReviewEmptyOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cards, err := svc.CardsForReview(context.Background(), Owner{ID: 42, Kind: models.AccountAnonymous}, 0)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestStudyStatisticsZeroSessions(t *testing.T) {
	store := newFakeStore()
	store.addCard(newCard(1, 7))
	store.addCard(newCard(2, 7))
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	stats, err := svc.StudyStatistics(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalCards)
	assert.Equal(t, int64(2), stats.DueCards)
	assert.Equal(t, int64(2), stats.NewCards)
	assert.Equal(t, int64(0), stats.LearningCards)
	assert.Equal(t, int64(0), stats.ReviewingCards)
	assert.Equal(t, int64(0), stats.MasteredCards)
	assert.Equal(t, 0.0, stats.AverageAccuracy)
	assert.Equal(t, int64(0), stats.TotalStudyMinutes)
}

func TestStudyStatisticsBuckets(t *testing.T) {
	store := newFakeStore()
	for i := uint(1); i <= 4; i++ {
		store.addCard(newCard(i, 7))
	}
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}
	ctx := context.Background()

	// Card 1: one failed review -> learning
	require.True(t, svc.SubmitReview(ctx, owner, 1, Again, 60000, ModeSpacedRepetition).Success)
	// Card 2: two good reviews -> reviewing
	require.True(t, svc.SubmitReview(ctx, owner, 2, Good, 60000, ModeSpacedRepetition).Success)
	require.True(t, svc.SubmitReview(ctx, owner, 2, Good, 60000, ModeSpacedRepetition).Success)
	// Card 3: graduated to mastered via three easy reviews
	require.True(t, svc.SubmitReview(ctx, owner, 3, Easy, 60000, ModeSpacedRepetition).Success)
	require.True(t, svc.SubmitReview(ctx, owner, 3, Easy, 60000, ModeSpacedRepetition).Success)
	require.True(t, svc.SubmitReview(ctx, owner, 3, Easy, 60000, ModeSpacedRepetition).Success)
	// Card 4: never reviewed -> new

	stats, err := svc.StudyStatistics(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalCards)
	assert.Equal(t, int64(1), stats.NewCards)
	assert.Equal(t, int64(1), stats.LearningCards)
	assert.Equal(t, int64(1), stats.ReviewingCards)
	assert.Equal(t, int64(1), stats.MasteredCards)
	// 5 correct out of 6 sessions
	assert.Equal(t, 83.33, stats.AverageAccuracy)
	// 6 sessions x 1 minute each
	assert.Equal(t, int64(6), stats.TotalStudyMinutes)
}

func TestSubmitReviewConcurrentSameCard(t *testing.T) {
	store := newFakeStore()
	store.addCard(newCard(1, 7))
	svc := newTestService(store)
	owner := Owner{ID: 7, Kind: models.AccountRegistered}

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			svc.SubmitReview(context.Background(), owner, 1, Good, 1000, ModeSpacedRepetition)
		}()
	}
	wg.Wait()

	// Serialized per card: every review lands, none lost
	card := store.cards[1]
	assert.Equal(t, n, card.CorrectCount)
	assert.Equal(t, n, card.Repetitions)
	progress := store.progress[progressKey{7, 1}]
	assert.Equal(t, n, progress.TotalSessions)
	assert.Len(t, store.sessions, n)
}
