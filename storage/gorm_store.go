package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quizcraft/quizcraft-api/models"
	"github.com/quizcraft/quizcraft-api/srs"
)

// GormStore implements srs.Store on a GORM database handle.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) FlashcardByID(ctx context.Context, id uint) (*models.Flashcard, error) {
	var card models.Flashcard
	if err := s.DB.WithContext(ctx).First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, srs.ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// SaveReview persists one review as a single transaction: the card's
// denormalized scheduling fields, the progress upsert and the appended
// session commit together or not at all.
func (s *GormStore) SaveReview(ctx context.Context, card *models.Flashcard, progress *models.StudyProgress, session models.StudySession) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(card).Error; err != nil {
			return err
		}
		if progress.ID == 0 {
			if err := tx.Create(progress).Error; err != nil {
				return err
			}
		} else if err := tx.Save(progress).Error; err != nil {
			return err
		}
		session.StudyProgressID = progress.ID
		return tx.Create(&session).Error
	})
}

func (s *GormStore) CountFlashcards(ctx context.Context, owner srs.Owner) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Flashcard{}).
		Where("owner_id = ? AND owner_kind = ?", owner.ID, owner.Kind).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountDueFlashcards(ctx context.Context, owner srs.Owner, due time.Time) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Flashcard{}).
		Where("owner_id = ? AND owner_kind = ? AND next_review <= ?", owner.ID, owner.Kind, due).
		Count(&n).Error
	return n, err
}

func (s *GormStore) DueFlashcards(ctx context.Context, owner srs.Owner, due time.Time, limit int) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND owner_kind = ? AND next_review <= ?", owner.ID, owner.Kind, due).
		Order("next_review asc").
		Limit(limit).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return cards, nil
}

func (s *GormStore) ProgressFor(ctx context.Context, ownerID, flashcardID uint) (*models.StudyProgress, error) {
	var progress models.StudyProgress
	err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND flashcard_id = ?", ownerID, flashcardID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *GormStore) ProgressForOwner(ctx context.Context, owner srs.Owner) ([]models.StudyProgress, error) {
	var progresses []models.StudyProgress
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", owner.ID).
		Find(&progresses).Error
	return progresses, err
}
