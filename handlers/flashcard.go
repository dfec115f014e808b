package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/quizcraft/quizcraft-api/models"
	"github.com/quizcraft/quizcraft-api/srs"
	"github.com/quizcraft/quizcraft-api/utils"
)

type DBHandler struct {
	*gorm.DB
	SRS *srs.Service
}

func (db *DBHandler) GetFlashcardByID(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("flashcardID")
	if flashcardID == "" {
		http.Error(w, "Flashcard ID is required", http.StatusBadRequest)
		return
	}

	var flashcard models.Flashcard
	result := db.Where("public_id = ?", flashcardID).First(&flashcard)
	if result.Error != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	identity, ok := utils.GetIdentity(r)
	if !ok || flashcard.OwnerID != identity.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(flashcard); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (db *DBHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	deckID := r.PathValue("deckID")
	var deck models.Deck
	if err := db.Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	if deck.UserID != identity.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	type FlashcardRequestData struct {
		Front    string `json:"front"`
		Back     string `json:"back"`
		Category string `json:"category"`
		Tags     string `json:"tags"`
	}

	var req FlashcardRequestData
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	if req.Front == "" || req.Back == "" {
		http.Error(w, "Flashcard front and back are required", http.StatusBadRequest)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}

	// New cards start due immediately with the default scheduling state
	flashcard := models.Flashcard{
		Front:        req.Front,
		Back:         req.Back,
		Category:     req.Category,
		Tags:         req.Tags,
		PublicID:     publicID,
		DeckID:       deck.ID,
		OwnerID:      identity.UserID,
		OwnerKind:    identity.Kind,
		IntervalDays: srs.DefaultState().IntervalDays,
		Repetitions:  srs.DefaultState().Repetitions,
		Ease:         srs.DefaultState().Ease,
		NextReview:   time.Now(),
	}

	if err := db.Create(&flashcard).Error; err != nil {
		http.Error(w, "Failed to create flashcard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(flashcard)
}

func (db *DBHandler) UpdateFlashcardByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	flashcardID := r.PathValue("flashcardID")

	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var deck models.Deck
	if err := db.Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	if deck.UserID != identity.UserID {
		http.Error(w, "Forbidden: You do not own this deck", http.StatusForbidden)
		return
	}

	var flashcard models.Flashcard
	if err := db.Where("public_id = ? AND deck_id = ?", flashcardID, deck.ID).First(&flashcard).Error; err != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	// Content-only update; scheduling fields are owned by the srs service
	type FlashcardUpdateRequest struct {
		Front    *string `json:"front,omitempty"`
		Back     *string `json:"back,omitempty"`
		Category *string `json:"category,omitempty"`
		Tags     *string `json:"tags,omitempty"`
	}
	var req FlashcardUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Front != nil {
		flashcard.Front = *req.Front
	}
	if req.Back != nil {
		flashcard.Back = *req.Back
	}
	if req.Category != nil {
		flashcard.Category = *req.Category
	}
	if req.Tags != nil {
		flashcard.Tags = *req.Tags
	}

	if err := db.Save(&flashcard).Error; err != nil {
		http.Error(w, "Failed to update flashcard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(flashcard)
}

func (db *DBHandler) DeleteFlashcardByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	flashcardID := r.PathValue("flashcardID")

	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Not authorized", http.StatusForbidden)
		return
	}

	var deck models.Deck
	if err := db.Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	if deck.UserID != identity.UserID {
		http.Error(w, "Not authorized", http.StatusForbidden)
		return
	}

	result := db.Where("public_id = ? AND deck_id = ?", flashcardID, deck.ID).Delete(&models.Flashcard{})
	if result.Error != nil {
		http.Error(w, "Failed to delete flashcard", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (db *DBHandler) GetFlashcardsForDeck(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")

	var deck models.Deck
	if err := db.Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	if !deck.IsPublic {
		identity, ok := utils.GetIdentity(r)
		if !ok || deck.UserID != identity.UserID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	var flashcards []models.Flashcard
	if err := db.Where("deck_id = ?", deck.ID).Find(&flashcards).Error; err != nil {
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}
	if len(flashcards) == 0 {
		flashcards = []models.Flashcard{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flashcards)
}
