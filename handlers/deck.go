package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/quizcraft/quizcraft-api/models"
	"github.com/quizcraft/quizcraft-api/srs"
	"github.com/quizcraft/quizcraft-api/utils"
)

// /api/decks/{deckID}

func (db *DBHandler) GetDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	var deck models.Deck
	if err := db.Preload("Flashcards").Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		log.Printf("GetDeckByID: Deck not found for public_id=%s: %v", deckID, err)
		http.Error(w, fmt.Sprintf("Deck with ID %s not found", deckID), http.StatusNotFound)
		return
	}

	identity, ok := utils.GetIdentity(r)
	isOwner := ok && deck.UserID == identity.UserID

	type DeckResponse struct {
		models.Deck
		IsOwner bool `json:"IsOwner"`
	}

	response := DeckResponse{
		Deck:    deck,
		IsOwner: isOwner,
	}

	if !deck.IsPublic && !isOwner {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// POST /api/decks
func (db *DBHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		log.Printf("CreateDeck: Unauthorized request")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	type CreateDeckRequest struct {
		Title    string `json:"title"`
		IsPublic bool   `json:"isPublic"`
	}
	var req CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("CreateDeck: Invalid request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Deck title is required", http.StatusBadRequest)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		log.Printf("CreateDeck: Failed to generate publicID: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	deck := models.Deck{
		Title:    req.Title,
		UserID:   identity.UserID,
		IsPublic: req.IsPublic,
		PublicID: publicID,
	}

	if err := db.Create(&deck).Error; err != nil {
		log.Printf("CreateDeck: Failed to create deck: %v", err)
		http.Error(w, "Failed to create deck", http.StatusInternalServerError)
		return
	}

	log.Printf("CreateDeck: Successfully created deck with publicID=%s for userID=%d", publicID, identity.UserID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deck)
}

// CreateDeckWithCards creates a deck and a batch of flashcards in one
// transaction. This is the intake endpoint for generated card batches: the
// generation collaborator produces validated front/back pairs and posts them
// here as a deck.
func (db *DBHandler) CreateDeckWithCards(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	type CardData struct {
		Front    string `json:"front"`
		Back     string `json:"back"`
		Category string `json:"category"`
		Tags     string `json:"tags"`
	}
	var requestData struct {
		Title    string     `json:"title"`
		IsPublic bool       `json:"isPublic"`
		Cards    []CardData `json:"cards"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestData.Title == "" {
		http.Error(w, "Deck title is required", http.StatusBadRequest)
		return
	}

	deckPublicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}

	deck := models.Deck{
		Title:    requestData.Title,
		UserID:   identity.UserID,
		IsPublic: requestData.IsPublic,
		PublicID: deckPublicID,
	}

	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	if err := tx.Create(&deck).Error; err != nil {
		tx.Rollback()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	for _, card := range requestData.Cards {
		if card.Front == "" || card.Back == "" {
			tx.Rollback()
			http.Error(w, "Each flashcard must have a front and back", http.StatusBadRequest)
			return
		}

		cardPublicID, err := gonanoid.New()
		if err != nil {
			tx.Rollback()
			http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
			return
		}

		flashcard := models.Flashcard{
			Front:        card.Front,
			Back:         card.Back,
			Category:     card.Category,
			Tags:         card.Tags,
			PublicID:     cardPublicID,
			DeckID:       deck.ID,
			OwnerID:      identity.UserID,
			OwnerKind:    identity.Kind,
			IntervalDays: srs.DefaultState().IntervalDays,
			Repetitions:  srs.DefaultState().Repetitions,
			Ease:         srs.DefaultState().Ease,
			NextReview:   now,
		}

		if err := tx.Create(&flashcard).Error; err != nil {
			tx.Rollback()
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	if err := db.Preload("Flashcards").First(&deck, deck.ID).Error; err != nil {
		http.Error(w, "Error retrieving created deck", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deck)
}

func (db *DBHandler) UpdateDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	identity, ok := utils.GetIdentity(r)
	if !ok {
		log.Printf("UpdateDeckByID: Unauthorized request")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var deck models.Deck
	if err := db.Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		log.Printf("UpdateDeckByID: Deck not found for public_id=%s: %v", deckID, err)
		http.Error(w, fmt.Sprintf("Deck with ID %s not found", deckID), http.StatusNotFound)
		return
	}

	if deck.UserID != identity.UserID {
		log.Printf("UpdateDeckByID: Unauthorized update attempt by userID=%d for deckID=%s", identity.UserID, deckID)
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	type UpdateDeckRequest struct {
		Title    *string `json:"title,omitempty"`
		IsPublic *bool   `json:"isPublic,omitempty"`
	}

	var req UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("UpdateDeckByID: Invalid request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	updated := false
	if req.Title != nil && deck.Title != *req.Title {
		deck.Title = *req.Title
		updated = true
	}
	if req.IsPublic != nil && deck.IsPublic != *req.IsPublic {
		deck.IsPublic = *req.IsPublic
		updated = true
	}

	if updated {
		if err := db.Save(&deck).Error; err != nil {
			log.Printf("UpdateDeckByID: Failed to update deckID=%s: %v", deckID, err)
			http.Error(w, fmt.Sprintf("Failed to update deck with ID %s", deckID), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deck)
}

func (db *DBHandler) DeleteDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	identity, ok := utils.GetIdentity(r)
	if !ok {
		log.Printf("DeleteDeckByID: Unauthorized request")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var deck models.Deck
	if err := db.Where("public_id = ?", deckID).First(&deck).Error; err != nil {
		http.Error(w, fmt.Sprintf("Deck not found for public_id=%s", deckID), http.StatusNotFound)
		return
	}

	if deck.UserID != identity.UserID {
		log.Printf("DeleteDeckByID: Unauthorized delete attempt by userID=%d for deckID=%s", identity.UserID, deckID)
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	// Cascade: the deck's flashcards go with it
	if err := db.Where("deck_id = ?", deck.ID).Delete(&models.Flashcard{}).Error; err != nil {
		log.Printf("DeleteDeckByID: Failed to delete flashcards for deckID=%s: %v", deckID, err)
		http.Error(w, "Failed to delete deck contents", http.StatusInternalServerError)
		return
	}

	result := db.Delete(&deck)
	if result.Error != nil {
		log.Printf("DeleteDeckByID: Failed to delete deckID=%s: %v", deckID, result.Error)
		http.Error(w, fmt.Sprintf("Failed to delete deck with ID %s", deckID), http.StatusInternalServerError)
		return
	}

	log.Printf("DeleteDeckByID: Successfully deleted deckID=%s", deckID)
	w.WriteHeader(http.StatusNoContent)
}

func (db *DBHandler) GetDecksForUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var decks []models.Deck
	if err := db.Preload("Flashcards").Where("user_id = ?", identity.UserID).Find(&decks).Error; err != nil {
		log.Printf("GetDecksForUser: Failed to fetch decks for userID=%d: %v", identity.UserID, err)
		http.Error(w, "Failed to fetch decks", http.StatusInternalServerError)
		return
	}
	if len(decks) == 0 {
		decks = []models.Deck{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decks)
}
