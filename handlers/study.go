package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/quizcraft/quizcraft-api/models"
	"github.com/quizcraft/quizcraft-api/srs"
	"github.com/quizcraft/quizcraft-api/utils"
)

var validate = validator.New()

// ReviewRequest is one review submission. The response and study-mode enums
// are closed sets, enforced here so the scheduler never sees an unknown
// value.
type ReviewRequest struct {
	FlashcardID    uint   `json:"flashcardId" validate:"required"`
	Response       string `json:"response" validate:"required,oneof=again hard good easy"`
	ResponseTimeMs int64  `json:"responseTimeMs" validate:"gte=0"`
	StudyMode      string `json:"studyMode" validate:"omitempty,oneof=spaced_repetition cram test match"`
}

// POST /api/study/reviews
func (db *DBHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req ReviewRequest
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid review: "+err.Error(), http.StatusBadRequest)
		return
	}

	// The card must exist and belong to the caller before the review counts
	var card models.Flashcard
	if err := db.First(&card, req.FlashcardID).Error; err != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}
	if card.OwnerID != identity.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	owner := srs.Owner{ID: identity.UserID, Kind: identity.Kind}
	result := db.SRS.SubmitReview(r.Context(), owner, req.FlashcardID,
		srs.Response(req.Response), req.ResponseTimeMs, srs.StudyMode(req.StudyMode))

	// A failed submission is still a 200: the client checks the success
	// flag and keeps the study session going
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GET /api/study/due
func (db *DBHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	owner := srs.Owner{ID: identity.UserID, Kind: identity.Kind}
	cards, err := db.SRS.CardsForReview(r.Context(), owner, limit)
	if err != nil {
		log.Printf("GetDueCards: failed for userID=%d: %v", identity.UserID, err)
		http.Error(w, "Failed to fetch due cards", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}

// GET /api/study/statistics
func (db *DBHandler) GetStudyStatistics(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	owner := srs.Owner{ID: identity.UserID, Kind: identity.Kind}
	stats, err := db.SRS.StudyStatistics(r.Context(), owner)
	if err != nil {
		log.Printf("GetStudyStatistics: failed for userID=%d: %v", identity.UserID, err)
		http.Error(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
