package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/quizcraft/quizcraft-api/auth"
	"github.com/quizcraft/quizcraft-api/config"
	"github.com/quizcraft/quizcraft-api/models"
)

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Domain:   config.Env.Domain,
		Secure:   config.Env.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}

// RegisterUser creates a registered account (or logs an existing one back
// in) and sets the auth cookie.
func (db *DBHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Nickname == "" {
		http.Error(w, "Nickname is required", http.StatusBadRequest)
		return
	}

	var existing models.User
	result := db.Where("nickname = ? AND account_kind = ?", req.Nickname, models.AccountRegistered).First(&existing)
	if result.Error == nil {
		tokenString, err := auth.CreateToken(existing.ID, existing.Nickname)
		if err != nil {
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			log.Println("RegisterUser: token generation error:", err)
			return
		}

		setAuthCookie(w, tokenString)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "User already exists!",
		})
		return
	}

	user := models.User{
		Nickname:    req.Nickname,
		AccountKind: models.AccountRegistered,
	}
	if err := db.Create(&user).Error; err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		log.Println("RegisterUser: database creation error:", err)
		return
	}

	tokenString, err := auth.CreateToken(user.ID, user.Nickname)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		log.Println("RegisterUser: token generation error:", err)
		return
	}

	setAuthCookie(w, tokenString)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user": user,
	})
	log.Printf("RegisterUser: created user %s", user.Nickname)
}

// CreateAnonymousSession issues a session token a client can use as an
// owner without registering. Clients that mint their own UUID instead get a
// user row lazily from the identity middleware; this endpoint just makes the
// token server-issued.
func (db *DBHandler) CreateAnonymousSession(w http.ResponseWriter, r *http.Request) {
	token := uuid.NewString()

	user := models.User{
		SessionToken: token,
		AccountKind:  models.AccountAnonymous,
	}
	if err := db.Create(&user).Error; err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		log.Println("CreateAnonymousSession: database creation error:", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"sessionToken": token,
	})
	log.Printf("CreateAnonymousSession: created session user id=%d", user.ID)
}
