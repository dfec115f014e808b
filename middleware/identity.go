package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/quizcraft/quizcraft-api/auth"
	"github.com/quizcraft/quizcraft-api/config"
	"github.com/quizcraft/quizcraft-api/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved caller: a registered account or an anonymous
// study session. Kind matches the models.Account* constants.
type Identity struct {
	UserID   uint
	Kind     string
	Nickname string
}

// WithIdentity resolves the caller from either the auth cookie (registered
// users) or the X-Session-Token header (anonymous sessions) and attaches it
// to the request context. Anonymous users are created on first sight, so a
// fresh client can start studying without signing up.
func WithIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("auth_token"); err == nil {
			userID, err := auth.ParseToken(cookie.Value)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			var user models.User
			if err := config.Database.First(&user, userID).Error; err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity := &Identity{UserID: user.ID, Kind: user.AccountKind, Nickname: user.Nickname}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
			return
		}

		token := r.Header.Get("X-Session-Token")
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := uuid.Parse(token); err != nil {
			http.Error(w, "Invalid session token", http.StatusUnauthorized)
			return
		}

		var user models.User
		result := config.Database.Where("session_token = ?", token).First(&user)
		if result.Error != nil {
			// First request with this session token, create the owner row
			user = models.User{SessionToken: token, AccountKind: models.AccountAnonymous}
			if err := config.Database.Create(&user).Error; err != nil {
				log.Println("WithIdentity: failed to create anonymous user:", err)
				http.Error(w, "Failed to create session", http.StatusInternalServerError)
				return
			}
			log.Printf("WithIdentity: created anonymous user id=%d", user.ID)
		}

		identity := &Identity{UserID: user.ID, Kind: user.AccountKind}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	}
}

// FromContext returns the identity attached by WithIdentity, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}
