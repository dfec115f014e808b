package utils

import (
	"net/http"

	"github.com/quizcraft/quizcraft-api/middleware"
)

func GetIdentity(r *http.Request) (*middleware.Identity, bool) {
	return middleware.FromContext(r.Context())
}
