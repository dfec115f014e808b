package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/quizcraft/quizcraft-api/config"
	"github.com/quizcraft/quizcraft-api/handlers"
	"github.com/quizcraft/quizcraft-api/middleware"
	"github.com/quizcraft/quizcraft-api/srs"
	"github.com/quizcraft/quizcraft-api/storage"
)

func init() {
	// Load .env file if not in a deployed environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	// Initialize database connection
	config.Connect()

	store := storage.NewGormStore(config.Database)
	scheduler := srs.NewService(store, srs.DefaultParams())

	DBHandler := &handlers.DBHandler{DB: config.Database, SRS: scheduler}
	mux := http.NewServeMux()

	// Users and sessions
	mux.HandleFunc("POST /api/users", DBHandler.RegisterUser)
	mux.HandleFunc("POST /api/sessions", DBHandler.CreateAnonymousSession)

	// Decks
	mux.HandleFunc("GET /api/decks", middleware.WithIdentity(DBHandler.GetDecksForUser))
	mux.HandleFunc("GET /api/decks/{deckID}", DBHandler.GetDeckByID)
	mux.HandleFunc("POST /api/decks", middleware.WithIdentity(DBHandler.CreateDeck))
	mux.HandleFunc("POST /api/decks/import", middleware.WithIdentity(DBHandler.CreateDeckWithCards))
	mux.HandleFunc("PUT /api/decks/{deckID}", middleware.WithIdentity(DBHandler.UpdateDeckByID))
	mux.HandleFunc("DELETE /api/decks/{deckID}", middleware.WithIdentity(DBHandler.DeleteDeckByID))

	// Flashcards
	mux.HandleFunc("POST /api/decks/{deckID}/flashcards", middleware.WithIdentity(DBHandler.CreateFlashcard))
	mux.HandleFunc("GET /api/decks/{deckID}/flashcards", DBHandler.GetFlashcardsForDeck)
	mux.HandleFunc("GET /api/decks/{deckID}/flashcards/{flashcardID}", middleware.WithIdentity(DBHandler.GetFlashcardByID))
	mux.HandleFunc("PUT /api/decks/{deckID}/flashcards/{flashcardID}", middleware.WithIdentity(DBHandler.UpdateFlashcardByID))
	mux.HandleFunc("DELETE /api/decks/{deckID}/flashcards/{flashcardID}", middleware.WithIdentity(DBHandler.DeleteFlashcardByID))

	// Study
	mux.HandleFunc("POST /api/study/reviews", middleware.WithIdentity(DBHandler.SubmitReview))
	mux.HandleFunc("GET /api/study/due", middleware.WithIdentity(DBHandler.GetDueCards))
	mux.HandleFunc("GET /api/study/statistics", middleware.WithIdentity(DBHandler.GetStudyStatistics))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://app.quizcraft.dev"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Session-Token", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(mux)

	serverAddr := "0.0.0.0:" + config.Env.Port
	log.Printf("Listening on %s", serverAddr)
	http.ListenAndServe(serverAddr, corsHandler)
}
