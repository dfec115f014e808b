package config

import (
	"os"

	"github.com/quizcraft/quizcraft-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Database *gorm.DB

// Connect opens the database and migrates the schema. Postgres is used when
// DB_URL is set; otherwise a local SQLite file keeps development setup-free.
func Connect() error {
	var err error
	dbURL := os.Getenv("DB_URL")
	if dbURL != "" {
		Database, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "quizcraft.db"
		}
		Database, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		panic("failed to connect database")
	}

	err = Database.AutoMigrate(
		&models.User{},
		&models.Deck{},
		&models.Flashcard{},
		&models.StudyProgress{},
		&models.StudySession{},
	)
	if err != nil {
		panic("failed to auto migrate database")
	}

	return nil
}
