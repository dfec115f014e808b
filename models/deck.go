package models

import (
	"time"

	"gorm.io/gorm"
)

// Deck represents a collection of flashcards
type Deck struct {
	gorm.Model
	Title    string `gorm:"not null;size:100"`
	UserID   uint   `gorm:"not null"`
	PublicID string `gorm:"size:100;uniqueIndex"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`

	Flashcards []Flashcard `gorm:"foreignKey:DeckID"`

	IsPublic    bool       `gorm:"default:false"`
	LastStudied *time.Time `gorm:"default:null"`
}
