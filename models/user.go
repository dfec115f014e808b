package models

import "gorm.io/gorm"

// Account kinds. Anonymous sessions own decks and flashcards the same way
// registered accounts do; the kind travels with every owner-scoped query.
const (
	AccountRegistered = "user"
	AccountAnonymous  = "anonymous"
)

// User represents an owner in the system: a registered account or an
// anonymous study session identified by its session token.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:100;index"`
	SessionToken string `gorm:"size:64;index"`
	AccountKind  string `gorm:"not null;size:20"`

	Decks []Deck `gorm:"foreignKey:UserID"`
}
