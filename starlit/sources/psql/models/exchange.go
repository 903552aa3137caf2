package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Exchange is one persisted (query, answer) pair owned by a user.
// Rows are immutable once created: the answer is written in the same
// insert as the query, never updated afterwards.
type Exchange struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      int       `json:"user_id" gorm:"not null;index"`
	User        User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	UserMessage string    `json:"user_message" gorm:"type:text;not null"`
	AIMessage   string    `json:"ai_message" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Exchange) BeforeCreate(tx *gorm.DB) (err error) {
	// Ensure UUID extension is enabled
	return tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
}
