package models

import "time"

// Favorite bookmarks a grant for a user, keyed by the identity provider's
// subject id. No uniqueness constraint on (grant_id, auth_id): duplicate
// favorites are representable, matching the shipped schema.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GrantID   uint      `gorm:"not null;index" json:"grant_id"`
	AuthID    string    `gorm:"size:200;not null;index" json:"auth_id"`
	CreatedAt time.Time `json:"created_at"`

	Grant *Grant `gorm:"foreignKey:GrantID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"grant,omitempty"`
}

func (Favorite) TableName() string { return "favorites" }
