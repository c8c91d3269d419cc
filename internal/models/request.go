package models

import "time"

// Request is a user-submitted correction or suggestion tied to a grant.
// Rows are removed by the database when the referenced grant is deleted.
type Request struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Subject    string    `gorm:"size:255;not null" json:"subject"`
	Suggestion string    `gorm:"size:1000;not null" json:"suggestion"`
	GrantID    uint      `gorm:"not null;index" json:"grant_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Request) TableName() string { return "requests" }
