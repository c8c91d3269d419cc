package models

import "time"

// Grant represents a funding opportunity
type Grant struct {
	ID                            uint       `gorm:"primaryKey" json:"id"`
	CompetitionName               string     `gorm:"size:500" json:"competition_name"`
	AreaFocus                     string     `gorm:"size:255" json:"area_focus"`
	SponsoringEntity              string     `gorm:"size:255" json:"sponsoring_entity"`
	Website                       string     `gorm:"size:500" json:"website"`
	MostRecentApplicationDueDate  *time.Time `json:"most_recent_application_due_date"`
	Amount                        int        `json:"amount"`
	AmountNotes                   string     `gorm:"size:1000" json:"amount_notes"`
	GeographicRegion              string     `gorm:"size:255" json:"geographic_region"`
	Country                       string     `gorm:"size:255" json:"country"`
	DomainAreas                   string     `gorm:"size:500" json:"domain_areas"`
	TargetEntrepreneurDemographic string     `gorm:"size:255" json:"target_entrepreneur_demographic"`
	Notes                         string     `gorm:"size:5000" json:"notes"`
	EarlyStageFunding             bool       `json:"early_stage_funding"`
	IsReviewed                    bool       `json:"is_reviewed"`
	HasRequests                   bool       `json:"has_requests"`
	DetailsLastUpdated            *time.Time `json:"details_last_updated"`
	CreatedAt                     time.Time  `json:"created_at"`
	UpdatedAt                     time.Time  `json:"updated_at"`

	Requests []Request `gorm:"foreignKey:GrantID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"requests"`
}

func (Grant) TableName() string { return "grants" }
