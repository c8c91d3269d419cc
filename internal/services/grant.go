package services

import (
	"time"

	"github.com/grantlyhq/grantly/backend/internal/models"
	"gorm.io/gorm"
)

type GrantService struct {
	db *gorm.DB
}

func NewGrantService(db *gorm.DB) *GrantService {
	return &GrantService{db: db}
}

type GrantListRequest struct {
	AreaFocus        string `form:"area_focus"`
	GeographicRegion string `form:"geographic_region"`
	Country          string `form:"country"`
	IsReviewed       *bool  `form:"is_reviewed"`
	EarlyStage       *bool  `form:"early_stage_funding"`
}

type UpdateGrantRequest struct {
	CompetitionName               *string    `json:"competition_name"`
	AreaFocus                     *string    `json:"area_focus"`
	SponsoringEntity              *string    `json:"sponsoring_entity"`
	Website                       *string    `json:"website"`
	MostRecentApplicationDueDate  *time.Time `json:"most_recent_application_due_date"`
	Amount                        *int       `json:"amount"`
	AmountNotes                   *string    `json:"amount_notes"`
	GeographicRegion              *string    `json:"geographic_region"`
	Country                       *string    `json:"country"`
	DomainAreas                   *string    `json:"domain_areas"`
	TargetEntrepreneurDemographic *string    `json:"target_entrepreneur_demographic"`
	Notes                         *string    `json:"notes"`
	EarlyStageFunding             *bool      `json:"early_stage_funding"`
	IsReviewed                    *bool      `json:"is_reviewed"`
}

// List returns all grants, each with its pending requests attached. A grant
// without requests carries an empty slice, not null.
func (s *GrantService) List(req *GrantListRequest) ([]models.Grant, error) {
	query := s.db.Model(&models.Grant{}).Preload("Requests")

	if req != nil {
		if req.AreaFocus != "" {
			query = query.Where("area_focus = ?", req.AreaFocus)
		}
		if req.GeographicRegion != "" {
			query = query.Where("geographic_region = ?", req.GeographicRegion)
		}
		if req.Country != "" {
			query = query.Where("country = ?", req.Country)
		}
		if req.IsReviewed != nil {
			query = query.Where("is_reviewed = ?", *req.IsReviewed)
		}
		if req.EarlyStage != nil {
			query = query.Where("early_stage_funding = ?", *req.EarlyStage)
		}
	}

	var grants []models.Grant
	if err := query.Order("id").Find(&grants).Error; err != nil {
		return nil, err
	}

	for i := range grants {
		if grants[i].Requests == nil {
			grants[i].Requests = []models.Request{}
		}
	}

	return grants, nil
}

// GetByID returns a grant with its requests.
func (s *GrantService) GetByID(id uint) (*models.Grant, error) {
	var grant models.Grant
	if err := s.db.Preload("Requests").First(&grant, id).Error; err != nil {
		return nil, err
	}
	if grant.Requests == nil {
		grant.Requests = []models.Request{}
	}
	return &grant, nil
}

// Update edits a grant's mutable fields. A missing grant surfaces as
// gorm.ErrRecordNotFound from the existence check, never a silent zero-row
// update.
func (s *GrantService) Update(id uint, req *UpdateGrantRequest) (*models.Grant, error) {
	var grant models.Grant
	if err := s.db.First(&grant, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.CompetitionName != nil {
		updates["competition_name"] = *req.CompetitionName
	}
	if req.AreaFocus != nil {
		updates["area_focus"] = *req.AreaFocus
	}
	if req.SponsoringEntity != nil {
		updates["sponsoring_entity"] = *req.SponsoringEntity
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.MostRecentApplicationDueDate != nil {
		updates["most_recent_application_due_date"] = *req.MostRecentApplicationDueDate
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.AmountNotes != nil {
		updates["amount_notes"] = *req.AmountNotes
	}
	if req.GeographicRegion != nil {
		updates["geographic_region"] = *req.GeographicRegion
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.DomainAreas != nil {
		updates["domain_areas"] = *req.DomainAreas
	}
	if req.TargetEntrepreneurDemographic != nil {
		updates["target_entrepreneur_demographic"] = *req.TargetEntrepreneurDemographic
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.EarlyStageFunding != nil {
		updates["early_stage_funding"] = *req.EarlyStageFunding
	}
	if req.IsReviewed != nil {
		updates["is_reviewed"] = *req.IsReviewed
	}

	if len(updates) > 0 {
		updates["details_last_updated"] = time.Now()
		if err := s.db.Model(&grant).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

// Delete removes a grant. Dependent requests and favorites are removed by
// the database's cascading foreign keys.
func (s *GrantService) Delete(id uint) error {
	var grant models.Grant
	if err := s.db.First(&grant, id).Error; err != nil {
		return err
	}
	return s.db.Delete(&grant).Error
}

// ReconcileHasRequests re-derives every grant's has_requests flag from the
// requests table. Run periodically; the flag is also maintained inline on
// request create/delete.
func (s *GrantService) ReconcileHasRequests() (int64, error) {
	sub := s.db.Model(&models.Request{}).
		Select("1").
		Where("requests.grant_id = grants.id")

	set := s.db.Model(&models.Grant{}).
		Where("has_requests <> EXISTS (?)", sub).
		Update("has_requests", gorm.Expr("EXISTS (?)", sub))
	if set.Error != nil {
		return 0, set.Error
	}
	return set.RowsAffected, nil
}
