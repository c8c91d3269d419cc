package services

import (
	"github.com/grantlyhq/grantly/backend/internal/models"
	"gorm.io/gorm"
)

type RequestService struct {
	db *gorm.DB
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

type CreateRequestRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Suggestion string `json:"suggestion" binding:"required"`
}

// Create files a suggestion against a grant and marks the grant as having
// open requests. The grant must exist.
func (s *RequestService) Create(grantID uint, req *CreateRequestRequest) (*models.Request, error) {
	var grant models.Grant
	if err := s.db.First(&grant, grantID).Error; err != nil {
		return nil, err
	}

	request := models.Request{
		Subject:    req.Subject,
		Suggestion: req.Suggestion,
		GrantID:    grantID,
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}

	if !grant.HasRequests {
		if err := s.db.Model(&grant).Update("has_requests", true).Error; err != nil {
			return nil, err
		}
	}

	return &request, nil
}

// Delete resolves a suggestion. When it was the grant's last open request,
// the grant's has_requests flag is cleared.
func (s *RequestService) Delete(id uint) error {
	var request models.Request
	if err := s.db.First(&request, id).Error; err != nil {
		return err
	}

	if err := s.db.Delete(&request).Error; err != nil {
		return err
	}

	var remaining int64
	if err := s.db.Model(&models.Request{}).Where("grant_id = ?", request.GrantID).Count(&remaining).Error; err != nil {
		return err
	}
	if remaining == 0 {
		return s.db.Model(&models.Grant{}).Where("id = ?", request.GrantID).
			Update("has_requests", false).Error
	}
	return nil
}
