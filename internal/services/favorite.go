package services

import (
	"github.com/grantlyhq/grantly/backend/internal/models"
	"gorm.io/gorm"
)

type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

type CreateFavoriteRequest struct {
	GrantID uint `json:"grant_id" binding:"required"`
}

// Create bookmarks a grant for the given auth subject. The grant must exist.
func (s *FavoriteService) Create(subject string, req *CreateFavoriteRequest) (*models.Favorite, error) {
	var grant models.Grant
	if err := s.db.First(&grant, req.GrantID).Error; err != nil {
		return nil, err
	}

	favorite := models.Favorite{
		GrantID: req.GrantID,
		AuthID:  subject,
	}
	if err := s.db.Create(&favorite).Error; err != nil {
		return nil, err
	}
	return &favorite, nil
}

// ListBySubject returns the subject's favorites with their grants attached.
func (s *FavoriteService) ListBySubject(subject string) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := s.db.Preload("Grant").Where("auth_id = ?", subject).Order("id").Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

// Delete removes a favorite owned by the subject. A favorite belonging to a
// different subject is indistinguishable from a missing one.
func (s *FavoriteService) Delete(id uint, subject string) error {
	result := s.db.Where("id = ? AND auth_id = ?", id, subject).Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
