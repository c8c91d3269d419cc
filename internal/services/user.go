package services

import (
	"github.com/grantlyhq/grantly/backend/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UpsertEmail keeps the minimal local user record in step with the identity
// provider. Authentication never consults this table; it exists for local
// linkage only.
func (s *UserService) UpsertEmail(email string) error {
	if email == "" {
		return nil
	}
	var user models.User
	return s.db.Where(models.User{Email: email}).FirstOrCreate(&user).Error
}
