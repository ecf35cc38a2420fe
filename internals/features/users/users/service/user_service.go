package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"presensiku_backend/internals/features/users/users/model"
)

var ErrUserNotFound = errors.New("user tidak ditemukan")

// FindUser: boundary lookup yang dipakai decision engine & biometrics.
func FindUser(db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var user model.UserModel
	if err := db.Where("user_id = ? AND user_is_active = ?", id, true).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
