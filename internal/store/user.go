package store

import (
	"errors"
	"strings"

	"github.com/manishhsuthar/EduConnect/internal/models"
	"gorm.io/gorm"
)

func (s *Store) GetUser(id string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// ListMessagingUsers returns approved users other than the caller, for
// the start-a-conversation picker. Pending faculty are hidden until an
// admin approves them.
func (s *Store) ListMessagingUsers(userID, search string) ([]models.User, error) {
	query := s.db.Where("id <> ? AND is_approved = ?", userID, true)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	var users []models.User
	err := query.Order("username ASC").Find(&users).Error
	return users, err
}

// UsersByIDs loads the given users, skipping ids that no longer exist.
func (s *Store) UsersByIDs(ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}
