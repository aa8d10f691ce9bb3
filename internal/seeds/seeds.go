// Package seeds provisions the baseline data a fresh deployment needs:
// the default room set and the bootstrap admin account. Every seed is
// idempotent and safe to run on each startup.
package seeds

import (
	"errors"

	"github.com/manishhsuthar/EduConnect/internal/config"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/manishhsuthar/EduConnect/internal/store"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type defaultRoom struct {
	Name        string
	Description string
}

var defaultRooms = []defaultRoom{
	{"general", "Open discussion for the whole campus"},
	{"announcements", "Official announcements. Faculty post, everyone reads."},
	{"Help & Support", "Ask for help with anything"},
	{"Computer Department", "Computer engineering department room"},
	{"Civil Department", "Civil engineering department room"},
	{"Project Alpha", "Project Alpha workspace"},
	{"Project Beta", "Project Beta workspace"},
	{"Project Gamma", "Project Gamma workspace"},
	{"Smart India Hackathone", "Smart India Hackathon coordination"},
	{"PU Code", "Coding club room"},
	{"IdeaThone", "Ideathon coordination"},
}

// SeedRooms creates any default room that does not exist yet.
func SeedRooms(st *store.Store) error {
	for _, room := range defaultRooms {
		_, err := st.CreateGroupRoom(room.Name, room.Description, nil)
		if errors.Is(err, store.ErrDuplicateRoomName) {
			continue
		}
		if err != nil {
			return err
		}
		logger.Info().Str("room", room.Name).Msg("Seeded default room")
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account if no admin exists.
// Credentials come from config; the defaults are only for local
// development.
func SeedAdmin(db *gorm.DB) error {
	email := config.AppConfig.AdminEmail
	if email == "" {
		email = "admin@gmail.com"
	}
	password := config.AppConfig.AdminPassword
	if password == "" {
		password = "admin123"
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:          "Admin",
		Email:             email,
		Password:          string(hashed),
		Role:              models.RoleAdmin,
		IsApproved:        true,
		IsProfileComplete: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info().Str("email", email).Msg("Seeded bootstrap admin account")
	return nil
}
