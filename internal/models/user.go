package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Username string `gorm:"not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Faculty accounts start unapproved and cannot sign in until an
	// admin approves them; students and admins are approved at creation.
	Role       Role   `gorm:"type:text;not null" json:"role"`
	IsApproved bool   `gorm:"default:false" json:"isApproved"`
	Department string `json:"department"`

	IsProfileComplete bool   `gorm:"default:false" json:"isProfileComplete"`
	ProfilePhoto      string `json:"profilePhoto"`

	// Student-specific fields. The enrollment number is PII and stored
	// encrypted, as are the faculty employee id and office location.
	EnrollmentNumber EncryptedString `gorm:"type:text" json:"enrollmentNumber,omitempty"`
	Semester         string          `json:"semester,omitempty"`
	Year             string `json:"year,omitempty"`
	Division         string `json:"division,omitempty"`
	College          string `json:"college,omitempty"`
	AreasOfInterest  string `json:"areasOfInterest,omitempty"`
	Skills           string `json:"skills,omitempty"`

	// Faculty-specific fields
	EmployeeID     EncryptedString `gorm:"type:text" json:"employeeId,omitempty"`
	Designation    string          `json:"designation,omitempty"`
	SubjectsTaught string          `json:"subjectsTaught,omitempty"`
	OfficeLocation EncryptedString `gorm:"type:text" json:"officeLocation,omitempty"`

	ResetToken       string    `json:"-"`
	ResetTokenExpiry time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// PublicProfile is the minimal sender identity denormalized onto messages
// at read time.
type PublicProfile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfilePhoto string `json:"profilePhoto"`
	Role         Role   `json:"role"`
	Department   string `json:"department,omitempty"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Username:     u.Username,
		ProfilePhoto: u.ProfilePhoto,
		Role:         u.Role,
		Department:   u.Department,
	}
}
