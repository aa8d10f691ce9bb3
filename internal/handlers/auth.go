package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/config"
	"github.com/manishhsuthar/EduConnect/internal/database"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
	"github.com/manishhsuthar/EduConnect/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const tokenCookieMaxAge = 7 * 24 * 60 * 60

func currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

func setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", token, tokenCookieMaxAge, "/", "", false, true)
}

func clearTokenCookie(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
}

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

// Register creates a student or faculty account. Faculty start
// unapproved and get no session token until an admin approves them.
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.Role(strings.ToLower(input.Role))
	if role != models.RoleStudent && role != models.RoleFaculty {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be student or faculty"})
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists with this email"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:   input.Username,
		Email:      input.Email,
		Password:   string(hashedPassword),
		Role:       role,
		IsApproved: role == models.RoleStudent,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		logger.Warn().Err(err).Str("email", input.Email).Msg("Registration failed")
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	requiresApproval := role == models.RoleFaculty
	if requiresApproval {
		// Faculty must wait for admin approval before they can sign in.
		clearTokenCookie(c)
	} else {
		token, err := utils.GenerateToken(user.ID)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to issue token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}
		setTokenCookie(c, token)
	}

	message := "User registered successfully"
	if requiresApproval {
		message = "Registration successful. Your faculty account is pending admin approval."
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"message":          message,
		"requiresApproval": requiresApproval,
		"user":             user,
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Role == models.RoleFaculty && !user.IsApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your faculty account is pending admin approval."})
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	setTokenCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"token":   token,
		"user":    user,
	})
}

func Logout(c *gin.Context) {
	clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user's profile.
func Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateAccountInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func UpdateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if username := strings.TrimSpace(input.Username); username != "" {
		user.Username = username
	}

	if email := strings.ToLower(strings.TrimSpace(input.Email)); email != "" && email != strings.ToLower(user.Email) {
		var existing models.User
		if err := database.DB.Where("email = ? AND id <> ?", email, user.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already in use"})
			return
		}
		user.Email = email
	}

	if input.NewPassword != "" {
		if input.CurrentPassword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is required"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
			return
		}
		if len(input.NewPassword) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be at least 6 characters"})
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.Password = string(hashed)
	}

	if err := database.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		return
	}

	createNotification(user.ID, "Account settings updated",
		"Your account information was updated successfully.",
		models.NotificationSystem, "/dashboard")

	c.JSON(http.StatusOK, gin.H{
		"message": "Account updated successfully",
		"user":    user,
	})
}

type ProfileSetupInput struct {
	Department       string `json:"department"`
	ProfilePhoto     string `json:"profilePhoto"`
	EnrollmentNumber string `json:"enrollmentNumber"`
	Semester         string `json:"semester"`
	Year             string `json:"year"`
	Division         string `json:"division"`
	College          string `json:"college"`
	AreasOfInterest  string `json:"areasOfInterest"`
	Skills           string `json:"skills"`
	EmployeeID       string `json:"employeeId"`
	Designation      string `json:"designation"`
	SubjectsTaught   string `json:"subjectsTaught"`
	OfficeLocation   string `json:"officeLocation"`
}

// ProfileSetup fills in the role-specific profile fields and marks the
// profile complete. The photo is uploaded separately and referenced by
// URL here.
func ProfileSetup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input ProfileSetupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user.Department = input.Department
	if input.ProfilePhoto != "" {
		user.ProfilePhoto = input.ProfilePhoto
	}

	switch user.Role {
	case models.RoleStudent:
		user.EnrollmentNumber = models.EncryptedString(input.EnrollmentNumber)
		user.Semester = input.Semester
		user.Year = input.Year
		user.Division = input.Division
		user.College = input.College
		user.AreasOfInterest = input.AreasOfInterest
		user.Skills = input.Skills
	case models.RoleFaculty:
		user.EmployeeID = models.EncryptedString(input.EmployeeID)
		user.Designation = input.Designation
		user.SubjectsTaught = input.SubjectsTaught
		user.OfficeLocation = models.EncryptedString(input.OfficeLocation)
	}

	user.IsProfileComplete = true

	if err := database.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	createNotification(user.ID, "Profile completed",
		"Your profile setup is complete. Welcome to EduConnect.",
		models.NotificationSystem, "/dashboard")

	c.JSON(http.StatusOK, gin.H{"message": "Profile setup successful"})
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a short-lived reset token. Email delivery is an
// external collaborator; the link is logged for the mail worker to pick
// up.
func ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	token, err := utils.GenerateResetToken(user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue reset token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email. Please try again."})
		return
	}

	user.ResetToken = token
	user.ResetTokenExpiry = time.Now().Add(15 * time.Minute)
	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email. Please try again."})
		return
	}

	link := config.AppConfig.FrontendURL + "/reset-password?token=" + token
	logger.Info().Str("email", user.Email).Str("link", link).Msg("Password reset link issued")

	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent"})
}

type ResetPasswordInput struct {
	Password string `json:"password" binding:"required,min=6"`
}

func ResetPassword(c *gin.Context) {
	tokenString := c.Param("token")

	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := utils.ValidateResetToken(tokenString)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	user.Password = string(hashed)
	user.ResetToken = ""
	user.ResetTokenExpiry = time.Time{}

	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// createNotification persists a notification and pushes it to the
// user's live connections when the gateway is up.
func createNotification(userID, title, body string, notifType models.NotificationType, link string) {
	notification := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Type:   notifType,
		Link:   link,
	}
	if err := database.DB.Create(&notification).Error; err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create notification")
		return
	}
	Gateway.NotifyUser(userID, &notification)
}
