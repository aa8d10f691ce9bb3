package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/database"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func jsonRequest(t *testing.T, method, target string, body interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func TestRegister_StudentSignedInImmediately(t *testing.T) {
	setupGateway(t)

	w, c := jsonRequest(t, "POST", "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
		"role":     "student",
	})
	Register(c)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		RequiresApproval bool        `json:"requiresApproval"`
		User             models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.RequiresApproval)
	assert.True(t, resp.User.IsApproved)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "token", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestRegister_FacultyPendingApproval(t *testing.T) {
	setupGateway(t)

	w, c := jsonRequest(t, "POST", "/api/auth/register", gin.H{
		"username": "prof",
		"email":    "prof@example.com",
		"password": "secret123",
		"role":     "faculty",
	})
	Register(c)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		RequiresApproval bool        `json:"requiresApproval"`
		User             models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.RequiresApproval)
	assert.False(t, resp.User.IsApproved)

	// Pending faculty cannot sign in.
	w, c = jsonRequest(t, "POST", "/api/auth/login", gin.H{
		"email":    "prof@example.com",
		"password": "secret123",
	})
	Login(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	setupGateway(t)

	w, c := jsonRequest(t, "POST", "/api/auth/register", gin.H{
		"username": "sneaky",
		"email":    "sneaky@example.com",
		"password": "secret123",
		"role":     "admin",
	})
	Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	setupGateway(t)

	body := gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
		"role":     "student",
	}

	w, c := jsonRequest(t, "POST", "/api/auth/register", body)
	Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	w, c = jsonRequest(t, "POST", "/api/auth/register", body)
	Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	setupGateway(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	require.NoError(t, database.DB.Create(&models.User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@example.com",
		Password: string(hashed),
		Role:     models.RoleStudent,
	}).Error)

	w, c := jsonRequest(t, "POST", "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrongpass",
	})
	Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, c = jsonRequest(t, "POST", "/api/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateAccount_CreatesNotification(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "u1", models.RoleStudent, "")

	w, c := jsonRequest(t, "PUT", "/api/auth/account", gin.H{
		"username": "renamed",
	})
	c.Set("userId", "u1")
	UpdateAccount(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, database.DB.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, "renamed", user.Username)

	var count int64
	database.DB.Model(&models.Notification{}).Where("user_id = ?", "u1").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestProfileSetup_MarksComplete(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "u1", models.RoleStudent, "")

	w, c := jsonRequest(t, "POST", "/api/auth/profile-setup", gin.H{
		"department":       "Computer Engineering",
		"enrollmentNumber": "EN123",
		"semester":         "6",
	})
	c.Set("userId", "u1")
	ProfileSetup(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, database.DB.First(&user, "id = ?", "u1").Error)
	assert.True(t, user.IsProfileComplete)
	assert.Equal(t, "Computer Engineering", user.Department)
	assert.Equal(t, "EN123", string(user.EnrollmentNumber))
}

func TestPasswordResetFlow(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "u1", models.RoleStudent, "")

	w, c := jsonRequest(t, "POST", "/api/auth/forgot-password", gin.H{
		"email": "u1@example.com",
	})
	ForgotPassword(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, database.DB.First(&user, "id = ?", "u1").Error)
	require.NotEmpty(t, user.ResetToken)

	w, c = jsonRequest(t, "POST", "/api/auth/reset-password", gin.H{
		"password": "brandnewpass",
	})
	c.Params = gin.Params{{Key: "token", Value: user.ResetToken}}
	ResetPassword(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, database.DB.First(&user, "id = ?", "u1").Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("brandnewpass")))
	assert.Empty(t, user.ResetToken)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	setupGateway(t)

	w, c := jsonRequest(t, "POST", "/api/auth/forgot-password", gin.H{
		"email": "ghost@example.com",
	})
	ForgotPassword(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
