package user_controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/shared_models"
	"github.com/joy095/roombooking/models/user_models"
	"golang.org/x/crypto/bcrypt"
)

// UserController handles registration and login.
type UserController struct {
	users *user_models.Store
}

func NewUserController(users *user_models.Store) *UserController {
	return &UserController{users: users}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// Register handles POST /auth/register. New accounts default to the
// Student role; approver roles are granted out of band.
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid request body: " + err.Error()})
		return
	}

	role := shared_models.RoleStudent
	switch req.Role {
	case "", shared_models.RoleStudent:
	case shared_models.RoleLecturer, shared_models.RoleStaff:
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Approver roles cannot be self-assigned"})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Unknown role"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "error": "Internal server error"})
		return
	}

	user, err := uc.users.CreateUser(c.Request.Context(), req.Username, req.Email, string(hash), role)
	if err != nil {
		if errors.Is(err, user_models.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"code": "USER_EXISTS", "error": "Username or email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}

	logger.InfoLogger.Infof("User %s registered", user.Username)
	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID, "username": user.Username, "role": user.Role})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login.
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid request body: " + err.Error()})
		return
	}

	user, err := uc.users.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"code": "INVALID_CREDENTIALS", "error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.WarnLogger.Warnf("Failed login attempt for %s", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"code": "INVALID_CREDENTIALS", "error": "Invalid username or password"})
		return
	}

	token, err := shared_models.GenerateAccessToken(user.ID, user.Username, user.Role, shared_models.AccessTokenExpiry)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to issue token for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user": gin.H{
			"user_id":  user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}
