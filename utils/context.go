package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/roombooking/logger"
)

// GetUserIDFromContext extracts the authenticated user's ID from the Gin
// context. The auth middleware stores it as a string under "user_id".
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return uuid.Nil, ErrUserIDNotFound
	}

	userIDStr, ok := raw.(string)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not a string, actual type: %T", raw)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format in context")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse user ID string '%s' to UUID: %v", userIDStr, err)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format")
	}
	return userID, nil
}

// GetUserRoleFromContext extracts the role claim set by the auth middleware.
func GetUserRoleFromContext(c *gin.Context) (string, error) {
	raw, exists := c.Get("role")
	if !exists {
		return "", ErrUnauthorized
	}
	role, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("internal server error: invalid role format in context")
	}
	return role, nil
}
