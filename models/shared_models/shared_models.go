package shared_models

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/utils"
	"github.com/joy095/roombooking/utils/shared_utils"
)

// BookingStatus is the closed set of booking lifecycle states. Values are
// normalized at the ledger boundary; comparisons are always exact.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus normalizes a raw status string into the closed set.
// Legacy rows carry mixed casing, so matching is case-insensitive here and
// nowhere else.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case BookingStatusPending:
		return BookingStatusPending, nil
	case BookingStatusApproved:
		return BookingStatusApproved, nil
	case BookingStatusRejected:
		return BookingStatusRejected, nil
	case BookingStatusCancelled:
		return BookingStatusCancelled, nil
	}
	return "", fmt.Errorf("unknown booking status %q", raw)
}

// Active reports whether the status occupies a slot (pending or approved).
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

// Terminal reports whether the status permits no further transition except
// approved -> cancelled by the requester.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusApproved || s == BookingStatusRejected || s == BookingStatusCancelled
}

// User roles. Students request bookings; lecturers and staff approve them.
const (
	RoleStudent  = "Student"
	RoleLecturer = "Lecturer"
	RoleStaff    = "Staff"
)

// ApproverRoles is the default set of roles allowed to approve or reject a
// pending booking.
func ApproverRoles() map[string]bool {
	return map[string]bool{
		RoleLecturer: true,
		RoleStaff:    true,
	}
}

const AccessTokenExpiry = 5 * 24 * time.Hour

// GenerateAccessToken creates the HS256 JWT handed out at login. The core
// booking engine never parses tokens; it receives the (id, role) claims
// already validated by the auth middleware.
func GenerateAccessToken(userID uuid.UUID, username, role string, duration time.Duration) (string, error) {
	now := time.Now()

	jti, err := shared_utils.GenerateTinyID(12)
	if err != nil {
		return "", fmt.Errorf("failed to generate jti: %w", err)
	}

	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"username": username,
		"role":     role,
		"iat":      now.Unix(),
		"exp":      now.Add(duration).Unix(),
		"nbf":      now.Unix(),
		"jti":      jti,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(utils.GetJWTSecret())
	if err != nil {
		logger.ErrorLogger.Errorf("failed to sign access token: %v", err)
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}
