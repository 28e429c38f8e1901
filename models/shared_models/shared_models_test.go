package shared_models_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/roombooking/models/shared_models"
	"github.com/joy095/roombooking/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want shared_models.BookingStatus
	}{
		{"pending", shared_models.BookingStatusPending},
		{"Pending", shared_models.BookingStatusPending},
		{"  APPROVED ", shared_models.BookingStatusApproved},
		{"rejected", shared_models.BookingStatusRejected},
		{"Cancelled", shared_models.BookingStatusCancelled},
	}
	for _, tc := range cases {
		got, err := shared_models.ParseBookingStatus(tc.raw)
		require.NoError(t, err, "raw %q", tc.raw)
		assert.Equal(t, tc.want, got)
	}

	_, err := shared_models.ParseBookingStatus("deleted")
	assert.Error(t, err)
	_, err = shared_models.ParseBookingStatus("")
	assert.Error(t, err)
}

func TestStatusActiveAndTerminal(t *testing.T) {
	assert.True(t, shared_models.BookingStatusPending.Active())
	assert.True(t, shared_models.BookingStatusApproved.Active())
	assert.False(t, shared_models.BookingStatusRejected.Active())
	assert.False(t, shared_models.BookingStatusCancelled.Active())

	assert.False(t, shared_models.BookingStatusPending.Terminal())
	assert.True(t, shared_models.BookingStatusApproved.Terminal())
	assert.True(t, shared_models.BookingStatusRejected.Terminal())
	assert.True(t, shared_models.BookingStatusCancelled.Terminal())
}

func TestApproverRoles(t *testing.T) {
	roles := shared_models.ApproverRoles()
	assert.True(t, roles[shared_models.RoleLecturer])
	assert.True(t, roles[shared_models.RoleStaff])
	assert.False(t, roles[shared_models.RoleStudent])
}

func TestGenerateAccessToken(t *testing.T) {
	userID := uuid.New()

	tokenString, err := shared_models.GenerateAccessToken(userID, "alice", shared_models.RoleLecturer, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return utils.GetJWTSecret(), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, userID.String(), claims["sub"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, shared_models.RoleLecturer, claims["role"])
	assert.NotEmpty(t, claims["jti"])
}
