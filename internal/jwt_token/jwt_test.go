package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var userID = id.NewUserID()
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	token, expiresAt, err := jwtService.GenerateAccessToken(userID, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(expiresIn), expiresAt, time.Minute)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, _, err := jwtService.GenerateAccessToken(userID, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongKeyOrAudience(t *testing.T) {
	token, _, err := jwtService.GenerateAccessToken(userID, expiresIn)
	require.NoError(t, err)

	otherKey := NewJWTService("other-key", "test-issuer", "test-audience")
	_, err = otherKey.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	otherAudience := NewJWTService("test-signing-key", "test-issuer", "other-audience")
	_, err = otherAudience.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Adapter(t *testing.T) {
	token, _, err := jwtService.GenerateAccessToken(userID, expiresIn)
	require.NoError(t, err)

	claims, err := NewValidator(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.NotEmpty(t, claims.JTI)

	_, err = NewValidator(jwtService).ValidateToken("garbage")
	assert.Error(t, err)
}
