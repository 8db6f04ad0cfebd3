package util

import (
	"solveit_backend/internal/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	user := &model.User{UUIDBase: model.UUIDBase{ID: "u-1"}, Email: "ada@example.com"}

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestParseJWTRejects(t *testing.T) {
	user := &model.User{UUIDBase: model.UUIDBase{ID: "u-1"}}

	expired, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err, "expired")

	wrongKey, err := GenerateJWT(user, "other", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(wrongKey, "secret")
	assert.Error(t, err, "wrong key")

	noUser, err := GenerateJWT(&model.User{}, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(noUser, "secret")
	assert.Error(t, err, "missing user id")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseJWT(unsigned, "secret")
	assert.Error(t, err, "alg none")
}
