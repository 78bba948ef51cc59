package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_CarriesClaims(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken(Claims{UID: "uid-1", OfficeID: "office-1", Role: RoleAdmin})
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims["uid"])
	assert.Equal(t, "office-1", claims["office_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestValidateSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	sseToken, expiresIn, err := svc.GenerateSSEToken("uid-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	uid, err := svc.ValidateSSEToken(sseToken)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	access, _, err := svc.GenerateAccessToken(Claims{UID: "uid-1", Role: RoleEmployee})
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	other := NewJWTService("other-secret", time.Hour)
	_, err = other.ValidateSSEToken(sseToken)
	assert.Error(t, err)
}
