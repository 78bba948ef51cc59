package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Role is the caller class a token is issued to.
type Role string

const (
	// RoleDispatcher is the event dispatcher delivering trigger writes.
	RoleDispatcher Role = "dispatcher"
	// RoleAdmin manages payroll for one office.
	RoleAdmin Role = "admin"
	// RoleEmployee reads its own attendance and update feed.
	RoleEmployee Role = "employee"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"
)

// Claims are the identity fields of an access token.
type Claims struct {
	UID      string
	OfficeID string
	Role     Role
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	GenerateSSEToken(uid string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (uid string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) *JWTService {
	if accessTokenExpiration <= 0 {
		accessTokenExpiration = time.Hour
	}
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	payload := map[string]interface{}{
		"role": string(claims.Role),
		"type": TokenTypeAccess,
		"exp":  expiresAt,
	}
	if claims.UID != "" {
		payload["uid"] = claims.UID
	}
	if claims.OfficeID != "" {
		payload["office_id"] = claims.OfficeID
	}

	_, tokenString, err := j.tokenAuth.Encode(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode access token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(uid string) (token string, expiresIn int, err error) {
	expiresIn = 300
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"uid":  uid,
		"type": TokenTypeSSE,
		"exp":  expiresAt,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode sse token: %w", err)
	}
	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns its uid
func (j *JWTService) ValidateSSEToken(tokenString string) (uid string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	uidVal, ok := token.Get("uid")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	uid, ok = uidVal.(string)
	if !ok || uid == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return uid, nil
}

var _ Service = (*JWTService)(nil)
