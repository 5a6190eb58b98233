package security

import (
	"fmt"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "article-hub"

// Token type marker values carried in the "type" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	claimType = "type"
)

// JWTManager issues and verifies signed, time-limited tokens
type JWTManager struct {
	secret          []byte
	method          jwt.SigningMethod
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

// NewJWTManager creates a new JWT manager. The algorithm must be one of the
// HMAC methods.
func NewJWTManager(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}

	return &JWTManager{
		secret:          []byte(secret),
		method:          method,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		now:             time.Now,
	}, nil
}

// Issue signs claims with an expiry of now+ttl. Registered time claims in
// the input are overwritten.
func (m *JWTManager) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	now := m.now().UTC()

	mapClaims := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	mapClaims["iat"] = jwt.NewNumericDate(now)
	mapClaims["iss"] = issuer

	token := jwt.NewWithClaims(m.method, mapClaims)
	return token.SignedString(m.secret)
}

// Verify checks signature, structure and expiry and returns the claims.
// Every failure wraps domain.ErrInvalidToken.
func (m *JWTManager) Verify(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// GenerateAccessToken generates a new access token for the email
func (m *JWTManager) GenerateAccessToken(email string) (string, error) {
	return m.Issue(map[string]any{
		"sub":     email,
		claimType: TokenTypeAccess,
	}, m.accessTokenTTL)
}

// GenerateRefreshToken generates a new refresh token for the email
func (m *JWTManager) GenerateRefreshToken(email string) (string, error) {
	return m.Issue(map[string]any{
		"sub":     email,
		claimType: TokenTypeRefresh,
	}, m.refreshTokenTTL)
}

// GenerateTokenPair generates both access and refresh tokens
func (m *JWTManager) GenerateTokenPair(email string) (*domain.TokenPair, error) {
	accessToken, err := m.GenerateAccessToken(email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := m.GenerateRefreshToken(email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(m.accessTokenTTL.Seconds()),
	}, nil
}

// AccessTokenTTL returns the access token TTL
func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.accessTokenTTL
}

// TokenType returns the type marker of verified claims, or "" when absent
func TokenType(claims jwt.MapClaims) string {
	t, _ := claims[claimType].(string)
	return t
}
