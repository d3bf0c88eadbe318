package services

import (
	"errors"
	"time"

	"anket.link/configs/configsapp"
	"anket.link/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenServiceError özel servis hataları
type TokenServiceError string

func (e TokenServiceError) Error() string { return string(e) }

const (
	ErrTokenInvalid TokenServiceError = "token geçersiz veya süresi dolmuş"
)

// TokenClaims access ve refresh token'larda taşınan claim seti.
type TokenClaims struct {
	UserID string `json:"id"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// ITokenService JWT üretimi ve doğrulaması için arayüz.
type ITokenService interface {
	GenerateAccessToken(user *models.User) (string, error)
	GenerateRefreshToken(user *models.User) (string, time.Time, error)
	ParseAccessToken(token string) (*TokenClaims, error)
	ParseRefreshToken(token string) (*TokenClaims, error)
}

// TokenService ITokenService arayüzünü uygular. Access token kısa ömürlü ve
// stateless'tır; refresh token ayrıca refresh_tokens tablosunda saklanır.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService konfigürasyondan bir TokenService oluşturur.
func NewTokenService(cfg *configsapp.Config) ITokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// GenerateAccessToken kullanıcı için kısa ömürlü access token üretir.
func (s *TokenService) GenerateAccessToken(user *models.User) (string, error) {
	return s.sign(user, s.accessSecret, s.accessTTL)
}

// GenerateRefreshToken refresh token ve son geçerlilik zamanını üretir.
// Üretilen değer çağıran tarafından refresh_tokens tablosuna yazılmalıdır.
func (s *TokenService) GenerateRefreshToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(s.refreshTTL)
	token, err := s.sign(user, s.refreshSecret, s.refreshTTL)
	return token, expiresAt, err
}

func (s *TokenService) sign(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		UserID: user.ID,
		Admin:  user.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti her token'ı benzersiz kılar; aynı saniyede üretilen iki
			// refresh token tabloda çakışmaz.
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccessToken access token'ı doğrular ve claim'leri döndürür.
func (s *TokenService) ParseAccessToken(token string) (*TokenClaims, error) {
	return s.parse(token, s.accessSecret)
}

// ParseRefreshToken refresh token'ı doğrular ve claim'leri döndürür.
func (s *TokenService) ParseRefreshToken(token string) (*TokenClaims, error) {
	return s.parse(token, s.refreshSecret)
}

func (s *TokenService) parse(tokenString string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("beklenmeyen imza yöntemi")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

var _ ITokenService = (*TokenService)(nil)
