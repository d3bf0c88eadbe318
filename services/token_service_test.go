package services

import (
	"errors"
	"testing"
	"time"

	"anket.link/configs/configsapp"
	"anket.link/models"
)

func newTestTokenService(accessTTL, refreshTTL time.Duration) ITokenService {
	return NewTokenService(&configsapp.Config{
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,
	})
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService(5*time.Minute, 24*time.Hour)
	user := &models.User{Admin: true}
	user.ID = "US1234"

	access, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken başarısız: %v", err)
	}
	claims, err := svc.ParseAccessToken(access)
	if err != nil {
		t.Fatalf("ParseAccessToken başarısız: %v", err)
	}
	if claims.UserID != "US1234" || !claims.Admin {
		t.Fatalf("claim'ler uyuşmuyor: %+v", claims)
	}

	refresh, expiresAt, err := svc.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("GenerateRefreshToken başarısız: %v", err)
	}
	if time.Until(expiresAt) < 23*time.Hour {
		t.Fatalf("refresh geçerlilik süresi beklenmedik: %v", expiresAt)
	}
	if _, err := svc.ParseRefreshToken(refresh); err != nil {
		t.Fatalf("ParseRefreshToken başarısız: %v", err)
	}
}

func TestTokenService_CrossSecretRejected(t *testing.T) {
	svc := newTestTokenService(5*time.Minute, 24*time.Hour)
	user := &models.User{}
	user.ID = "US1234"

	// Access token refresh anahtarıyla doğrulanamaz (ve tersi).
	access, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken başarısız: %v", err)
	}
	if _, err := svc.ParseRefreshToken(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("beklenen ErrTokenInvalid, gelen %v", err)
	}
}

func TestTokenService_ExpiredRejected(t *testing.T) {
	svc := newTestTokenService(-time.Minute, -time.Minute)
	user := &models.User{}
	user.ID = "US1234"

	access, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken başarısız: %v", err)
	}
	if _, err := svc.ParseAccessToken(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("süresi dolmuş token kabul edildi: %v", err)
	}
}

func TestTokenService_GarbageRejected(t *testing.T) {
	svc := newTestTokenService(5*time.Minute, 24*time.Hour)
	if _, err := svc.ParseAccessToken("bunlar.token.degil"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("beklenen ErrTokenInvalid, gelen %v", err)
	}
}
