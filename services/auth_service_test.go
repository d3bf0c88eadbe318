package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"anket.link/pkg/otpstore"
)

// captureMailer e-posta göndermek yerine son OTP'yi kaydeder.
type captureMailer struct {
	lastTo  string
	lastOtp string
}

func (m *captureMailer) SendOtpEmail(to, otp string) error {
	m.lastTo = to
	m.lastOtp = otp
	return nil
}

func newTestAuthService(t *testing.T) (IAuthService, *captureMailer, func()) {
	t.Helper()
	db := newTestDB(t)
	tokens := newTestTokenService(5*time.Minute, 24*time.Hour)
	otps := otpstore.New(5 * time.Minute)
	mail := &captureMailer{}
	svc := NewAuthService(db, tokens, otps, mail)
	return svc, mail, otps.Close
}

func TestAuth_RegisterAndVerifyOtp(t *testing.T) {
	svc, mail, cleanup := newTestAuthService(t)
	defer cleanup()
	ctx := context.Background()

	user, err := svc.Register(ctx, "ayse", "ayse@example.com", "parola123")
	if err != nil {
		t.Fatalf("Register başarısız: %v", err)
	}
	if user.ID == "" || user.Verified {
		t.Fatalf("yeni kullanıcı beklenmedik durumda: %+v", user)
	}
	if user.Password == "parola123" {
		t.Fatal("şifre düz metin olarak saklanmış")
	}
	if mail.lastTo != "ayse@example.com" || len(mail.lastOtp) != 6 {
		t.Fatalf("OTP e-postası beklenmedik: %q / %q", mail.lastTo, mail.lastOtp)
	}

	if err := svc.VerifyOtp(ctx, user.ID, "000000"); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("yanlış kod kabul edildi: %v", err)
	}
	if err := svc.VerifyOtp(ctx, user.ID, mail.lastOtp); err != nil {
		t.Fatalf("VerifyOtp başarısız: %v", err)
	}
	// Kod tek kullanımlıktır.
	if err := svc.VerifyOtp(ctx, user.ID, mail.lastOtp); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("kullanılmış kod kabul edildi: %v", err)
	}
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	svc, _, cleanup := newTestAuthService(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ayse", "ayse@example.com", "parola123"); err != nil {
		t.Fatalf("Register başarısız: %v", err)
	}
	if _, err := svc.Register(ctx, "ayse", "baska@example.com", "parola123"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("beklenen ErrUsernameTaken, gelen %v", err)
	}
	if _, err := svc.Register(ctx, "fatma", "ayse@example.com", "parola123"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("beklenen ErrEmailTaken, gelen %v", err)
	}
}

func TestAuth_Login(t *testing.T) {
	svc, _, cleanup := newTestAuthService(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ayse", "ayse@example.com", "parola123"); err != nil {
		t.Fatalf("Register başarısız: %v", err)
	}

	user, pair, err := svc.Login(ctx, "ayse", "parola123")
	if err != nil {
		t.Fatalf("Login başarısız: %v", err)
	}
	if user.Username != "ayse" || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("login sonucu beklenmedik: %+v / %+v", user, pair)
	}

	// Yanlış şifre ile hiç olmayan kullanıcı aynı hatayı verir.
	if _, _, err := svc.Login(ctx, "ayse", "yanlış"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("yanlış şifre: beklenen ErrInvalidCredentials, gelen %v", err)
	}
	if _, _, err := svc.Login(ctx, "yok-boyle-biri", "parola123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("olmayan kullanıcı: beklenen ErrInvalidCredentials, gelen %v", err)
	}
}

func TestAuth_RefreshRotation(t *testing.T) {
	svc, _, cleanup := newTestAuthService(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ayse", "ayse@example.com", "parola123"); err != nil {
		t.Fatalf("Register başarısız: %v", err)
	}
	_, pair, err := svc.Login(ctx, "ayse", "parola123")
	if err != nil {
		t.Fatalf("Login başarısız: %v", err)
	}

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh başarısız: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("rotasyon yeni token üretmedi")
	}

	// Eski token rotasyonla geçersizleşir.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("eski token hâlâ geçerli: %v", err)
	}
	// Yeni token çalışmaya devam eder.
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("yeni token reddedildi: %v", err)
	}
}

func TestAuth_Logout(t *testing.T) {
	svc, _, cleanup := newTestAuthService(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ayse", "ayse@example.com", "parola123"); err != nil {
		t.Fatalf("Register başarısız: %v", err)
	}
	_, pair, err := svc.Login(ctx, "ayse", "parola123")
	if err != nil {
		t.Fatalf("Login başarısız: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout başarısız: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("logout sonrası token hâlâ geçerli: %v", err)
	}
}
