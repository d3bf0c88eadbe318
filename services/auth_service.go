package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"anket.link/configs/configslog"
	"anket.link/models"
	"anket.link/pkg/mailer"
	"anket.link/pkg/otpstore"
	"anket.link/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthServiceError özel servis hataları
type AuthServiceError string

func (e AuthServiceError) Error() string { return string(e) }

const (
	ErrUsernameTaken         AuthServiceError = "bu kullanıcı adı zaten kayıtlı"
	ErrEmailTaken            AuthServiceError = "bu e-posta adresi zaten kayıtlı"
	ErrInvalidCredentials    AuthServiceError = "kullanıcı adı veya şifre hatalı"
	ErrOtpInvalid            AuthServiceError = "doğrulama kodu geçersiz veya süresi dolmuş"
	ErrRefreshTokenInvalid   AuthServiceError = "oturum yenileme token'ı geçersiz"
	ErrRegistrationFailed    AuthServiceError = "kayıt tamamlanamadı"
	ErrPasswordHashingFailed AuthServiceError = "şifre oluşturulamadı"
)

// TokenPair login ve refresh sonuçlarında dönen token ikilisi.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// IAuthService kayıt/giriş/OTP/oturum yenileme işlemleri için arayüz.
type IAuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	VerifyOtp(ctx context.Context, userID, otp string) error
	ResendOtp(ctx context.Context, userID string) error
	Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthService IAuthService arayüzünü uygular. OTP'ler süreç içi TTL'li
// depoda tutulur (yeniden başlatmada kaybolur); refresh token'lar
// rotasyonla birlikte veritabanında saklanır.
type AuthService struct {
	userRepo  repositories.IUserRepository
	tokenRepo repositories.ITokenRepository
	tokens    ITokenService
	otps      *otpstore.Store
	mail      mailer.IMailer
	db        *gorm.DB
}

// NewAuthService yeni bir AuthService örneği oluşturur.
func NewAuthService(db *gorm.DB, tokens ITokenService, otps *otpstore.Store, mail mailer.IMailer) IAuthService {
	return &AuthService{
		userRepo:  repositories.NewUserRepository(db),
		tokenRepo: repositories.NewTokenRepository(db),
		tokens:    tokens,
		otps:      otps,
		mail:      mail,
		db:        db,
	}
}

// generateOtp 6 haneli doğrulama kodu üretir.
func generateOtp() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// Register kullanıcıyı oluşturur, OTP üretip e-posta ile gönderir.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrPasswordHashingFailed
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Admin:    false,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		// Eşzamanlı kayıt aynı username/email'i kapmış olabilir.
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		configslog.Log.Error("Register: kullanıcı oluşturulamadı", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	otp := generateOtp()
	s.otps.Put(user.ID, otp)
	// E-posta hatası kaydı geri almaz; kullanıcı yeniden kod isteyebilir.
	if err := s.mail.SendOtpEmail(user.Email, otp); err != nil {
		configslog.SLog.Warnf("OTP e-postası gönderilemedi, yeniden gönderme beklenecek: %s", user.ID)
	}

	configslog.SLog.Infof("Kullanıcı kaydedildi, OTP gönderildi: ID %s (%s)", user.ID, user.Email)
	return &user, nil
}

// VerifyOtp kodu doğrular ve kullanıcıyı doğrulanmış olarak işaretler.
// Kod tek kullanımlıktır.
func (s *AuthService) VerifyOtp(ctx context.Context, userID, otp string) error {
	if !s.otps.Verify(userID, otp) {
		return ErrOtpInvalid
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOtpInvalid
		}
		return err
	}
	user.Verified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		configslog.Log.Error("VerifyOtp: kullanıcı güncellenemedi", zap.String("userID", userID), zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Kullanıcı doğrulandı: ID %s", userID)
	return nil
}

// ResendOtp yeni bir kod üretip e-posta ile gönderir; önceki kodu geçersiz kılar.
func (s *AuthService) ResendOtp(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	otp := generateOtp()
	s.otps.Put(user.ID, otp)
	return s.mail.SendOtpEmail(user.Email, otp)
}

// Login kimlik bilgilerini doğrular, access+refresh token çifti üretir ve
// refresh kaydını veritabanına yazar. Kullanıcının yokluğu ile yanlış şifre
// aynı hatayla döner.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	configslog.SLog.Infof("Kullanıcı giriş yaptı: ID %s", user.ID)
	return user, pair, nil
}

// Refresh refresh token'ı doğrular, eski kaydı silip yeni bir çift üretir
// (rotasyon). Token imzası geçerli olsa bile tabloda yoksa reddedilir.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	record, err := s.tokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	if err := s.tokenRepo.DeleteByToken(ctx, record.Token); err != nil {
		configslog.Log.Error("Refresh: eski token silinemedi", zap.String("userID", user.ID), zap.Error(err))
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

// Logout refresh kaydını siler; access token doğal ömrüyle düşer.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.DeleteByToken(ctx, refreshToken)
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, expiresAt, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	record := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	}
	if err := s.tokenRepo.Store(ctx, &record); err != nil {
		configslog.Log.Error("issueTokenPair: refresh token kaydedilemedi", zap.String("userID", user.ID), zap.Error(err))
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: expiresAt,
	}, nil
}

var _ IAuthService = (*AuthService)(nil)
