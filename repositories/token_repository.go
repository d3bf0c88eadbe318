package repositories

import (
	"context"
	"errors"
	"time"

	"anket.link/configs/configslog"
	"anket.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ITokenRepository refresh token kayıtları için arayüz.
type ITokenRepository interface {
	Store(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenRepository ITokenRepository arayüzünü uygular.
type TokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository verilen DB bağlantısıyla bir TokenRepository oluşturur.
func NewTokenRepository(db *gorm.DB) ITokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Store yeni bir refresh token kaydı ekler.
func (r *TokenRepository) Store(ctx context.Context, token *models.RefreshToken) error {
	if token == nil || token.UserID == "" || token.Token == "" {
		return errors.New("eksik alanlı token kaydedilemez")
	}
	return r.getDB(ctx).Create(token).Error
}

// FindByToken token değerine göre kaydı getirir. Süresi dolmuş kayıt
// bulunamadı sayılır.
func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var record models.RefreshToken
	err := r.getDB(ctx).First(&record, "token = ? AND expires_at > ?", token, time.Now().UTC()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("TokenRepository.FindByToken: DB error", zap.Error(err))
		return nil, err
	}
	return &record, nil
}

// DeleteByToken tek bir token kaydını siler (rotasyon ve logout).
func (r *TokenRepository) DeleteByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return r.getDB(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

// DeleteByUserID kullanıcının tüm refresh token'larını siler
// (kullanıcı silme yolunda kullanılır).
func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("geçersiz User ID")
	}
	return r.getDB(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

// DeleteExpired süresi dolmuş kayıtları temizler, silinen satır sayısını döndürür.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.getDB(ctx).Where("expires_at <= ?", time.Now().UTC()).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

var _ ITokenRepository = (*TokenRepository)(nil)
