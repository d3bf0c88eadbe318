package services

import (
	"context"
	"errors"
	"fmt"

	"anket.link/configs/configslog"
	"anket.link/models"
	"anket.link/pkg/queryparams"
	"anket.link/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserServiceError özel servis hataları
type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound       UserServiceError = "kullanıcı bulunamadı"
	ErrUserForbidden      UserServiceError = "bu işlem için yetkiniz yok"
	ErrUserDeletionFailed UserServiceError = "kullanıcı silinemedi"
)

// IUserService kullanıcı okuma/silme işlemleri için arayüz.
type IUserService interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAllUsersPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	DeleteUser(ctx context.Context, actor Actor, id string) error
}

// UserService IUserService arayüzünü uygular.
type UserService struct {
	repo      repositories.IUserRepository
	tokenRepo repositories.ITokenRepository
	formRepo  repositories.IFormRepository
	db        *gorm.DB
}

// NewUserService yeni bir UserService örneği oluşturur.
func NewUserService(db *gorm.DB) IUserService {
	return &UserService{
		repo:      repositories.NewUserRepository(db),
		tokenRepo: repositories.NewTokenRepository(db),
		formRepo:  repositories.NewFormRepository(db),
		db:        db,
	}
}

// GetUserByID belirli bir kullanıcıyı getirir.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetAllUsersPaginated kullanıcıları sayfalayarak getirir.
func (s *UserService) GetAllUsersPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()

	users, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}

	return &queryparams.PaginatedResult{
		Data: users,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  totalCount,
			TotalPages:  queryparams.CalculateTotalPages(totalCount, params.PerPage),
		},
	}, nil
}

// DeleteUser kullanıcıyı, formlarını ve token'larını tek transaction'da siler.
// Yalnızca kullanıcının kendisi veya admin silebilir.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id string) error {
	if actor.ID != id && !actor.Admin {
		return ErrUserForbidden
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		userRepoTx := repositories.NewUserRepositoryTx(tx)
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		tokenRepoTx := repositories.NewTokenRepository(tx)

		user, err := userRepoTx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		// Önce kullanıcının form ağaçları (FK sırası), sonra token'lar,
		// en son kullanıcı satırı.
		forms, err := formRepoTx.FindAllByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, form := range forms {
			if err := formRepoTx.DeleteTree(ctx, form.ID); err != nil {
				return err
			}
		}
		if err := tokenRepoTx.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		return userRepoTx.Delete(ctx, user.ID)
	})
	if txErr != nil {
		var svcErr UserServiceError
		if errors.As(txErr, &svcErr) {
			return txErr
		}
		configslog.Log.Error("DeleteUser transaction failed", zap.String("id", id), zap.Error(txErr))
		return fmt.Errorf("%w: %v", ErrUserDeletionFailed, txErr)
	}

	configslog.SLog.Infof("Kullanıcı ve bağlı kayıtları silindi: ID %s (Silen: %s)", id, actor.ID)
	return nil
}

var _ IUserService = (*UserService)(nil)
