package repositories

import (
	"context"
	"errors"
	"strings"

	"anket.link/configs/configslog"
	"anket.link/models"
	"anket.link/pkg/identifier"
	"anket.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IUserRepository kullanıcı veritabanı işlemleri için arayüz.
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// UserRepository IUserRepository arayüzünü uygular.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository verilen DB bağlantısıyla bir UserRepository oluşturur.
func NewUserRepository(db *gorm.DB) IUserRepository {
	return &UserRepository{db: db}
}

// NewUserRepositoryTx transaction'a bağlı bir UserRepository oluşturur.
func NewUserRepositoryTx(tx *gorm.DB) IUserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create kullanıcıyı üretilmiş "US####" ID'si ile ekler. ID çakışmasında
// yeniden üretir; username/email unique ihlali ise çağırana ErrConflict
// olarak döner (ID bütçesi harcanmaz, kullanıcı verisi çakışmıştır).
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil || user.Username == "" || user.Email == "" {
		return errors.New("eksik alanlı kullanıcı oluşturulamaz")
	}
	db := r.getDB(ctx)

	return db.Transaction(func(tx *gorm.DB) error {
		return createRowWithID(tx, identifier.KindUser,
			func(id string) { user.ID = id },
			func(db *gorm.DB) error {
				err := db.Omit("Forms").Create(user).Error
				if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) && !isIDConflict(err) {
					// username/email çakışması: yeni ID denemenin anlamı yok.
					return ErrConflict
				}
				return err
			})
	})
}

// isIDConflict unique ihlalinin primary key'den gelip gelmediğini ayırt etmeye
// çalışır. Sürücü kısıt adını vermezse ID çakışması varsayılır ve yeniden
// denenir; username/email çakışması bir sonraki denemede de aynı hatayı
// üreteceğinden döngü yine ErrConflict ile biter.
func isIDConflict(err error) bool {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "username") || strings.Contains(msg, "email") {
		return false
	}
	return true
}

// FindByID belirli bir kullanıcıyı getirir.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, errors.New("geçersiz User ID")
	}
	var user models.User
	err := r.getDB(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("UserRepository.FindByID: DB error", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// FindByUsername kullanıcı adına göre arar.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.getDB(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail e-posta adresine göre arar.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.getDB(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindAllPaginated kullanıcıları sayfalayarak getirir.
func (r *UserRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.User, int64, error) {
	users := []models.User{}
	var totalCount int64
	db := r.getDB(ctx)

	if err := db.Model(&models.User{}).Count(&totalCount).Error; err != nil {
		configslog.Log.Error("UserRepository.Count: DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return users, 0, nil
	}

	allowedSortColumns := map[string]bool{"id": true, "username": true, "email": true, "created_at": true}
	sortBy := params.SortBy
	if !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	err := db.
		Order(sortBy + " " + params.OrderBy).
		Limit(params.PerPage).
		Offset(params.CalculateOffset()).
		Find(&users).Error
	if err != nil {
		configslog.Log.Error("UserRepository.FindAllPaginated: DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return users, totalCount, nil
}

// Update kullanıcı kaydını günceller.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return errors.New("güncellenecek kullanıcı geçerli değil")
	}
	return r.getDB(ctx).Omit("Forms").Save(user).Error
}

// Delete kullanıcıyı siler. Formları olan kullanıcı FK kısıtına takılır;
// çağıran önce formların silinmesini sağlamalıdır.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("geçersiz User ID")
	}
	result := r.getDB(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ IUserRepository = (*UserRepository)(nil)
