package services

import (
	"context"
	"errors"
	"fmt"

	"anket.link/configs/configslog"
	"anket.link/models"
	"anket.link/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FormServiceError özel servis hataları
type FormServiceError string

func (e FormServiceError) Error() string { return string(e) }

const (
	// ErrFormNotFound hem yok olan hem de başkasına ait formlar için döner;
	// ikisi çağıran tarafından ayırt edilemez.
	ErrFormNotFound         FormServiceError = "form bulunamadı veya bu işlem için yetkiniz yok"
	ErrFormInvalidInput     FormServiceError = "geçersiz girdi verisi"
	ErrFormTitleRequired    FormServiceError = "form başlığı zorunludur"
	ErrQuestionTextRequired FormServiceError = "soru metni zorunludur"
	ErrAnswerTextRequired   FormServiceError = "cevap metni zorunludur"
	ErrFormConflict         FormServiceError = "kayıt çakışması oluştu, lütfen tekrar deneyin"
	ErrFormOperationFailed  FormServiceError = "form işlemi tamamlanamadı"
	ErrFormUnknownStrategy  FormServiceError = "bilinmeyen güncelleme stratejisi"
)

// UpdateStrategy güncelleme çağrısının çocuk senkronizasyon davranışını seçer.
type UpdateStrategy string

const (
	// StrategyMerge varsayılandır: ID'li çocuklar yerinde upsert edilir,
	// girdide olmayanlar korunur. Aynı girdiyle tekrar çağrı idempotenttir.
	StrategyMerge UpdateStrategy = "merge"
	// StrategyReplace açıkça istenmelidir: mevcut alt ağaç silinip girdi
	// aynen yazılır. Girdide olmayan çocuklar kaybolur.
	StrategyReplace UpdateStrategy = "replace"
)

// IFormService form ağacı işlemleri için arayüz.
type IFormService interface {
	CreateForm(ctx context.Context, ownerID, title, description string, questions []models.Question) (*models.Form, error)
	GetFormByID(ctx context.Context, actor Actor, formID string) (*models.Form, error)
	GetFormsForUser(ctx context.Context, actor Actor, userID string) ([]models.Form, error)
	UpdateForm(ctx context.Context, actor Actor, formID, title, description string, questions []models.Question, strategy UpdateStrategy) (*models.Form, error)
	DeleteForm(ctx context.Context, actor Actor, formID string, adminOverride bool) error
	GetFormCountForUser(ctx context.Context, userID string) (int64, error)
}

// FormService IFormService arayüzünü uygular. Form+Question+Answer ağacına
// dokunan her çağrı tek transaction içinde tamamlanır: ya tüm ağaç yazılır
// ya hiçbir satır yazılmaz.
type FormService struct {
	repo repositories.IFormRepository
	db   *gorm.DB
}

// NewFormService yeni bir FormService örneği oluşturur.
func NewFormService(db *gorm.DB) IFormService {
	return &FormService{
		repo: repositories.NewFormRepository(db),
		db:   db,
	}
}

// --- Yardımcı Metodlar ---

// ValidateFormInput başlık ve soru/cevap metinlerinin zorunluluğunu denetler.
func ValidateFormInput(title string, questions []models.Question) error {
	if title == "" {
		return ErrFormTitleRequired
	}
	for _, q := range questions {
		if q.QuestionText == "" {
			return ErrQuestionTextRequired
		}
		for _, a := range q.Answers {
			if a.AnswerText == "" {
				return ErrAnswerTextRequired
			}
		}
	}
	return nil
}

// classifyFormError repository/gorm hatalarını servis taksonomisine çevirir.
// Servis hataları olduğu gibi geçer, gerisi işlem hatası sayılır.
func classifyFormError(err error) error {
	var svcErr FormServiceError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &svcErr):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return ErrFormNotFound
	case errors.Is(err, repositories.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrFormConflict
	default:
		return fmt.Errorf("%w: %v", ErrFormOperationFailed, err)
	}
}

// --- Servis Metodları ---

// CreateForm yeni bir formu soru ve cevaplarıyla birlikte tek transaction'da
// oluşturur. Girdi sırası ekleme sırası olarak korunur.
func (s *FormService) CreateForm(ctx context.Context, ownerID, title, description string, questions []models.Question) (*models.Form, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: geçersiz sahip ID", ErrFormInvalidInput)
	}
	if err := ValidateFormInput(title, questions); err != nil {
		return nil, err
	}

	form := models.Form{
		Title:       title,
		Description: description,
		UserID:      ownerID,
		Questions:   questions,
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		return formRepoTx.CreateTree(ctx, &form)
	})
	if txErr != nil {
		configslog.Log.Error("CreateForm transaction failed", zap.String("ownerID", ownerID), zap.Error(txErr))
		return nil, classifyFormError(txErr)
	}

	configslog.SLog.Infof("Form başarıyla oluşturuldu: ID %s, Başlık: %s (Sahip: %s)", form.ID, form.Title, ownerID)
	return &form, nil
}

// GetFormByID formu ağacıyla getirir. Sahip olmayan (admin dahil) aktör için
// ErrFormNotFound döner.
func (s *FormService) GetFormByID(ctx context.Context, actor Actor, formID string) (*models.Form, error) {
	if formID == "" {
		return nil, fmt.Errorf("%w: geçersiz Form ID", ErrFormInvalidInput)
	}
	form, err := s.repo.FindByID(ctx, formID)
	if err != nil {
		return nil, classifyFormError(err)
	}
	if err := authorizeFormOwner(form, actor, false); err != nil {
		return nil, err
	}
	return form, nil
}

// GetFormsForUser kullanıcının tüm formlarını iç içe ağaçlarla getirir.
// Aktör yalnızca kendi formlarını listeleyebilir; admin herkesinkini.
// Form yoksa boş dilim döner.
func (s *FormService) GetFormsForUser(ctx context.Context, actor Actor, userID string) ([]models.Form, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: geçersiz kullanıcı ID", ErrFormInvalidInput)
	}
	if actor.ID != userID && !actor.Admin {
		return nil, ErrFormNotFound
	}

	forms, err := s.repo.FindAllByUserID(ctx, userID)
	if err != nil {
		return nil, classifyFormError(err)
	}
	return forms, nil
}

// UpdateForm form başlığı/açıklaması ile çocuk senkronizasyonunu tek
// transaction'da yapar. Form satırı önce FOR UPDATE ile kilitlenir; aynı
// forma yazan eşzamanlı çağrılar bu kilitte serileşir. Sahiplik kontrolü
// kilitli kayıt üzerinde yapılır.
func (s *FormService) UpdateForm(ctx context.Context, actor Actor, formID, title, description string, questions []models.Question, strategy UpdateStrategy) (*models.Form, error) {
	if formID == "" || actor.ID == "" {
		return nil, fmt.Errorf("%w: geçersiz ID veya aktör", ErrFormInvalidInput)
	}
	if err := ValidateFormInput(title, questions); err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = StrategyMerge
	}
	if strategy != StrategyMerge && strategy != StrategyReplace {
		return nil, ErrFormUnknownStrategy
	}

	var updated *models.Form
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		formRepoTx := repositories.NewFormRepositoryTx(tx)

		// a. Kaydı kilitli al
		existing, err := formRepoTx.FindByIDLocked(ctx, formID)
		if err != nil {
			return err
		}

		// b. Yetki kontrolü (güncellemede admin bypass yok)
		if err := authorizeFormOwner(existing, actor, false); err != nil {
			return err
		}

		// c. Form satırını güncelle; sahip alanına dokunulmaz.
		err = tx.Model(&models.Form{}).Where("id = ?", formID).
			Updates(map[string]interface{}{"title": title, "description": description}).Error
		if err != nil {
			return err
		}

		// d. Çocukları seçilen stratejiyle senkronize et
		switch strategy {
		case StrategyReplace:
			if err := formRepoTx.ReplaceTree(ctx, formID, questions); err != nil {
				return err
			}
		default:
			if err := formRepoTx.SyncTree(ctx, formID, questions); err != nil {
				return err
			}
		}

		// e. Sonucu aynı transaction içinden oku
		updated, err = formRepoTx.FindByID(ctx, formID)
		return err
	})
	if txErr != nil {
		configslog.Log.Error("UpdateForm transaction failed",
			zap.String("formID", formID), zap.String("actorID", actor.ID),
			zap.String("strategy", string(strategy)), zap.Error(txErr))
		return nil, classifyFormError(txErr)
	}

	configslog.SLog.Infof("Form başarıyla güncellendi: ID %s (Güncelleyen: %s, Strateji: %s)", formID, actor.ID, strategy)
	return updated, nil
}

// DeleteForm formu ve tüm alt ağacını tek transaction'da siler. adminOverride
// yalnızca bu yolda tanınır ve çağıranın açık girdisiyle gelir; varsayılan
// davranış admin için de sahiplik şartıdır.
func (s *FormService) DeleteForm(ctx context.Context, actor Actor, formID string, adminOverride bool) error {
	if formID == "" || actor.ID == "" {
		return fmt.Errorf("%w: geçersiz ID veya aktör", ErrFormInvalidInput)
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		formRepoTx := repositories.NewFormRepositoryTx(tx)

		// a. Kaydı kilitli al ve yetki kontrolü yap
		existing, err := formRepoTx.FindByIDLocked(ctx, formID)
		if err != nil {
			return err
		}
		if err := authorizeFormOwner(existing, actor, adminOverride); err != nil {
			return err
		}

		// b. Çocuktan ebeveyne sil
		return formRepoTx.DeleteTree(ctx, formID)
	})
	if txErr != nil {
		configslog.Log.Error("DeleteForm transaction failed",
			zap.String("formID", formID), zap.String("actorID", actor.ID), zap.Error(txErr))
		return classifyFormError(txErr)
	}

	configslog.SLog.Infof("Form ve alt ağacı başarıyla silindi: ID %s (Silen: %s)", formID, actor.ID)
	return nil
}

// GetFormCountForUser kullanıcıya ait form sayısını alır.
func (s *FormService) GetFormCountForUser(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		configslog.Log.Error("Kullanıcı form sayısı alınırken hata", zap.String("userID", userID), zap.Error(err))
		return 0, classifyFormError(err)
	}
	return count, nil
}

var _ IFormService = (*FormService)(nil)
