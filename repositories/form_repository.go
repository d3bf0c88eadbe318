package repositories

import (
	"context"
	"errors"
	"fmt"

	"anket.link/configs/configslog"
	"anket.link/models"
	"anket.link/pkg/identifier"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ID üretimi rastgele olduğundan çakışma gerçek bir sonuçtur; satır başına
// bu kadar yeniden üretim denenir, sonrası ErrConflict.
const idMaxAttempts = 5

// IFormRepository Form→Question→Answer ağacının veritabanı işlemleri için
// arayüz. Ağaca yazan metodlar çağıranın transaction'ı içinde çalışmalıdır
// (NewFormRepositoryTx ile).
type IFormRepository interface {
	CreateTree(ctx context.Context, form *models.Form) error
	SyncTree(ctx context.Context, formID string, questions []models.Question) error
	ReplaceTree(ctx context.Context, formID string, questions []models.Question) error
	DeleteTree(ctx context.Context, formID string) error
	FindByID(ctx context.Context, id string) (*models.Form, error)
	FindByIDLocked(ctx context.Context, id string) (*models.Form, error)
	FindAllByUserID(ctx context.Context, userID string) ([]models.Form, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

// FormRepository IFormRepository arayüzünü uygular.
type FormRepository struct {
	db *gorm.DB
}

// NewFormRepository verilen DB bağlantısıyla bir FormRepository oluşturur.
func NewFormRepository(db *gorm.DB) IFormRepository {
	return &FormRepository{db: db}
}

// NewFormRepositoryTx transaction'a bağlı bir FormRepository oluşturur.
func NewFormRepositoryTx(tx *gorm.DB) IFormRepository {
	return &FormRepository{db: tx}
}

func (r *FormRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// createRowWithID satırı üretilmiş bir ID ile ekler. Unique ihlalinde
// savepoint'e dönüp yeni ID ile tekrar dener; böylece tek satırlık çakışma
// sarmalayan transaction'ı bozmaz. Bütçe tükenince ErrConflict döner.
func createRowWithID(tx *gorm.DB, kind identifier.Kind, setID func(string), create func(*gorm.DB) error) error {
	for attempt := 1; attempt <= idMaxAttempts; attempt++ {
		setID(identifier.New(kind))

		sp := fmt.Sprintf("sp_%s_%d", kind, attempt)
		if err := tx.SavePoint(sp).Error; err != nil {
			return err
		}
		err := create(tx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if rbErr := tx.RollbackTo(sp).Error; rbErr != nil {
			return rbErr
		}
	}
	configslog.Log.Error("ID üretim bütçesi tükendi", zap.String("kind", string(kind)))
	return ErrConflict
}

// CreateTree form satırını ve ardından girdi sırasıyla tüm soru/cevap
// satırlarını ekler. Her satırın ID'si burada üretilir. Herhangi bir ekleme
// başarısız olursa hata döner; rollback sarmalayan transaction'a aittir.
func (r *FormRepository) CreateTree(ctx context.Context, form *models.Form) error {
	if form == nil || form.UserID == "" {
		return errors.New("sahipsiz form oluşturulamaz")
	}
	tx := r.getDB(ctx)

	err := createRowWithID(tx, identifier.KindForm,
		func(id string) { form.ID = id },
		func(db *gorm.DB) error {
			return db.Omit(clause.Associations).Create(form).Error
		})
	if err != nil {
		return err
	}

	for qi := range form.Questions {
		question := &form.Questions[qi]
		question.FormID = form.ID
		err := createRowWithID(tx, identifier.KindQuestion,
			func(id string) { question.ID = id },
			func(db *gorm.DB) error {
				return db.Omit(clause.Associations).Create(question).Error
			})
		if err != nil {
			return err
		}

		for ai := range question.Answers {
			answer := &question.Answers[ai]
			answer.QuestionID = question.ID
			err := createRowWithID(tx, identifier.KindAnswer,
				func(id string) { answer.ID = id },
				func(db *gorm.DB) error {
					return db.Create(answer).Error
				})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// SyncTree merge stratejisi: ID'si verilen çocuklar yerinde upsert edilir,
// ID'sizler yeni ID ile eklenir. Girdide olmayan mevcut çocuklara DOKUNULMAZ;
// silme isteyen çağıran ReplaceTree veya DeleteTree kullanır. Aynı girdiyle
// ikinci çağrı yeni satır üretmez.
//
// ID'li bir çocuk ancak bu formun altındaysa (veya hiç yoksa) kabul edilir;
// başka forma ait bir ID ErrNotFound döndürür. Upsert ebeveyn kolonuna asla
// yazmaz, çocuk başka forma taşınamaz.
func (r *FormRepository) SyncTree(ctx context.Context, formID string, questions []models.Question) error {
	if formID == "" {
		return errors.New("geçersiz Form ID")
	}
	tx := r.getDB(ctx)

	for qi := range questions {
		question := &questions[qi]
		question.FormID = formID

		if question.ID == "" {
			err := createRowWithID(tx, identifier.KindQuestion,
				func(id string) { question.ID = id },
				func(db *gorm.DB) error {
					return db.Omit(clause.Associations).Create(question).Error
				})
			if err != nil {
				return err
			}
		} else {
			if err := questionBelongsToForm(tx, question.ID, formID); err != nil {
				return err
			}
			err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"question_text", "updated_at"}),
			}).Create(question).Error
			if err != nil {
				return err
			}
		}

		for ai := range question.Answers {
			answer := &question.Answers[ai]
			answer.QuestionID = question.ID

			if answer.ID == "" {
				err := createRowWithID(tx, identifier.KindAnswer,
					func(id string) { answer.ID = id },
					func(db *gorm.DB) error {
						return db.Create(answer).Error
					})
				if err != nil {
					return err
				}
			} else {
				if err := answerBelongsToQuestion(tx, answer.ID, question.ID); err != nil {
					return err
				}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"answer_text", "is_correct", "updated_at"}),
				}).Create(answer).Error
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// questionBelongsToForm ID'li soru girdisinin hedef forma ait olduğunu
// doğrular. Satır yoksa ekleme serbesttir; başka formun satırıysa ErrNotFound
// döner (sahiplik sızıntısı yok, form yokmuş gibi davranılır).
func questionBelongsToForm(tx *gorm.DB, questionID, formID string) error {
	var ownerFormID string
	err := tx.Model(&models.Question{}).Select("form_id").
		Where("id = ?", questionID).Take(&ownerFormID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if ownerFormID != formID {
		return ErrNotFound
	}
	return nil
}

// answerBelongsToQuestion ID'li cevap girdisi için aynı kuralı soru
// düzeyinde uygular.
func answerBelongsToQuestion(tx *gorm.DB, answerID, questionID string) error {
	var ownerQuestionID string
	err := tx.Model(&models.Answer{}).Select("question_id").
		Where("id = ?", answerID).Take(&ownerQuestionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if ownerQuestionID != questionID {
		return ErrNotFound
	}
	return nil
}

// ReplaceTree replace stratejisi: formun altındaki tüm soru/cevap satırlarını
// çocuktan ebeveyne doğru siler, sonra girdiyi CreateTree ile aynı kurallarla
// yeniden ekler. Girdide olmayan çocuklar kalıcı olarak kaybolur.
func (r *FormRepository) ReplaceTree(ctx context.Context, formID string, questions []models.Question) error {
	if formID == "" {
		return errors.New("geçersiz Form ID")
	}
	tx := r.getDB(ctx)

	if err := r.deleteChildren(tx, formID); err != nil {
		return err
	}

	for qi := range questions {
		question := &questions[qi]
		question.ID = ""
		question.FormID = formID
		err := createRowWithID(tx, identifier.KindQuestion,
			func(id string) { question.ID = id },
			func(db *gorm.DB) error {
				return db.Omit(clause.Associations).Create(question).Error
			})
		if err != nil {
			return err
		}

		for ai := range question.Answers {
			answer := &question.Answers[ai]
			answer.ID = ""
			answer.QuestionID = question.ID
			err := createRowWithID(tx, identifier.KindAnswer,
				func(id string) { answer.ID = id },
				func(db *gorm.DB) error {
					return db.Create(answer).Error
				})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteTree formu ve tüm alt ağacını siler: önce cevaplar, sonra sorular,
// en son form satırı. Bu sıra foreign key uygulayan backend'lerde zorunludur.
func (r *FormRepository) DeleteTree(ctx context.Context, formID string) error {
	if formID == "" {
		return errors.New("geçersiz Form ID")
	}
	tx := r.getDB(ctx)

	if err := r.deleteChildren(tx, formID); err != nil {
		return err
	}

	result := tx.Where("id = ?", formID).Delete(&models.Form{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteChildren cevapları soru ID'lerinin parametreli alt sorgusu üzerinden,
// ardından soruları siler. String birleştirme yok; alt sorgu GORM tarafından
// bağlanır.
func (r *FormRepository) deleteChildren(tx *gorm.DB, formID string) error {
	questionIDs := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Question{}).Select("id").Where("form_id = ?", formID)

	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Answer{}).Error; err != nil {
		return err
	}
	if err := tx.Where("form_id = ?", formID).Delete(&models.Question{}).Error; err != nil {
		return err
	}
	return nil
}

// FindByID formu soru ve cevaplarıyla birlikte getirir. Çocuklar ekleme
// sırasını yansıtması için created_at, id ile sıralanır.
func (r *FormRepository) FindByID(ctx context.Context, id string) (*models.Form, error) {
	return r.findByID(r.getDB(ctx), id)
}

// FindByIDLocked formu FOR UPDATE kilidiyle getirir. Aynı forma yazan eşzamanlı
// transaction'lar bu kilit üzerinden serileşir. SQLite FOR UPDATE tanımaz;
// orada zaten tek yazar vardır, kilit cümlesi atlanır.
func (r *FormRepository) FindByIDLocked(ctx context.Context, id string) (*models.Form, error) {
	db := r.getDB(ctx)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findByID(db, id)
}

func (r *FormRepository) findByID(db *gorm.DB, id string) (*models.Form, error) {
	if id == "" {
		return nil, errors.New("geçersiz Form ID")
	}
	var form models.Form
	err := db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.created_at ASC, questions.id ASC")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.created_at ASC, answers.id ASC")
		}).
		First(&form, "forms.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormRepository.FindByID: DB error", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &form, nil
}

// FindAllByUserID kullanıcının tüm formlarını iç içe soru/cevaplarla getirir.
// Preload çocukları toplu sorgularla yükler; form başına ek sorgu atılmaz.
// Kullanıcının formu yoksa boş dilim döner, hata değil.
func (r *FormRepository) FindAllByUserID(ctx context.Context, userID string) ([]models.Form, error) {
	if userID == "" {
		return nil, errors.New("geçersiz User ID")
	}
	forms := []models.Form{}
	err := r.getDB(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.created_at ASC, questions.id ASC")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.created_at ASC, answers.id ASC")
		}).
		Where("user_id = ?", userID).
		Order("forms.created_at ASC, forms.id ASC").
		Find(&forms).Error
	if err != nil {
		configslog.Log.Error("FormRepository.FindAllByUserID: DB error", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return forms, nil
}

// CountByUserID kullanıcıya ait form sayısını döndürür.
func (r *FormRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, errors.New("geçersiz User ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Form{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

var _ IFormRepository = (*FormRepository)(nil)
