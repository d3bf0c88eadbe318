package repositories

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"anket.link/configs/configslog"
	"anket.link/models"
	"anket.link/pkg/identifier"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	configslog.InitLogger()
	os.Exit(m.Run())
}

// newTestDB in-memory SQLite açar ve şemayı kurar. TranslateError açık;
// unique ihlalleri üretimdeki gibi gorm.ErrDuplicatedKey olarak gelir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("havuza erişilemedi: %v", err)
	}
	// :memory: veritabanı bağlantıya bağlıdır; tek bağlantı zorunlu.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Form{}, &models.Question{}, &models.Answer{}); err != nil {
		t.Fatalf("migrasyon başarısız: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	user := models.User{
		Username: "user_" + id,
		Email:    id + "@example.com",
		Password: "hash",
	}
	user.ID = id
	if err := db.Omit("Forms").Create(&user).Error; err != nil {
		t.Fatalf("test kullanıcısı oluşturulamadı: %v", err)
	}
}

func sampleTree(ownerID string) models.Form {
	return models.Form{
		Title:       "Matematik Testi",
		Description: "temel",
		UserID:      ownerID,
		Questions: []models.Question{
			{
				QuestionText: "2+2 kaçtır?",
				Answers: []models.Answer{
					{AnswerText: "4", IsCorrect: true},
					{AnswerText: "5"},
				},
			},
			{
				QuestionText: "3x3 kaçtır?",
				Answers: []models.Answer{
					{AnswerText: "9", IsCorrect: true},
				},
			},
		},
	}
}

func createTree(t *testing.T, db *gorm.DB, form *models.Form) {
	t.Helper()
	err := db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).CreateTree(context.Background(), form)
	})
	if err != nil {
		t.Fatalf("CreateTree başarısız: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("sayım başarısız: %v", err)
	}
	return n
}

func TestCreateRowWithID_RetriesOnDuplicateKey(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")

	form := models.Form{Title: "Deneme", UserID: "US1111"}
	form.ID = "FO1000"
	if err := db.Omit(clause.Associations).Create(&form).Error; err != nil {
		t.Fatalf("form eklenemedi: %v", err)
	}
	taken := models.Question{QuestionText: "dolu", FormID: form.ID}
	taken.ID = "QU1000"
	if err := db.Omit(clause.Associations).Create(&taken).Error; err != nil {
		t.Fatalf("soru eklenemedi: %v", err)
	}

	// İlk iki deneme dolu ID'ye çarpar, üçüncüsü üretilen ID ile geçer.
	// Başarısız INSERT'ler savepoint'e geri alındığı için transaction
	// bozulmadan commit edebilmelidir.
	attempts := 0
	fresh := models.Question{QuestionText: "yeni", FormID: form.ID}
	err := db.Transaction(func(tx *gorm.DB) error {
		return createRowWithID(tx, identifier.KindQuestion,
			func(id string) { fresh.ID = id },
			func(db *gorm.DB) error {
				attempts++
				if attempts <= 2 {
					dup := models.Question{QuestionText: "çakışma", FormID: form.ID}
					dup.ID = taken.ID
					return db.Omit(clause.Associations).Create(&dup).Error
				}
				return db.Omit(clause.Associations).Create(&fresh).Error
			})
	})
	if err != nil {
		t.Fatalf("çakışma sonrası yeniden deneme başarısız: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("beklenen 3 deneme, yapılan %d", attempts)
	}

	if n := countRows(t, db, &models.Question{}); n != 2 {
		t.Fatalf("çakışan denemelerden iz kaldı, soru sayısı: %d", n)
	}
	var kept models.Question
	if err := db.First(&kept, "id = ?", taken.ID).Error; err != nil {
		t.Fatalf("mevcut satır bulunamadı: %v", err)
	}
	if kept.QuestionText != "dolu" {
		t.Fatalf("mevcut satırın içeriği değişti: %q", kept.QuestionText)
	}
	if !strings.HasPrefix(fresh.ID, "QU") {
		t.Fatalf("üretilen ID öneki beklenmedik: %q", fresh.ID)
	}
}

func TestCreateRowWithID_BudgetExhaustedIsConflict(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")

	form := models.Form{Title: "Deneme", UserID: "US1111"}
	form.ID = "FO1000"
	if err := db.Omit(clause.Associations).Create(&form).Error; err != nil {
		t.Fatalf("form eklenemedi: %v", err)
	}
	taken := models.Question{QuestionText: "dolu", FormID: form.ID}
	taken.ID = "QU1000"
	if err := db.Omit(clause.Associations).Create(&taken).Error; err != nil {
		t.Fatalf("soru eklenemedi: %v", err)
	}

	// Her deneme aynı dolu ID'ye çarparsa bütçe tükenir ve ErrConflict döner.
	attempts := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		return createRowWithID(tx, identifier.KindQuestion,
			func(string) {},
			func(db *gorm.DB) error {
				attempts++
				dup := models.Question{QuestionText: "çakışma", FormID: form.ID}
				dup.ID = taken.ID
				return db.Omit(clause.Associations).Create(&dup).Error
			})
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("beklenen ErrConflict, gelen %v", err)
	}
	if attempts != idMaxAttempts {
		t.Fatalf("beklenen %d deneme, yapılan %d", idMaxAttempts, attempts)
	}
	if n := countRows(t, db, &models.Question{}); n != 1 {
		t.Fatalf("rollback sonrası soru sayısı beklenmedik: %d", n)
	}
}

func TestCreateTree_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")
	repo := NewFormRepository(db)

	form := sampleTree("US1111")
	createTree(t, db, &form)

	if !strings.HasPrefix(form.ID, "FO") {
		t.Fatalf("form ID öneki beklenmedik: %q", form.ID)
	}

	forms, err := repo.FindAllByUserID(context.Background(), "US1111")
	if err != nil {
		t.Fatalf("FindAllByUserID başarısız: %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("beklenen 1 form, gelen %d", len(forms))
	}

	got := forms[0]
	if got.Title != "Matematik Testi" || got.Description != "temel" {
		t.Fatalf("form alanları uyuşmuyor: %+v", got)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("beklenen 2 soru, gelen %d", len(got.Questions))
	}
	if got.Questions[0].QuestionText != "2+2 kaçtır?" {
		t.Fatalf("soru sırası/metni uyuşmuyor: %q", got.Questions[0].QuestionText)
	}
	if len(got.Questions[0].Answers) != 2 || len(got.Questions[1].Answers) != 1 {
		t.Fatalf("cevap sayıları uyuşmuyor: %d / %d", len(got.Questions[0].Answers), len(got.Questions[1].Answers))
	}
	if !got.Questions[0].Answers[0].IsCorrect || got.Questions[0].Answers[0].AnswerText != "4" {
		t.Fatalf("ilk cevap uyuşmuyor: %+v", got.Questions[0].Answers[0])
	}

	for _, q := range got.Questions {
		if !strings.HasPrefix(q.ID, string(identifier.KindQuestion)) {
			t.Fatalf("soru ID öneki beklenmedik: %q", q.ID)
		}
		if q.FormID != got.ID {
			t.Fatalf("soru yanlış forma bağlı: %q", q.FormID)
		}
		for _, a := range q.Answers {
			if !strings.HasPrefix(a.ID, string(identifier.KindAnswer)) {
				t.Fatalf("cevap ID öneki beklenmedik: %q", a.ID)
			}
			if a.QuestionID != q.ID {
				t.Fatalf("cevap yanlış soruya bağlı: %q", a.QuestionID)
			}
		}
	}
}

func TestCreateTree_FailureLeavesNoRows(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")

	form := sampleTree("US1111")
	injected := errors.New("disk hatası")
	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewFormRepositoryTx(tx)
		if err := repo.CreateTree(context.Background(), &form); err != nil {
			return err
		}
		// Ağaç tamamen yazıldıktan sonra patlayan bir adımı taklit et.
		return injected
	})
	if !errors.Is(err, injected) {
		t.Fatalf("beklenen enjekte hata, gelen: %v", err)
	}

	if n := countRows(t, db, &models.Form{}); n != 0 {
		t.Fatalf("rollback sonrası form satırı kaldı: %d", n)
	}
	if n := countRows(t, db, &models.Question{}); n != 0 {
		t.Fatalf("rollback sonrası soru satırı kaldı: %d", n)
	}
	if n := countRows(t, db, &models.Answer{}); n != 0 {
		t.Fatalf("rollback sonrası cevap satırı kaldı: %d", n)
	}
}

func TestSyncTree_MergeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")
	repo := NewFormRepository(db)
	ctx := context.Background()

	form := sampleTree("US1111")
	createTree(t, db, &form)

	// İlk okuma ID'li girdiyi verir; aynı girdiyle iki kez senkronize et.
	persisted, err := repo.FindByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return NewFormRepositoryTx(tx).SyncTree(ctx, form.ID, persisted.Questions)
		})
		if err != nil {
			t.Fatalf("SyncTree (%d. çağrı) başarısız: %v", i+1, err)
		}
	}

	if n := countRows(t, db, &models.Question{}); n != 2 {
		t.Fatalf("idempotens bozuldu, soru sayısı: %d", n)
	}
	if n := countRows(t, db, &models.Answer{}); n != 3 {
		t.Fatalf("idempotens bozuldu, cevap sayısı: %d", n)
	}

	after, err := repo.FindByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}
	for i, q := range after.Questions {
		if q.QuestionText != persisted.Questions[i].QuestionText {
			t.Fatalf("soru içeriği değişti: %q", q.QuestionText)
		}
	}
}

func TestSyncTree_PreservesOmittedChildren(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")
	repo := NewFormRepository(db)
	ctx := context.Background()

	form := sampleTree("US1111")
	createTree(t, db, &form)

	persisted, err := repo.FindByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}

	// Yalnızca ilk soruyu, değişmiş metinle gönder; ikinci soru girdide yok.
	edited := persisted.Questions[0]
	edited.QuestionText = "2+2 kaç eder?"
	err = db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).SyncTree(ctx, form.ID, []models.Question{edited})
	})
	if err != nil {
		t.Fatalf("SyncTree başarısız: %v", err)
	}

	after, err := repo.FindByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}
	if len(after.Questions) != 2 {
		t.Fatalf("merge girdide olmayan soruyu sildi: %d soru kaldı", len(after.Questions))
	}
	if after.Questions[0].QuestionText != "2+2 kaç eder?" {
		t.Fatalf("soru güncellenmedi: %q", after.Questions[0].QuestionText)
	}
	if after.Questions[1].QuestionText != "3x3 kaçtır?" {
		t.Fatalf("dokunulmaması gereken soru değişti: %q", after.Questions[1].QuestionText)
	}
}

func TestSyncTree_RejectsForeignChildren(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")
	seedUser(t, db, "US2222")
	repo := NewFormRepository(db)
	ctx := context.Background()

	victim := sampleTree("US1111")
	createTree(t, db, &victim)
	attacker := sampleTree("US2222")
	createTree(t, db, &attacker)

	victimTree, err := repo.FindByID(ctx, victim.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}
	foreignQuestion := victimTree.Questions[0]

	// Başka formun sorusu ID'siyle gönderilirse merge reddetmeli.
	stolen := models.Question{QuestionText: "ele geçirildi"}
	stolen.ID = foreignQuestion.ID
	err = db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).SyncTree(ctx, attacker.ID, []models.Question{stolen})
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("yabancı soru ID'si: beklenen ErrNotFound, gelen %v", err)
	}

	// Aynısı cevap düzeyinde: kendi sorusunun altına yabancı cevap ID'si.
	attackerTree, err := repo.FindByID(ctx, attacker.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}
	ownQuestion := attackerTree.Questions[0]
	stolenAnswer := models.Answer{AnswerText: "ele geçirildi"}
	stolenAnswer.ID = victimTree.Questions[0].Answers[0].ID
	ownQuestion.Answers = []models.Answer{stolenAnswer}
	err = db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).SyncTree(ctx, attacker.ID, []models.Question{ownQuestion})
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("yabancı cevap ID'si: beklenen ErrNotFound, gelen %v", err)
	}

	// Kurbanın ağacı hiçbir şekilde değişmemiş olmalı.
	after, err := repo.FindByID(ctx, victim.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}
	if len(after.Questions) != 2 {
		t.Fatalf("kurbanın soru sayısı değişti: %d", len(after.Questions))
	}
	if after.Questions[0].QuestionText != "2+2 kaçtır?" || after.Questions[0].FormID != victim.ID {
		t.Fatalf("kurbanın sorusu değişti: %+v", after.Questions[0])
	}
	if after.Questions[0].Answers[0].AnswerText != "4" {
		t.Fatalf("kurbanın cevabı değişti: %+v", after.Questions[0].Answers[0])
	}
}

func TestSyncTree_InsertsNewChildren(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")
	repo := NewFormRepository(db)
	ctx := context.Background()

	form := sampleTree("US1111")
	createTree(t, db, &form)

	newQuestion := models.Question{
		QuestionText: "5-3 kaçtır?",
		Answers:      []models.Answer{{AnswerText: "2", IsCorrect: true}},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).SyncTree(ctx, form.ID, []models.Question{newQuestion})
	})
	if err != nil {
		t.Fatalf("SyncTree başarısız: %v", err)
	}

	after, err := repo.FindByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}
	if len(after.Questions) != 3 {
		t.Fatalf("yeni soru eklenmedi: %d soru var", len(after.Questions))
	}
	last := after.Questions[len(after.Questions)-1]
	if !strings.HasPrefix(last.ID, "QU") || last.QuestionText != "5-3 kaçtır?" {
		t.Fatalf("yeni soru beklenmedik: %+v", last)
	}
	if len(last.Answers) != 1 || !strings.HasPrefix(last.Answers[0].ID, "AN") {
		t.Fatalf("yeni cevap beklenmedik: %+v", last.Answers)
	}
}

func TestReplaceTree_DropsOmittedChildren(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")
	repo := NewFormRepository(db)
	ctx := context.Background()

	form := sampleTree("US1111")
	createTree(t, db, &form)

	replacement := []models.Question{
		{
			QuestionText: "10/2 kaçtır?",
			Answers:      []models.Answer{{AnswerText: "5", IsCorrect: true}},
		},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).ReplaceTree(ctx, form.ID, replacement)
	})
	if err != nil {
		t.Fatalf("ReplaceTree başarısız: %v", err)
	}

	after, err := repo.FindByID(ctx, form.ID)
	if err != nil {
		t.Fatalf("FindByID başarısız: %v", err)
	}
	if len(after.Questions) != 1 {
		t.Fatalf("replace sonrası soru sayısı: %d", len(after.Questions))
	}
	if after.Questions[0].QuestionText != "10/2 kaçtır?" {
		t.Fatalf("replace içeriği uyuşmuyor: %q", after.Questions[0].QuestionText)
	}
	if n := countRows(t, db, &models.Answer{}); n != 1 {
		t.Fatalf("eski cevaplar temizlenmedi: %d", n)
	}
}

func TestDeleteTree_LeavesNoOrphans(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "US1111")
	seedUser(t, db, "US2222")
	repo := NewFormRepository(db)
	ctx := context.Background()

	victim := sampleTree("US1111")
	createTree(t, db, &victim)
	survivor := sampleTree("US2222")
	createTree(t, db, &survivor)

	err := db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).DeleteTree(ctx, victim.ID)
	})
	if err != nil {
		t.Fatalf("DeleteTree başarısız: %v", err)
	}

	if _, err := repo.FindByID(ctx, victim.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("silinen form hâlâ bulunuyor: %v", err)
	}

	var orphanQuestions int64
	if err := db.Model(&models.Question{}).Where("form_id = ?", victim.ID).Count(&orphanQuestions).Error; err != nil {
		t.Fatalf("sayım başarısız: %v", err)
	}
	if orphanQuestions != 0 {
		t.Fatalf("öksüz soru kaldı: %d", orphanQuestions)
	}

	// Diğer kullanıcının ağacı olduğu gibi durmalı.
	remaining, err := repo.FindByID(ctx, survivor.ID)
	if err != nil {
		t.Fatalf("diğer form etkilendi: %v", err)
	}
	if len(remaining.Questions) != 2 {
		t.Fatalf("diğer formun soruları etkilendi: %d", len(remaining.Questions))
	}
}

func TestDeleteTree_MissingFormIsNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return NewFormRepositoryTx(tx).DeleteTree(ctx, "FO9999")
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("beklenen ErrNotFound, gelen: %v", err)
	}
}

func TestFindAllByUserID_EmptyIsNotError(t *testing.T) {
	db := newTestDB(t)
	repo := NewFormRepository(db)

	forms, err := repo.FindAllByUserID(context.Background(), "US0000")
	if err != nil {
		t.Fatalf("boş sonuç hata döndürdü: %v", err)
	}
	if forms == nil || len(forms) != 0 {
		t.Fatalf("beklenen boş dilim, gelen: %#v", forms)
	}
}
