package seeders

import (
	"errors"
	"os"

	"anket.link/configs/configslog"
	"anket.link/models"
	"anket.link/pkg/identifier"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdminUser ADMIN_USERNAME/ADMIN_EMAIL/ADMIN_PASSWORD ortam
// değişkenlerinden bir admin kullanıcı oluşturur; varsa dokunmaz.
func SeedAdminUser(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		configslog.SLog.Info("Admin seed değişkenleri tanımlı değil, admin kullanıcı atlanıyor.")
		return nil
	}

	var existing models.User
	err := db.First(&existing, "username = ?", username).Error
	if err == nil {
		configslog.SLog.Infof("Admin kullanıcı zaten mevcut: %s", existing.ID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Admin:    true,
		Verified: true,
	}
	admin.ID = identifier.New(identifier.KindUser)
	if err := db.Omit("Forms").Create(&admin).Error; err != nil {
		return err
	}

	configslog.SLog.Infof("Admin kullanıcı oluşturuldu: %s (%s)", admin.ID, admin.Username)
	return nil
}
