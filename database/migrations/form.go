package migrations

import (
	"anket.link/configs/configslog"
	"anket.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrateFormTables forms, questions ve answers tablolarını ebeveynden
// çocuğa doğru sırayla oluşturur (FK'lar sıraya bağlı).
func MigrateFormTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating forms, questions & answers tables...")
	if err := db.AutoMigrate(&models.Form{}, &models.Question{}, &models.Answer{}); err != nil {
		configslog.Log.Error("Failed to migrate form tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Form tables migrated successfully")
	return nil
}
