package migrations

import (
	"anket.link/configs/configslog"
	"anket.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateRefreshTokensTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating refresh_tokens table...")
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		configslog.Log.Error("Failed to migrate refresh_tokens table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Refresh tokens table migrated successfully")
	return nil
}
