package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anket.link/configs/configsapp"
	"anket.link/configs/configsdatabase"
	"anket.link/configs/configslog"
	"anket.link/pkg/mailer"
	"anket.link/pkg/otpstore"
	"anket.link/repositories"
	"anket.link/routes"
	"anket.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	cfg := configsapp.LoadConfig()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()
	db := configsdatabase.GetDB()

	otps := otpstore.New(cfg.OTPTTL)
	defer otps.Close()

	// Süresi dolan refresh token kayıtları periyodik olarak temizlenir.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		tokenRepo := repositories.NewTokenRepository(db)
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if n, err := tokenRepo.DeleteExpired(cleanupCtx); err != nil {
					configslog.Log.Error("Süresi dolan token'lar temizlenemedi", zap.Error(err))
				} else if n > 0 {
					configslog.SLog.Infof("Süresi dolan %d refresh token temizlendi", n)
				}
			}
		}
	}()

	tokenService := services.NewTokenService(cfg)
	deps := routes.Deps{
		FormService:  services.NewFormService(db),
		UserService:  services.NewUserService(db),
		AuthService:  services.NewAuthService(db, tokenService, otps, mailer.NewSMTPMailer(cfg)),
		TokenService: tokenService,
	}

	app := fiber.New(fiber.Config{
		AppName: "anket.link",
	})
	routes.SetupRoutes(app, deps)

	// Graceful shutdown: açık istekler tamamlanır, transaction'lar
	// commit/rollback ile sonuçlanır.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		configslog.SLog.Info("Kapatma sinyali alındı, sunucu durduruluyor...")
		_ = app.Shutdown()
	}()

	configslog.SLog.Infof("Sunucu dinlemede: %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		configslog.Log.Fatal("Sunucu başlatılamadı", zap.Error(err))
	}
}
