package routes

import (
	"anket.link/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps rota kaydı için gereken servisler.
type Deps struct {
	FormService  services.IFormService
	UserService  services.IUserService
	AuthService  services.IAuthService
	TokenService services.ITokenService
}

// SetupRoutes tüm uygulama rotalarını ve genel middleware'leri ayarlar.
func SetupRoutes(app *fiber.App, deps Deps) {
	app.Use(recoverMiddleware.New()) // Panic yakalama
	app.Use(logger.New())            // İstek loglama

	registerAPIRoutes(app, deps)

	// 404: eşleşmeyen tüm rotalar
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "kaynak bulunamadı"})
	})
}
