package middlewares

import (
	"strings"

	"anket.link/services"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware Authorization başlığındaki Bearer token'ı doğrular ve
// aktör kimliğini locals'a koyar. Token yoksa veya geçersizse 401 döner.
func AuthMiddleware(tokens services.ITokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "oturum açmanız gerekiyor"})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "geçersiz token formatı"})
		}

		claims, err := tokens.ParseAccessToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "token geçersiz veya süresi dolmuş"})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("isAdmin", claims.Admin)
		return c.Next()
	}
}

// RequireAdmin yalnızca admin aktörlere izin verir. AuthMiddleware'den
// sonra kullanılmalıdır.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, ok := c.Locals("isAdmin").(bool)
		if !ok || !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "bu işlem için yetkiniz yok"})
		}
		return c.Next()
	}
}

// ActorFromLocals locals'taki kimliği services.Actor olarak döndürür.
func ActorFromLocals(c *fiber.Ctx) services.Actor {
	actor := services.Actor{}
	if id, ok := c.Locals("userID").(string); ok {
		actor.ID = id
	}
	if admin, ok := c.Locals("isAdmin").(bool); ok {
		actor.Admin = admin
	}
	return actor
}
