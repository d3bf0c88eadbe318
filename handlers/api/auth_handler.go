package api

import (
	"errors"
	"time"

	"anket.link/configs/configslog"
	"anket.link/dto"
	"anket.link/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const refreshCookieName = "refreshToken"

// AuthHandler kayıt/giriş/OTP/oturum uçlarının JSON handler'ı.
type AuthHandler struct {
	service  services.IAuthService
	validate *validator.Validate
}

// NewAuthHandler yeni bir AuthHandler örneği oluşturur.
func NewAuthHandler(service services.IAuthService) *AuthHandler {
	return &AuthHandler{
		service:  service,
		validate: validator.New(),
	}
}

func statusForAuthError(err error) int {
	var authErr services.AuthServiceError
	switch {
	case errors.As(err, &authErr):
		switch {
		case errors.Is(err, services.ErrInvalidCredentials),
			errors.Is(err, services.ErrRefreshTokenInvalid):
			return fiber.StatusUnauthorized
		case errors.Is(err, services.ErrRegistrationFailed):
			return fiber.StatusInternalServerError
		default:
			return fiber.StatusBadRequest
		}
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz istek gövdesi"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.service.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		if statusForAuthError(err) == fiber.StatusInternalServerError {
			configslog.Log.Error("API - Register", zap.String("username", req.Username), zap.Error(err))
		}
		return c.Status(statusForAuthError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "kayıt başarılı, doğrulama kodu e-postanıza gönderildi",
		"user":    user,
	})
}

// VerifyOtp POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var req dto.VerifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz istek gövdesi"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.service.VerifyOtp(c.UserContext(), req.UserID, req.Otp); err != nil {
		return c.Status(statusForAuthError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "doğrulama başarılı"})
}

// ResendOtp POST /api/auth/resend-otp
func (h *AuthHandler) ResendOtp(c *fiber.Ctx) error {
	var req dto.ResendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz istek gövdesi"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.service.ResendOtp(c.UserContext(), req.UserID); err != nil {
		return c.Status(statusForAuthError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "yeni doğrulama kodu e-postanıza gönderildi"})
}

// Login POST /api/auth/login – refresh token HttpOnly cookie olarak döner.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz istek gövdesi"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, pair, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return c.Status(statusForAuthError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	h.setRefreshCookie(c, pair)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "giriş başarılı",
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// Refresh POST /api/auth/refresh-token – cookie'deki token rotasyonla yenilenir.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "oturum yenileme token'ı bulunamadı"})
	}

	pair, err := h.service.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		return c.Status(statusForAuthError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	h.setRefreshCookie(c, pair)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accessToken": pair.AccessToken,
	})
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if err := h.service.Logout(c.UserContext(), refreshToken); err != nil {
		configslog.Log.Error("API - Logout", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "çıkış yapılamadı"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "çıkış yapıldı"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, pair *services.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Expires:  pair.RefreshExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}
