package api

import (
	"errors"

	"anket.link/configs/configslog"
	"anket.link/middlewares"
	"anket.link/pkg/queryparams"
	"anket.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler kullanıcı uçlarının JSON handler'ı.
type UserHandler struct {
	service services.IUserService
}

// NewUserHandler yeni bir UserHandler örneği oluşturur.
func NewUserHandler(service services.IUserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetAllUsers GET /api/users
func (h *UserHandler) GetAllUsers(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	result, err := h.service.GetAllUsersPaginated(c.UserContext(), params)
	if err != nil {
		configslog.Log.Error("API - GetAllUsers", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "kullanıcılar listelenemedi"})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetUser GET /api/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("API - GetUser", zap.String("id", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "kullanıcı getirilemedi"})
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// DeleteUser DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	actor := middlewares.ActorFromLocals(c)

	err := h.service.DeleteUser(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrUserForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			configslog.Log.Error("API - DeleteUser", zap.String("id", c.Params("id")), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "kullanıcı silinemedi"})
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "kullanıcı başarıyla silindi"})
}
