package api

import (
	"errors"

	"anket.link/configs/configslog"
	"anket.link/dto"
	"anket.link/middlewares"
	"anket.link/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FormHandler form uçlarının JSON handler'ı.
type FormHandler struct {
	service  services.IFormService
	validate *validator.Validate
}

// NewFormHandler yeni bir FormHandler örneği oluşturur.
func NewFormHandler(service services.IFormService) *FormHandler {
	return &FormHandler{
		service:  service,
		validate: validator.New(),
	}
}

// statusForFormError servis taksonomisini HTTP durum koduna çevirir:
// validasyon→400, bulunamadı/yetkisiz→404, çakışma→409, gerisi→500.
func statusForFormError(err error) int {
	switch {
	case errors.Is(err, services.ErrFormInvalidInput),
		errors.Is(err, services.ErrFormTitleRequired),
		errors.Is(err, services.ErrQuestionTextRequired),
		errors.Is(err, services.ErrAnswerTextRequired),
		errors.Is(err, services.ErrFormUnknownStrategy):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrFormNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrFormConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateForm POST /api/forms
func (h *FormHandler) CreateForm(c *fiber.Ctx) error {
	actor := middlewares.ActorFromLocals(c)

	var req dto.CreateFormRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz istek gövdesi"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	form, err := h.service.CreateForm(c.UserContext(), actor.ID, req.Title, req.Description, dto.ToQuestionModels(req.Questions))
	if err != nil {
		if statusForFormError(err) == fiber.StatusInternalServerError {
			configslog.Log.Error("API - CreateForm", zap.String("actorID", actor.ID), zap.Error(err))
		}
		return c.Status(statusForFormError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "form başarıyla oluşturuldu",
		"form":    form,
	})
}

// GetForm GET /api/forms/:formId
func (h *FormHandler) GetForm(c *fiber.Ctx) error {
	actor := middlewares.ActorFromLocals(c)
	formID := c.Params("formId")

	form, err := h.service.GetFormByID(c.UserContext(), actor, formID)
	if err != nil {
		if statusForFormError(err) == fiber.StatusInternalServerError {
			configslog.Log.Error("API - GetForm", zap.String("formID", formID), zap.Error(err))
		}
		return c.Status(statusForFormError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "form başarıyla getirildi",
		"form":    form,
	})
}

// GetUserForms GET /api/forms/users/:userId
func (h *FormHandler) GetUserForms(c *fiber.Ctx) error {
	actor := middlewares.ActorFromLocals(c)
	userID := c.Params("userId")

	forms, err := h.service.GetFormsForUser(c.UserContext(), actor, userID)
	if err != nil {
		if statusForFormError(err) == fiber.StatusInternalServerError {
			configslog.Log.Error("API - GetUserForms", zap.String("userID", userID), zap.Error(err))
		}
		return c.Status(statusForFormError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "formlar başarıyla getirildi",
		"forms":   forms,
	})
}

// UpdateForm PUT /api/forms/:formId – varsayılan strateji merge;
// ?strategy=replace alt ağacı girdiyle birebir değiştirir.
func (h *FormHandler) UpdateForm(c *fiber.Ctx) error {
	actor := middlewares.ActorFromLocals(c)
	formID := c.Params("formId")
	strategy := services.UpdateStrategy(c.Query("strategy", string(services.StrategyMerge)))

	var req dto.UpdateFormRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz istek gövdesi"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	form, err := h.service.UpdateForm(c.UserContext(), actor, formID, req.Title, req.Description, dto.ToQuestionModels(req.Questions), strategy)
	if err != nil {
		if statusForFormError(err) == fiber.StatusInternalServerError {
			configslog.Log.Error("API - UpdateForm", zap.String("formID", formID), zap.Error(err))
		}
		return c.Status(statusForFormError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "form başarıyla güncellendi",
		"form":    form,
	})
}

// DeleteForm DELETE /api/forms/:formId – admin aktörler için bypass yalnızca
// bu uçta ve açık ?override=true parametresiyle tanınır.
func (h *FormHandler) DeleteForm(c *fiber.Ctx) error {
	actor := middlewares.ActorFromLocals(c)
	formID := c.Params("formId")
	adminOverride := c.Query("override") == "true"

	if err := h.service.DeleteForm(c.UserContext(), actor, formID, adminOverride); err != nil {
		if statusForFormError(err) == fiber.StatusInternalServerError {
			configslog.Log.Error("API - DeleteForm", zap.String("formID", formID), zap.Error(err))
		}
		return c.Status(statusForFormError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "form ve bağlı soru/cevaplar başarıyla silindi",
	})
}
