package category

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	httphandler "github.com/FACorreiaa/fintrack-api/internal/http/handler"
	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
)

// Handler serves the category CRUD endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates the category handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes attaches the category routes to an authenticated router
// group.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.List)
	router.Post("/categories", h.Create)
	router.Put("/categories/:id", h.Update)
	router.Delete("/categories/:id", h.Delete)
}

// List returns the user's categories.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	categories, err := h.svc.List(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	if categories == nil {
		categories = []Category{}
	}
	return c.JSON(categories)
}

// Create adds a new custom category.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var input CreateInput
	if err := c.BodyParser(&input); err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
	}

	created, err := h.svc.Create(c.UserContext(), userID, input)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update modifies a custom category.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	categoryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid category id")
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
	}

	updated, err := h.svc.Update(c.UserContext(), userID, categoryID, input)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

// Delete removes a custom category.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	categoryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid category id")
	}

	if err := h.svc.Delete(c.UserContext(), userID, categoryID); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httphandler.WriteError(c, fiber.StatusNotFound, "NOT_FOUND", "category not found")
	case errors.Is(err, ErrDuplicateName):
		return httphandler.WriteError(c, fiber.StatusConflict, "DUPLICATE_NAME", ErrDuplicateName.Error())
	case errors.Is(err, ErrDefaultImmutable):
		return httphandler.WriteError(c, fiber.StatusForbidden, "DEFAULT_IMMUTABLE", ErrDefaultImmutable.Error())
	case errors.Is(err, ErrInvalidInput):
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		h.logger.Error("category request failed",
			slog.String("request_id", httphandler.RequestIDFromCtx(c)),
			slog.Any("error", err),
		)
		return httphandler.WriteError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
