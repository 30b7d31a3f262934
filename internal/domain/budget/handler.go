package budget

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	httphandler "github.com/FACorreiaa/fintrack-api/internal/http/handler"
	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
)

// Handler serves the budget CRUD endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates the budget handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes attaches the budget routes to an authenticated router
// group.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/budgets", h.List)
	router.Post("/budgets", h.Create)
	router.Get("/budgets/:id", h.Get)
	router.Put("/budgets/:id", h.Update)
	router.Delete("/budgets/:id", h.Delete)
}

// List returns the user's budgets with spend progress.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	budgets, err := h.svc.List(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	if budgets == nil {
		budgets = []Budget{}
	}
	return c.JSON(budgets)
}

// Get returns one budget with spend progress.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	budgetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid budget id")
	}

	b, err := h.svc.Get(c.UserContext(), userID, budgetID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(b)
}

// Create adds a budget.
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

// Update modifies a budget.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	budgetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid budget id")
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
	}

	updated, err := h.svc.Update(c.UserContext(), userID, budgetID, input)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

// Delete removes a budget.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	budgetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid budget id")
	}

	if err := h.svc.Delete(c.UserContext(), userID, budgetID); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httphandler.WriteError(c, fiber.StatusNotFound, "NOT_FOUND", "budget not found")
	case errors.Is(err, ErrDuplicate):
		return httphandler.WriteError(c, fiber.StatusConflict, "DUPLICATE_BUDGET", ErrDuplicate.Error())
	case errors.Is(err, ErrCategoryNotFound):
		return httphandler.WriteError(c, fiber.StatusBadRequest, "CATEGORY_NOT_FOUND", "category not found")
	case errors.Is(err, ErrInvalidInput):
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		h.logger.Error("budget request failed",
			slog.String("request_id", httphandler.RequestIDFromCtx(c)),
			slog.Any("error", err),
		)
		return httphandler.WriteError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
