package transaction

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	httphandler "github.com/FACorreiaa/fintrack-api/internal/http/handler"
	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
)

// Handler serves the transaction endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates the transaction handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes attaches the transaction routes to an authenticated
// router group.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/transactions", h.List)
	router.Post("/transactions", h.Create)
	router.Get("/transactions/export", h.Export)
	router.Get("/transactions/search", h.Search)
	router.Get("/transactions/stats", h.Stats)
	router.Get("/transactions/:id", h.Get)
	router.Put("/transactions/:id", h.Update)
	router.Delete("/transactions/:id", h.Delete)
}

// parseFilter reads the listing filters from query parameters.
func parseFilter(c *fiber.Ctx) (ListFilter, error) {
	var filter ListFilter

	if from := c.Query("from"); from != "" {
		date, err := parseDate(from)
		if err != nil {
			return ListFilter{}, err
		}
		filter.From = &date
	}
	if to := c.Query("to"); to != "" {
		date, err := parseDate(to)
		if err != nil {
			return ListFilter{}, err
		}
		filter.To = &date
	}
	if raw := c.Query("categoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return ListFilter{}, errors.New("invalid categoryId")
		}
		filter.CategoryID = &categoryID
	}
	if t := c.Query("type"); t != "" {
		if !ValidType(t) {
			return ListFilter{}, errors.New("type must be INCOME or EXPENSE")
		}
		filter.Type = t
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return ListFilter{}, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return ListFilter{}, errors.New("invalid offset")
		}
		filter.Offset = offset
	}
	return filter, nil
}

// List returns the user's transactions, filtered and newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	filter, err := parseFilter(c)
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_FILTER", err.Error())
	}

	transactions, err := h.svc.List(c.UserContext(), userID, filter)
	if err != nil {
		return h.writeError(c, err)
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	return c.JSON(transactions)
}

// Get returns a single transaction.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid transaction id")
	}

	t, err := h.svc.Get(c.UserContext(), userID, transactionID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(t)
}

// Create adds a transaction to the ledger.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var input Input
	if err := c.BodyParser(&input); err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
	}

	created, err := h.svc.Create(c.UserContext(), userID, input)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update replaces a transaction's fields.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid transaction id")
	}

	var input Input
	if err := c.BodyParser(&input); err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
	}

	updated, err := h.svc.Update(c.UserContext(), userID, transactionID, input)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

// Delete removes a transaction.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid transaction id")
	}

	if err := h.svc.Delete(c.UserContext(), userID, transactionID); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export streams the user's transactions as a CSV or XLSX download.
func (h *Handler) Export(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	filter, err := parseFilter(c)
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_FILTER", err.Error())
	}

	stamp := time.Now().Format("2006-01-02")
	switch format := c.Query("format", "csv"); format {
	case "csv":
		out, err := h.svc.ExportCSV(c.UserContext(), userID, filter)
		if err != nil {
			return h.writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions-`+stamp+`.csv"`)
		return c.Send(out)
	case "xlsx":
		out, err := h.svc.ExportXLSX(c.UserContext(), userID, filter)
		if err != nil {
			return h.writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions-`+stamp+`.xlsx"`)
		return c.Send(out)
	default:
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
	}
}

// Stats returns income/expense totals for the filtered transactions.
func (h *Handler) Stats(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	filter, err := parseFilter(c)
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_FILTER", err.Error())
	}

	stats, err := h.svc.Stats(c.UserContext(), userID, filter)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(stats)
}

// Search finds transactions by description.
func (h *Handler) Search(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_FILTER", "invalid limit")
		}
		limit = parsed
	}

	hits, err := h.svc.Search(c.UserContext(), userID, c.Query("q"), limit)
	if err != nil {
		return h.writeError(c, err)
	}
	if hits == nil {
		hits = []Transaction{}
	}
	return c.JSON(hits)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httphandler.WriteError(c, fiber.StatusNotFound, "NOT_FOUND", "transaction not found")
	case errors.Is(err, ErrCategoryNotFound):
		return httphandler.WriteError(c, fiber.StatusBadRequest, "CATEGORY_NOT_FOUND", "category not found")
	case errors.Is(err, ErrInvalidInput):
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		h.logger.Error("transaction request failed",
			slog.String("request_id", httphandler.RequestIDFromCtx(c)),
			slog.Any("error", err),
		)
		return httphandler.WriteError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
