// Package handler exposes the statement import flow over HTTP.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/engine"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/extractor"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/service"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/sniffer"
	httphandler "github.com/FACorreiaa/fintrack-api/internal/http/handler"
	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
)

// ImportHandler serves the preview/confirm import endpoints.
type ImportHandler struct {
	svc            *service.ImportService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewImportHandler creates the import handler.
func NewImportHandler(svc *service.ImportService, maxUploadBytes int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{svc: svc, maxUploadBytes: maxUploadBytes, logger: logger}
}

// RegisterRoutes attaches the import routes to an authenticated router group.
func (h *ImportHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/import/preview", h.Preview)
	router.Get("/import/preview", h.LatestPreview)
	router.Post("/import/confirm", h.Confirm)
}

// Preview accepts a multipart statement upload (field name "file") and
// returns extracted transaction candidates with a summary.
func (h *ImportHandler) Preview(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	}
	if fh.Size > h.maxUploadBytes {
		return httphandler.WriteError(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "uploaded file is too large")
	}

	data, err := readUpload(fh)
	if err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
	}

	result, err := h.svc.Preview(c.UserContext(), userID, data, uploadMimeType(fh, data))
	if err != nil {
		return h.writeImportError(c, err)
	}
	return c.JSON(result)
}

// LatestPreview returns the most recent unexpired preview for the user.
func (h *ImportHandler) LatestPreview(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	result, ok := h.svc.LatestPreview(userID)
	if !ok {
		return httphandler.WriteError(c, fiber.StatusNotFound, "NO_PREVIEW", "no active preview; upload a statement first")
	}
	return c.JSON(result)
}

type confirmRequest struct {
	Transactions []service.ConfirmTransaction `json:"transactions"`
}

// Confirm saves the user-approved transactions and returns the saved count.
func (h *ImportHandler) Confirm(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return httphandler.WriteError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON with a transactions array")
	}

	result, err := h.svc.Confirm(c.UserContext(), userID, req.Transactions)
	if err != nil {
		return h.writeImportError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// writeImportError maps pipeline failures to stable error codes. Extraction
// errors carry user-actionable messages; everything else is kept generic.
func (h *ImportHandler) writeImportError(c *fiber.Ctx, err error) error {
	var csvErr *extractor.CSVParseError

	switch {
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return httphandler.WriteError(c, fiber.StatusBadRequest, "UNSUPPORTED_FORMAT", extractor.ErrUnsupportedFormat.Error())
	case errors.As(err, &csvErr):
		return httphandler.WriteError(c, fiber.StatusBadRequest, "CSV_PARSE_ERROR", "failed to parse CSV file; re-export the statement and try again")
	case errors.Is(err, extractor.ErrImageBasedPDF):
		return httphandler.WriteError(c, fiber.StatusUnprocessableEntity, "IMAGE_BASED_PDF", extractor.ErrImageBasedPDF.Error())
	case errors.Is(err, engine.ErrAIExtraction):
		return httphandler.WriteError(c, fiber.StatusBadGateway, "AI_EXTRACTION_FAILED", "failed to extract transactions with AI; try again")
	case errors.Is(err, service.ErrCommit):
		return httphandler.WriteError(c, fiber.StatusInternalServerError, "COMMIT_FAILED", "failed to save transactions")
	default:
		h.logger.Error("import request failed",
			slog.String("request_id", httphandler.RequestIDFromCtx(c)),
			slog.Any("error", err),
		)
		return httphandler.WriteError(c, fiber.StatusBadRequest, "IMPORT_FAILED", "could not process the import request")
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// uploadMimeType prefers the multipart content type, then the file
// extension, then content sniffing; browsers are inconsistent about CSV
// content types.
func uploadMimeType(fh *multipart.FileHeader, data []byte) string {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".csv":
		return extractor.MimeCSV
	case ".pdf":
		return extractor.MimePDF
	}
	if sniffed := sniffer.DetectMIME(data); sniffed != "" {
		return sniffed
	}
	return ct
}
