package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/engine"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/enrich"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/extractor"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/repository"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/service"
	httphandler "github.com/FACorreiaa/fintrack-api/internal/http/handler"
	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
	"github.com/FACorreiaa/fintrack-api/pkg/session"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _ string) (string, error) {
	return f.text, f.err
}

type fakeEngine struct {
	candidates []engine.Candidate
	err        error
}

func (f *fakeEngine) Extract(_ context.Context, _ string) ([]engine.Candidate, error) {
	return f.candidates, f.err
}

type fakeEnricher struct{}

func (f *fakeEnricher) Enrich(_ context.Context, _ uuid.UUID, candidates []engine.Candidate) ([]engine.Candidate, enrich.Summary, error) {
	return candidates, enrich.Summary{Total: len(candidates), Uncategorized: len(candidates)}, nil
}

type fakeRepo struct {
	err error
}

func (f *fakeRepo) FindCategoriesByOwner(_ context.Context, _ uuid.UUID) ([]repository.Category, error) {
	return nil, nil
}

func (f *fakeRepo) HasDuplicate(_ context.Context, _ uuid.UUID, _ time.Time, _ money.Amount, _ string) (bool, error) {
	return false, nil
}

func (f *fakeRepo) BulkInsertTransactions(_ context.Context, _ uuid.UUID, rows []repository.TransactionRow) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(rows)), nil
}

func newTestApp(ext service.Extractor, eng service.Engine, repo repository.ImportRepository, userID uuid.UUID) *fiber.App {
	logger := slog.New(slog.DiscardHandler)
	previews := session.NewStore[service.PreviewResult](time.Minute, 10)
	metrics := service.NewMetrics(prometheus.NewRegistry())
	svc := service.NewImportService(ext, eng, &fakeEnricher{}, repo, previews, metrics, logger)

	app := fiber.New(fiber.Config{ErrorHandler: httphandler.ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Use(func(c *fiber.Ctx) error {
		if userID != uuid.Nil {
			c.Locals(middleware.UserIDLocalKey, userID)
		}
		return c.Next()
	})

	h := NewImportHandler(svc, 1<<20, logger)
	h.RegisterRoutes(app.Group("/api"))
	return app
}

func multipartUpload(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/import/preview", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var payload struct {
		RequestID string `json:"request_id"`
		Error     struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.NotEmpty(t, payload.RequestID)
	return payload.Error.Code
}

func TestPreview_Success(t *testing.T) {
	candidate, err := engine.NewCandidate("2024-01-15", "WALMART GROCERY", money.NewAmount(-85.30), engine.TypeExpense)
	require.NoError(t, err)

	app := newTestApp(&fakeExtractor{text: "t"}, &fakeEngine{candidates: []engine.Candidate{candidate}}, &fakeRepo{}, uuid.New())

	resp, err := app.Test(multipartUpload(t, "file", "statement.csv", "text/csv", []byte("a,b\n")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result service.PreviewResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "WALMART GROCERY", result.Transactions[0].Description)
	assert.Equal(t, 1, result.Summary.Total)
}

func TestPreview_Unauthenticated(t *testing.T) {
	app := newTestApp(&fakeExtractor{}, &fakeEngine{}, &fakeRepo{}, uuid.Nil)

	resp, err := app.Test(multipartUpload(t, "file", "statement.csv", "text/csv", []byte("a,b\n")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPreview_MissingFile(t *testing.T) {
	app := newTestApp(&fakeExtractor{}, &fakeEngine{}, &fakeRepo{}, uuid.New())

	req := httptest.NewRequest("POST", "/api/import/preview", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp))
}

func TestPreview_ErrorMapping(t *testing.T) {
	cases := map[string]struct {
		extractErr error
		engineErr  error
		status     int
		code       string
	}{
		"unsupported format": {
			extractErr: fmt.Errorf("%w (got %q)", extractor.ErrUnsupportedFormat, "image/png"),
			status:     fiber.StatusBadRequest,
			code:       "UNSUPPORTED_FORMAT",
		},
		"csv parse error": {
			extractErr: &extractor.CSVParseError{Err: fmt.Errorf("bare quote")},
			status:     fiber.StatusBadRequest,
			code:       "CSV_PARSE_ERROR",
		},
		"image based pdf": {
			extractErr: extractor.ErrImageBasedPDF,
			status:     fiber.StatusUnprocessableEntity,
			code:       "IMAGE_BASED_PDF",
		},
		"ai extraction": {
			engineErr: fmt.Errorf("%w: quota", engine.ErrAIExtraction),
			status:    fiber.StatusBadGateway,
			code:      "AI_EXTRACTION_FAILED",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(
				&fakeExtractor{text: "t", err: tc.extractErr},
				&fakeEngine{err: tc.engineErr},
				&fakeRepo{},
				uuid.New(),
			)

			resp, err := app.Test(multipartUpload(t, "file", "statement.csv", "text/csv", []byte("x")))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp))
		})
	}
}

func TestConfirm_Success(t *testing.T) {
	app := newTestApp(&fakeExtractor{}, &fakeEngine{}, &fakeRepo{}, uuid.New())

	body, err := json.Marshal(map[string]any{
		"transactions": []map[string]any{
			{"date": "2024-01-15", "description": "WALMART", "amount": -85.30, "type": "EXPENSE"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/import/confirm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result service.ConfirmResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, int64(1), result.Count)
}

func TestConfirm_CommitFailure(t *testing.T) {
	app := newTestApp(&fakeExtractor{}, &fakeEngine{}, &fakeRepo{err: fmt.Errorf("disk full")}, uuid.New())

	body, err := json.Marshal(map[string]any{
		"transactions": []map[string]any{
			{"date": "2024-01-15", "description": "WALMART", "amount": -85.30, "type": "EXPENSE"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/import/confirm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "COMMIT_FAILED", decodeError(t, resp))
}

func TestConfirm_InvalidBody(t *testing.T) {
	app := newTestApp(&fakeExtractor{}, &fakeEngine{}, &fakeRepo{}, uuid.New())

	req := httptest.NewRequest("POST", "/api/import/confirm", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp))
}

func TestLatestPreview(t *testing.T) {
	userID := uuid.New()
	candidate, err := engine.NewCandidate("2024-01-15", "WALMART", money.NewAmount(-85.30), engine.TypeExpense)
	require.NoError(t, err)
	app := newTestApp(&fakeExtractor{text: "t"}, &fakeEngine{candidates: []engine.Candidate{candidate}}, &fakeRepo{}, userID)

	// Nothing stored yet.
	resp, err := app.Test(httptest.NewRequest("GET", "/api/import/preview", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NO_PREVIEW", decodeError(t, resp))

	// Upload, then re-fetch.
	resp, err = app.Test(multipartUpload(t, "file", "statement.csv", "text/csv", []byte("a,b\n")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/import/preview", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result service.PreviewResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Len(t, result.Transactions, 1)
}
