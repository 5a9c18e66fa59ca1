// Package api exposes the ledger engine over HTTP: upload a transaction
// file, get the settled account snapshots back.
package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insightdelivered/payments-engine/internal/ledger"
	"github.com/insightdelivered/payments-engine/internal/models"
	"github.com/insightdelivered/payments-engine/internal/reader"
	"github.com/insightdelivered/payments-engine/internal/writer"
)

const version = "1.0.0"

// ProcessResponse is the JSON response from the /api/process endpoint.
type ProcessResponse struct {
	Success   bool                     `json:"success"`
	Error     string                   `json:"error,omitempty"`
	Accounts  []models.AccountSnapshot `json:"accounts"`
	CSV       string                   `json:"csv,omitempty"`
	Processed int                      `json:"processed"`
	Count     int                      `json:"count"`
	Version   string                   `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Log *zap.Logger
}

// RegisterRoutes sets up the HTTP routes on the fiber app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/process", h.HandleProcess)
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleProcess accepts a multipart transaction file (CSV or PDF table
// export), replays it against a fresh ledger and returns the final
// account snapshots. Processing halts on the first rejected record.
func (h *Handler) HandleProcess(c *fiber.Ctx) error {
	reqID := uuid.NewString()
	log := h.logger().With(zap.String("request_id", reqID))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	var src reader.Source
	if strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		tmpPath := filepath.Join(os.TempDir(), "upload-"+reqID+".pdf")
		if err := c.SaveFile(fileHeader, tmpPath); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
		}
		defer os.Remove(tmpPath)

		src, err = reader.OpenPDF(tmpPath)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
		}
	} else {
		f, err := fileHeader.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		defer f.Close()
		src = reader.NewCSVReader(f)
	}

	led := ledger.New()
	processed := 0
	for {
		record, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("record source failed", zap.Int("processed", processed), zap.Error(err))
			return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Input format error: %v", err))
		}
		if err := led.Apply(record); err != nil {
			log.Warn("transaction rejected",
				zap.Uint32("tx", record.Tx),
				zap.Uint16("client", record.Client),
				zap.Error(err))
			return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Transaction rejected: %v", err))
		}
		processed++
	}

	accounts := led.Export()

	var csvBuf strings.Builder
	w := &writer.AccountWriter{}
	if err := w.Write(&csvBuf, accounts); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	log.Info("file processed",
		zap.String("file", fileHeader.Filename),
		zap.Int("transactions", processed),
		zap.Int("accounts", len(accounts)))

	// nil marshals to JSON null, not [].
	if accounts == nil {
		accounts = []models.AccountSnapshot{}
	}

	return c.JSON(ProcessResponse{
		Success:   true,
		Accounts:  accounts,
		CSV:       csvBuf.String(),
		Processed: processed,
		Count:     len(accounts),
		Version:   version,
	})
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ProcessResponse{
		Success:  false,
		Error:    msg,
		Accounts: []models.AccountSnapshot{},
	})
}
