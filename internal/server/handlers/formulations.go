package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/notify"
	"github.com/mamadbah2/agribalance/internal/service/formulations"
	"github.com/mamadbah2/agribalance/internal/service/publishing"
)

// FormulationHandler exposes the saved formulation library.
type FormulationHandler struct {
	svc        *formulations.Service
	publishing *publishing.Service
	notifier   notify.Publisher
	logger     *zap.Logger
}

// NewFormulationHandler constructs the formulation library handler. pub may be nil.
func NewFormulationHandler(svc *formulations.Service, pub *publishing.Service, notifier notify.Publisher, logger *zap.Logger) *FormulationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormulationHandler{svc: svc, publishing: pub, notifier: notifier, logger: logger}
}

func (h *FormulationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Load(c.Request.Context()))
}

// Save archives a formulation result with the inputs that produced it.
func (h *FormulationHandler) Save(c *gin.Context) {
	var draft models.FormulationDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.logger.Warn("invalid formulation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	library, err := h.svc.Save(c.Request.Context(), draft)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.push(notify.LevelSuccess, "Formulation saved", fmt.Sprintf("%q was saved to your library.", library[0].Name))
	c.JSON(http.StatusOK, library)
}

func (h *FormulationHandler) Delete(c *gin.Context) {
	library := h.svc.Remove(c.Request.Context(), c.Param("id"))
	h.push(notify.LevelInfo, "Formulation removed", "")
	c.JSON(http.StatusOK, library)
}

// Export downloads the library as CSV (default) or JSON.
func (h *FormulationHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		out, err := h.svc.ExportCSV(ctx)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		attachment(c, "formulation_library.csv", "text/csv; charset=utf-8", out)
	case "json":
		out, err := h.svc.ExportJSON(ctx)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		attachment(c, "formulation_library.json", "application/json; charset=utf-8", out)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
	}
}

// Import merges a JSON array of formulations, sent as the raw body or a multipart "file" field.
func (h *FormulationHandler) Import(c *gin.Context) {
	body, closeBody, err := uploadedBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeBody()

	data, err := io.ReadAll(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	result := h.svc.ImportJSON(c.Request.Context(), string(data))
	if !result.Success {
		h.push(notify.LevelDestructive, "Import failed", result.Message)
		c.JSON(http.StatusBadRequest, result)
		return
	}

	h.push(notify.LevelSuccess, "Import complete", result.Message)
	c.JSON(http.StatusOK, result)
}

// Publish writes the library to the configured spreadsheet.
func (h *FormulationHandler) Publish(c *gin.Context) {
	if h.publishing == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": publishing.ErrNotConfigured.Error()})
		return
	}

	n, err := h.publishing.Publish(c.Request.Context())
	switch {
	case errors.Is(err, publishing.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("publish failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": strings.TrimSpace(err.Error())})
	default:
		c.JSON(http.StatusOK, gin.H{"published": n})
	}
}

func (h *FormulationHandler) push(level notify.Level, title, description string) {
	if h.notifier != nil {
		h.notifier.Push(level, title, description)
	}
}
