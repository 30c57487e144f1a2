package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/notify"
	"github.com/mamadbah2/agribalance/internal/service/ingredients"
)

// IngredientHandler exposes the ingredient library.
type IngredientHandler struct {
	svc      *ingredients.Service
	notifier notify.Publisher
	logger   *zap.Logger
}

// NewIngredientHandler constructs the ingredient library handler.
func NewIngredientHandler(svc *ingredients.Service, notifier notify.Publisher, logger *zap.Logger) *IngredientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngredientHandler{svc: svc, notifier: notifier, logger: logger}
}

// List returns the library.
func (h *IngredientHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Load(c.Request.Context()))
}

// Save creates or updates one ingredient.
func (h *IngredientHandler) Save(c *gin.Context) {
	var form models.IngredientForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.logger.Warn("invalid ingredient payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	library, err := h.svc.Save(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	verb := "added to"
	if strings.TrimSpace(form.ID) != "" {
		verb = "updated in"
	}
	h.push(notify.LevelSuccess, "Ingredient saved", fmt.Sprintf("%q was %s your library.", strings.TrimSpace(form.Name), verb))
	c.JSON(http.StatusOK, library)
}

// Delete removes one ingredient.
func (h *IngredientHandler) Delete(c *gin.Context) {
	library := h.svc.Remove(c.Request.Context(), c.Param("id"))
	h.push(notify.LevelInfo, "Ingredient removed", "")
	c.JSON(http.StatusOK, library)
}

// Import merges a CSV file, sent either as the raw body or as a multipart "file" field.
func (h *IngredientHandler) Import(c *gin.Context) {
	body, closeBody, err := uploadedBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeBody()

	result, err := h.svc.ImportCSV(c.Request.Context(), body)
	if err != nil {
		h.push(notify.LevelDestructive, "Import failed", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.push(notify.LevelSuccess, "Import complete", fmt.Sprintf("%d ingredients imported.", result.Imported))
	c.JSON(http.StatusOK, result)
}

// Export downloads the library as CSV.
func (h *IngredientHandler) Export(c *gin.Context) {
	out, err := h.svc.ExportCSV(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	attachment(c, "ingredient_library.csv", "text/csv; charset=utf-8", out)
}

func (h *IngredientHandler) push(level notify.Level, title, description string) {
	if h.notifier != nil {
		h.notifier.Push(level, title, description)
	}
}

// uploadedBody returns the multipart "file" part when present, else the request body.
func uploadedBody(c *gin.Context) (io.Reader, func(), error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, nil, fmt.Errorf("missing file field: %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("open uploaded file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	return c.Request.Body, func() {}, nil
}
