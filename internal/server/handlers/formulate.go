package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/notify"
	"github.com/mamadbah2/agribalance/internal/service/formulate"
)

// FormulateHandler runs formulation and suggestion requests.
type FormulateHandler struct {
	svc      *formulate.Service
	notifier notify.Publisher
	logger   *zap.Logger
}

// NewFormulateHandler constructs the formulation request handler.
func NewFormulateHandler(svc *formulate.Service, notifier notify.Publisher, logger *zap.Logger) *FormulateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormulateHandler{svc: svc, notifier: notifier, logger: logger}
}

// Formulate asks the collaborator for a diet.
func (h *FormulateHandler) Formulate(c *gin.Context) {
	var req formulate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid formulate payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.svc.Formulate(c.Request.Context(), req)
	if err != nil {
		h.notifyFailure(err)
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type suggestRequest struct {
	AnimalType  models.AnimalType `json:"animalType"`
	GrowthStage string            `json:"growthStage"`
}

// Suggest returns ingredient name suggestions for an animal profile.
func (h *FormulateHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	names, err := h.svc.SuggestIngredients(c.Request.Context(), req.AnimalType, req.GrowthStage)
	if err != nil {
		h.notifyFailure(err)
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestedIngredients": names})
}

func (h *FormulateHandler) notifyFailure(err error) {
	if h.notifier == nil {
		return
	}
	var aiErr *formulate.Error
	if errors.As(err, &aiErr) {
		h.notifier.Push(notify.LevelDestructive, "Formulation failed", aiErr.Message)
	}
}
