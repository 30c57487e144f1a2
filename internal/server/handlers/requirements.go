package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/notify"
	"github.com/mamadbah2/agribalance/internal/service/requirements"
)

// RequirementHandler exposes the nutritional requirement library.
type RequirementHandler struct {
	svc      *requirements.Service
	notifier notify.Publisher
	logger   *zap.Logger
}

// NewRequirementHandler constructs the requirement library handler.
func NewRequirementHandler(svc *requirements.Service, notifier notify.Publisher, logger *zap.Logger) *RequirementHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequirementHandler{svc: svc, notifier: notifier, logger: logger}
}

func (h *RequirementHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Load(c.Request.Context()))
}

// Save creates or updates a profile from its form representation.
func (h *RequirementHandler) Save(c *gin.Context) {
	var form models.RequirementProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.logger.Warn("invalid requirement profile payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	library, err := h.svc.SaveProfile(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	verb := "saved"
	if form.ID != "" {
		verb = "updated"
	}
	if h.notifier != nil {
		h.notifier.Push(notify.LevelSuccess, "Profile saved",
			fmt.Sprintf("The profile %q has been %s.", strings.TrimSpace(form.ProfileDisplayName), verb))
	}
	c.JSON(http.StatusOK, library)
}

// Form returns a profile in its editable form.
func (h *RequirementHandler) Form(c *gin.Context) {
	profile, ok := h.svc.Get(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "requirement profile not found"})
		return
	}
	c.JSON(http.StatusOK, requirements.ConvertToFormValues(profile))
}

// Constraints returns a profile rendered as formulation constraints text.
func (h *RequirementHandler) Constraints(c *gin.Context) {
	profile, ok := h.svc.Get(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "requirement profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"constraints": requirements.ConstraintsText(profile)})
}

func (h *RequirementHandler) Delete(c *gin.Context) {
	library := h.svc.RemoveProfile(c.Request.Context(), c.Param("id"))
	if h.notifier != nil {
		h.notifier.Push(notify.LevelInfo, "Profile removed", "")
	}
	c.JSON(http.StatusOK, library)
}
