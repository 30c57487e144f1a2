package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/domain/models"
	"github.com/mamadbah2/agribalance/internal/service/formulate"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var fieldErrs models.FieldErrors
	var aiErr *formulate.Error

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fieldErrs})
	case errors.As(err, &aiErr):
		logger.Warn("ai collaborator error", zap.String("kind", string(aiErr.Kind)), zap.Error(aiErr.Err))
		c.JSON(aiStatus(aiErr.Kind), gin.H{"error": aiErr.Message, "kind": aiErr.Kind})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func aiStatus(kind formulate.Kind) int {
	switch kind {
	case formulate.KindCredentials:
		return http.StatusUnauthorized
	case formulate.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func attachment(c *gin.Context, filename, contentType, body string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, []byte(body))
}
