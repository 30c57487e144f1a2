package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/server/handlers"
)

// Handlers groups every HTTP handler the engine serves.
type Handlers struct {
	Ingredients   *handlers.IngredientHandler
	Requirements  *handlers.RequirementHandler
	Formulations  *handlers.FormulationHandler
	Formulate     *handlers.FormulateHandler
	Notifications *handlers.NotificationHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	ingredients := api.Group("/ingredients")
	ingredients.GET("", h.Ingredients.List)
	ingredients.POST("", h.Ingredients.Save)
	ingredients.DELETE("/:id", h.Ingredients.Delete)
	ingredients.POST("/import", h.Ingredients.Import)
	ingredients.GET("/export", h.Ingredients.Export)

	requirements := api.Group("/requirements")
	requirements.GET("", h.Requirements.List)
	requirements.POST("", h.Requirements.Save)
	requirements.GET("/:id/form", h.Requirements.Form)
	requirements.GET("/:id/constraints", h.Requirements.Constraints)
	requirements.DELETE("/:id", h.Requirements.Delete)

	formulations := api.Group("/formulations")
	formulations.GET("", h.Formulations.List)
	formulations.POST("", h.Formulations.Save)
	formulations.DELETE("/:id", h.Formulations.Delete)
	formulations.GET("/export", h.Formulations.Export)
	formulations.POST("/import", h.Formulations.Import)
	formulations.POST("/publish", h.Formulations.Publish)

	api.POST("/formulate", h.Formulate.Formulate)
	api.POST("/suggestions", h.Formulate.Suggest)

	api.GET("/notifications", h.Notifications.List)
	api.GET("/notifications/stream", h.Notifications.Stream)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
