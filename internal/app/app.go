// Package app wires configuration into the services shared by the server and
// the command line tool.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/config"
	"github.com/mamadbah2/agribalance/internal/notify"
	"github.com/mamadbah2/agribalance/internal/repository/mongodb"
	"github.com/mamadbah2/agribalance/internal/repository/sheets"
	"github.com/mamadbah2/agribalance/internal/repository/sqlite"
	"github.com/mamadbah2/agribalance/internal/repository/store"
	"github.com/mamadbah2/agribalance/internal/server/handlers"
	"github.com/mamadbah2/agribalance/internal/server/router"
	"github.com/mamadbah2/agribalance/internal/service/formulate"
	"github.com/mamadbah2/agribalance/internal/service/formulations"
	"github.com/mamadbah2/agribalance/internal/service/ingredients"
	"github.com/mamadbah2/agribalance/internal/service/publishing"
	"github.com/mamadbah2/agribalance/internal/service/requirements"
	"github.com/mamadbah2/agribalance/pkg/clients/anthropic"
	"github.com/mamadbah2/agribalance/pkg/clients/gemini"
	"github.com/mamadbah2/agribalance/pkg/clients/llm"
	"github.com/mamadbah2/agribalance/pkg/logger"
)

// App holds every long-lived service.
type App struct {
	Bus          *notify.Bus
	Ingredients  *ingredients.Service
	Requirements *requirements.Service
	Formulations *formulations.Service
	Formulate    *formulate.Service
	Publishing   *publishing.Service

	logger     *zap.Logger
	closeStore func(context.Context) error
}

// New opens the configured store and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config, base *zap.Logger) (*App, error) {
	st, closeStore, err := OpenStore(ctx, cfg, logger.Named(base, "repo.store"))
	if err != nil {
		return nil, err
	}

	a := &App{
		Bus:        notify.NewBus(cfg.Notifications.TTL, logger.Named(base, "notify")),
		logger:     logger.Named(base, "app"),
		closeStore: closeStore,
	}
	a.Ingredients = ingredients.NewService(st, logger.Named(base, "svc.ingredients"))
	a.Requirements = requirements.NewService(st, logger.Named(base, "svc.requirements"))
	a.Formulations = formulations.NewService(st, logger.Named(base, "svc.formulations"))

	a.Formulate = formulate.NewService(formulate.Config{
		Client:      NewCollaborator(ctx, cfg.AI, logger.Named(base, "clients.ai")),
		Ingredients: a.Ingredients,
		Profiles:    a.Requirements,
		Render:      requirements.ConstraintsText,
		Timeout:     cfg.AI.Timeout,
		Logger:      logger.Named(base, "svc.formulate"),
	})

	var publisher sheets.Publisher
	if cfg.Sheets.Enabled() {
		p, err := sheets.NewGoogleSheetPublisher(ctx, cfg.Sheets, logger.Named(base, "repo.sheets"))
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		publisher = p
	}
	a.Publishing = publishing.NewService(a.Formulations, publisher, cfg.Sheets.Range, a.Bus, logger.Named(base, "svc.publishing"))

	return a, nil
}

// Router builds the HTTP engine.
func (a *App) Router(base *zap.Logger) *gin.Engine {
	pub := a.Publishing
	if !pub.Enabled() {
		pub = nil
	}
	return router.New(router.Handlers{
		Ingredients:   handlers.NewIngredientHandler(a.Ingredients, a.Bus, logger.Named(base, "handlers.ingredients")),
		Requirements:  handlers.NewRequirementHandler(a.Requirements, a.Bus, logger.Named(base, "handlers.requirements")),
		Formulations:  handlers.NewFormulationHandler(a.Formulations, pub, a.Bus, logger.Named(base, "handlers.formulations")),
		Formulate:     handlers.NewFormulateHandler(a.Formulate, a.Bus, logger.Named(base, "handlers.formulate")),
		Notifications: handlers.NewNotificationHandler(a.Bus),
	}, logger.Named(base, "router"))
}

// Close releases the store and stops the notification bus.
func (a *App) Close(ctx context.Context) {
	if a.Bus != nil {
		a.Bus.Close()
	}
	if a.closeStore != nil {
		if err := a.closeStore(ctx); err != nil {
			a.logger.Error("failed to close store", zap.Error(err))
		}
	}
}

// OpenStore opens the store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, func(context.Context) error, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store, libraries will not survive a restart")
		return store.NewMemoryStore(), func(context.Context) error { return nil }, nil
	case config.DriverSQLite:
		repo, err := sqlite.NewRepository(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init sqlite store: %w", err)
		}
		log.Info("sqlite store opened", zap.String("path", cfg.Store.SQLitePath))
		return repo, func(context.Context) error { return repo.Close() }, nil
	case config.DriverMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init mongodb store: %w", err)
		}
		log.Info("mongodb store opened", zap.String("db", cfg.MongoDB.DBName))
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewCollaborator builds the AI client for the configured provider. It
// returns nil when no key is set; formulation calls then report a
// credentials error.
func NewCollaborator(ctx context.Context, cfg config.AIConfig, log *zap.Logger) llm.Client {
	if cfg.APIKey() == "" {
		log.Warn("ai api key missing, formulation requests will fail", zap.String("provider", cfg.Provider))
		return nil
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		log.Info("anthropic ai client enabled")
		return anthropic.NewClient(cfg.AnthropicKey, cfg.AnthropicModel, cfg.Timeout)
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			log.Error("failed to init gemini client", zap.Error(err))
			return nil
		}
		log.Info("gemini ai client enabled")
		return client
	}
}
