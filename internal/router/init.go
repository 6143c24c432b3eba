package router

import (
	"time"

	"github.com/vendora-app/vendora/internal/application"
	"github.com/vendora-app/vendora/internal/container"
	pginfra "github.com/vendora-app/vendora/internal/infrastructure/postgres"
	handlers "github.com/vendora-app/vendora/internal/interface/http"
	"github.com/vendora-app/vendora/internal/interface/middleware"
	"github.com/vendora-app/vendora/internal/router/modules"
)

// InitModules builds repositories, services and handlers from c and registers every module.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config
	logger := c.Logger

	users := pginfra.NewUserRepository(c.PG)
	purchases := pginfra.NewPurchaseRepository(c.PG)

	userSvc := application.NewUserService(users, c.JWT, c.Sessions(), c.Jobs(), logger)
	purchaseSvc := application.NewPurchaseService(purchases, users, c.PurchaseIndex(), c.SaleNotifier(), logger)
	reportSvc := application.NewReportService(purchases, time.UTC)
	mediaSvc := application.NewMediaService(c.ImageStore(), cfg.MaxImageBytes, logger)

	auth := middleware.Auth(c.SessionChecker(), c.JWT)
	guard := modules.Guard{Auth: auth, Redis: c.Redis}

	r.Add(modules.NewAuthModule(handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure), guard))
	r.Add(modules.NewPurchaseModule(handlers.NewPurchaseHandler(purchaseSvc, logger), guard))
	r.Add(modules.NewReportModule(handlers.NewReportHandler(reportSvc, logger), guard))
	r.Add(modules.NewUploadModule(handlers.NewUploadHandler(mediaSvc, logger, cfg.MaxImageBytes), guard))

	if cfg.MetricsEnabled {
		r.AddRoot(modules.NewMetricsModule())
	}
}
