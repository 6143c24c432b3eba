package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/config"
	"github.com/vendora-app/vendora/internal/application"
	"github.com/vendora-app/vendora/internal/infrastructure/notify"
	"github.com/vendora-app/vendora/internal/infrastructure/search"
	"github.com/vendora-app/vendora/internal/interface/middleware"
	"github.com/vendora-app/vendora/pkg/helpers"
)

// Container carries the process-wide clients built in main. Optional backends stay nil when disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PG     *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
	JWT    *helpers.JWTManager
	Rabbit *helpers.RabbitPublisher
	ES     *elasticsearch.Client
}

// The accessors below return untyped nil interfaces for missing backends so services can nil-check them.

func (c *Container) Sessions() application.SessionStore {
	if c.Redis == nil {
		return nil
	}
	return helpers.NewRedisSessions(c.Redis, c.Config.RefreshTTL)
}

func (c *Container) SessionChecker() middleware.SessionChecker {
	if c.Redis == nil {
		return nil
	}
	return helpers.NewRedisSessions(c.Redis, c.Config.RefreshTTL)
}

func (c *Container) Jobs() application.JobPublisher {
	if c.Rabbit == nil {
		return nil
	}
	return c.Rabbit
}

func (c *Container) PurchaseIndex() application.PurchaseIndexer {
	if c.ES == nil {
		return nil
	}
	return search.NewPurchaseIndex(c.ES, c.Config.ESPurchasesIndex)
}

func (c *Container) SaleNotifier() application.SaleNotifier {
	if c.Rabbit == nil {
		return nil
	}
	return notify.NewSaleNotifier(c.Rabbit, c.Config.AppURL)
}

func (c *Container) ImageStore() application.ImageStore {
	if c.GCS == nil || c.Config.GCSBucket == "" {
		return nil
	}
	return helpers.NewGCSStore(c.GCS, c.Config.GCSBucket)
}
