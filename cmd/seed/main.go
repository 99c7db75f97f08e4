// Command seed resets the store and loads the sample data set.
package main

import (
	"context"
	"os"
	"time"

	"github.com/imrishuroy/easyorder/internal/config"
	"github.com/imrishuroy/easyorder/internal/logging"
	"github.com/imrishuroy/easyorder/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("EASYORDER_CONFIG_FILE"))
	if err != nil {
		fallback := logging.New(config.LogConfig{})
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.Log)
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	sum, err := Seed(ctx, db, time.Now())
	if err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	logger.Info().
		Str("driver", db.Driver()).
		Int("customers", sum.Customers).
		Int("products", sum.Products).
		Int("orders", sum.Orders).
		Int("payments", sum.Payments).
		Int("deliveries", sum.Deliveries).
		Msg("database seeded")
}
