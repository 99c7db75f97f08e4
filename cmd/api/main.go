package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/easyorder/internal/aws"
	"github.com/imrishuroy/easyorder/internal/config"
	"github.com/imrishuroy/easyorder/internal/handlers"
	"github.com/imrishuroy/easyorder/internal/idempotency"
	"github.com/imrishuroy/easyorder/internal/logging"
	"github.com/imrishuroy/easyorder/internal/notify"
	"github.com/imrishuroy/easyorder/internal/observability"
	"github.com/imrishuroy/easyorder/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("EASYORDER_CONFIG_FILE"))
	if err != nil {
		fallback := logging.New(config.LogConfig{})
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	inst, shutdownTelemetry, err := observability.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	db, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	clients, err := aws.NewAWSClients(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	recorders := notify.Recorders{}
	otelRecorder, err := notify.NewOTelRecorder(inst.Meter("github.com/imrishuroy/easyorder/internal/notify"))
	if err != nil {
		return err
	}
	recorders = append(recorders, otelRecorder)
	if cfg.Metrics.CloudWatchNamespace != "" {
		metrics := aws.NewMetricsPublisher(clients.CloudWatch, cfg.Metrics.CloudWatchNamespace)
		recorders = append(recorders, notify.NewCloudWatchRecorder(metrics, cfg.Metrics.Timeout, logger))
	}

	publisher := aws.NewPublisher(clients.SQS, cfg.Queue.URL)
	if !publisher.Configured() {
		logger.Warn().Msg("queue.url is empty: order notifications will be skipped")
	}

	hcfg := handlers.HandlerConfig{
		DB:         db,
		Paging:     store.NewPaging(cfg.Pagination),
		Dispatcher: notify.NewDispatcher(publisher, cfg.Queue.SendTimeout, recorders, logger),
		Logger:     logger,
		RateLimit:  cfg.Server.RateLimit,
	}
	if cfg.Telemetry.Enabled {
		hcfg.ServiceName = cfg.Telemetry.ServiceName
	}
	if cfg.Idempotency.Table != "" {
		hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.Idempotency.Table, cfg.Idempotency.TTL)
	}

	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(hcfg)

	if cfg.Server.RunLocal {
		return serve(cfg.Server, r, logger)
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
	return nil
}

// serve runs the local HTTP server until SIGINT or SIGTERM, then drains it.
func serve(cfg config.ServerConfig, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("running local server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
