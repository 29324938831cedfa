package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"

	"loopsite/application/blocks"
	"loopsite/application/commands"
	"loopsite/application/commands/bus"
	commandhandlers "loopsite/application/commands/handlers"
	"loopsite/application/designed"
	"loopsite/application/ports"
	"loopsite/application/queries"
	querybus "loopsite/application/queries/bus"
	queryhandlers "loopsite/application/queries/handlers"
	"loopsite/application/rendering"
	"loopsite/application/resolution"
	"loopsite/infrastructure/config"
	"loopsite/infrastructure/messaging/eventbridge"
	"loopsite/infrastructure/messaging/logging"
	"loopsite/infrastructure/persistence/dynamodb"
	"loopsite/infrastructure/persistence/memory"
	"loopsite/infrastructure/persistence/resilient"
	"loopsite/infrastructure/persistence/seed"
	"loopsite/infrastructure/persistence/sqlite"
	"loopsite/interfaces/http/rest"
	"loopsite/interfaces/web"
	apperrors "loopsite/pkg/errors"
	"loopsite/pkg/observability"
	"loopsite/pkg/utils"
)

// SiteName is shown in the layout header and page titles
const SiteName = "Loop Revenue System"

// Metrics bundles the configured metrics backend
type Metrics struct {
	Recorder observability.Recorder
	// Handler serves /metrics; nil unless the prometheus backend is active
	Handler http.Handler
	// CloudWatch must be run by the process when set
	CloudWatch *observability.CloudWatchMetrics
}

// Storage bundles the page store with what was built alongside it
type Storage struct {
	Store  ports.PageStore
	Health ports.HealthChecker
	// Watcher reloads seed content into the memory store; nil unless
	// WATCH_SEED is set with the memory driver
	Watcher *seed.Watcher
}

// ProvideLogger creates a new logger instance. Only development gets the
// development logger, so DPanic panics there and nowhere else.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zapConfig zap.Config
	if cfg.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	// Set log level based on configuration
	switch cfg.LogLevel {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideAWSConfig loads AWS configuration. It returns nil when no
// configured component talks to AWS.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (*aws.Config, error) {
	if !cfg.NeedsAWS() {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return &awsCfg, nil
}

// ProvideMetrics creates the metrics backend named by METRICS_BACKEND
func ProvideMetrics(cfg *config.Config, awsCfg *aws.Config, logger *zap.Logger) (*Metrics, error) {
	if !cfg.EnableMetrics {
		return &Metrics{Recorder: observability.Noop{}}, nil
	}

	switch cfg.MetricsBackend {
	case config.MetricsPrometheus:
		collector := observability.NewCollector(cfg.MetricsNamespace)
		return &Metrics{Recorder: collector, Handler: collector.Handler()}, nil
	case config.MetricsCloudWatch:
		if awsCfg == nil {
			return nil, errors.New("cloudwatch metrics need AWS configuration")
		}
		namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
		cw := observability.NewCloudWatchMetrics(namespace, awscloudwatch.NewFromConfig(*awsCfg), logger)
		return &Metrics{Recorder: cw, CloudWatch: cw}, nil
	default:
		return &Metrics{Recorder: observability.Noop{}}, nil
	}
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.MetricsNamespace, cfg.EnableTracing)
}

// ProvideDesignedRegistry returns the shipped designed pages
func ProvideDesignedRegistry() *designed.Registry {
	return designed.Default()
}

// ProvideBlockRegistry returns the shipped block components
func ProvideBlockRegistry() (*blocks.Registry, error) {
	return blocks.Default()
}

// ProvideStorage opens the page store named by STORAGE_DRIVER and wraps it
// in the circuit breaker when enabled
func ProvideStorage(
	ctx context.Context,
	cfg *config.Config,
	awsCfg *aws.Config,
	registry *designed.Registry,
	metrics *Metrics,
	logger *zap.Logger,
) (*Storage, func(), error) {
	storage := &Storage{}
	cleanup := func() {}

	var inner ports.PageStore
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		watcher, err := seedMemory(cfg, store, registry, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.WatchSeed {
			storage.Watcher = watcher
		}
		inner = store
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}
		inner = store
	case config.StorageDynamoDB:
		if awsCfg == nil {
			return nil, nil, errors.New("dynamodb storage needs AWS configuration")
		}
		inner = dynamodb.NewPageStore(awsdynamodb.NewFromConfig(*awsCfg), cfg.DynamoDBTable, logger)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	storage.Store = inner
	if cfg.CircuitBreaker {
		storage.Store = resilient.NewStore(inner, resilient.DefaultBreakerConfig(), metrics.Recorder, logger)
	}
	if hc, ok := storage.Store.(ports.HealthChecker); ok {
		storage.Health = hc
	}

	logger.Info("Page store ready",
		zap.String("driver", cfg.StorageDriver),
		zap.Bool("circuitBreaker", cfg.CircuitBreaker),
	)
	return storage, cleanup, nil
}

// seedMemory loads SEED_DIR into the memory store once. A missing seed
// directory leaves the store empty.
func seedMemory(cfg *config.Config, store *memory.Store, registry *designed.Registry, logger *zap.Logger) (*seed.Watcher, error) {
	if cfg.SeedDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.SeedDir); errors.Is(err, os.ErrNotExist) {
		logger.Warn("Seed directory not found, starting empty", zap.String("dir", cfg.SeedDir))
		return nil, nil
	}

	watcher := seed.NewWatcher(cfg.SeedDir, store, func(b *seed.Bundle) error {
		return b.Check(registry)
	}, logger)
	if err := watcher.Reload(); err != nil {
		return nil, fmt.Errorf("failed to load seed content: %w", err)
	}
	return watcher, nil
}

// ProvidePageStore extracts the page store
func ProvidePageStore(s *Storage) ports.PageStore {
	return s.Store
}

// ProvideHealthChecker extracts the readiness check
func ProvideHealthChecker(s *Storage) ports.HealthChecker {
	return s.Health
}

// ProvideEventPublisher publishes to EventBridge when EVENT_BUS_NAME is set
// and logs events otherwise
func ProvideEventPublisher(cfg *config.Config, awsCfg *aws.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName != "" && awsCfg != nil {
		return eventbridge.NewPublisher(awseventbridge.NewFromConfig(*awsCfg), cfg.EventBusName, logger)
	}
	return logging.NewPublisher(logger)
}

// ProvideClock returns the wall clock
func ProvideClock() utils.Clock {
	return utils.SystemClock{}
}

// ProvideResolver creates the content resolver
func ProvideResolver(registry *designed.Registry, store ports.PageStore, logger *zap.Logger) *resolution.Resolver {
	return resolution.NewResolver(registry, store, logger)
}

// ProvideDiagnosticObserver logs skipped sections and counts them
func ProvideDiagnosticObserver(metrics *Metrics, logger *zap.Logger) rendering.DiagnosticObserver {
	return rendering.NewLogObserver(logger, metrics.Recorder)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	cfg *config.Config,
	resolver *resolution.Resolver,
	blockRegistry *blocks.Registry,
	observer rendering.DiagnosticObserver,
	store ports.PageStore,
	registry *designed.Registry,
	metrics *Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.LoggingMiddleware(logger, cfg.SlowQueryThreshold))

	// Register GetPageQuery handler
	getPageHandler := queryhandlers.NewGetPageHandler(resolver, blockRegistry, observer, metrics.Recorder, tracer, logger)
	if err := queryBus.Register(queries.GetPageQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetPageQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getPageHandler.Handle(ctx, getQuery)
		},
	)); err != nil {
		return nil, err
	}

	// Register GetPageContentQuery handler
	contentHandler := queryhandlers.NewGetPageContentHandler(store, logger)
	if err := queryBus.Register(queries.GetPageContentQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			contentQuery, ok := query.(queries.GetPageContentQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return contentHandler.Handle(ctx, contentQuery)
		},
	)); err != nil {
		return nil, err
	}

	// Register ListPagesQuery handler
	listHandler := queryhandlers.NewListPagesHandler(store, registry, logger)
	if err := queryBus.Register(queries.ListPagesQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListPagesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listHandler.Handle(ctx, listQuery)
		},
	)); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	store ports.PageStore,
	registry *designed.Registry,
	publisher ports.EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))

	// Register SavePageCommand handler
	saveHandler := commandhandlers.NewSavePageHandler(store, registry, publisher, clock, logger)
	if err := commandBus.Register(commands.SavePageCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			saveCmd, ok := cmd.(commands.SavePageCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := saveHandler.Handle(ctx, saveCmd)
			return err
		},
	)); err != nil {
		return nil, err
	}

	// Register DeletePageCommand handler
	deleteHandler := commandhandlers.NewDeletePageHandler(store, publisher, clock, logger)
	if err := commandBus.Register(commands.DeletePageCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeletePageCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	)); err != nil {
		return nil, err
	}

	// Register SaveSlotOverridesCommand handler
	slotsHandler := commandhandlers.NewSaveSlotOverridesHandler(store, registry, publisher, clock, logger)
	if err := commandBus.Register(commands.SaveSlotOverridesCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			slotsCmd, ok := cmd.(commands.SaveSlotOverridesCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return slotsHandler.Handle(ctx, slotsCmd)
		},
	)); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// ProvideLayout creates the HTML layout
func ProvideLayout() (*web.Layout, error) {
	return web.NewLayout(SiteName, web.DefaultNav)
}

// ProvideErrorHandler creates the HTTP error handler. Stack traces are
// exposed in development only.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	layout *web.Layout,
	health ports.HealthChecker,
	metrics *Metrics,
	tracer *observability.Tracer,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(
		commandBus,
		queryBus,
		layout,
		health,
		metrics.Recorder,
		metrics.Handler,
		tracer,
		errorHandler,
		rest.Options{
			EnableCORS:     cfg.EnableCORS,
			CORSOrigins:    cfg.CORSOrigins,
			EnableWriteAPI: cfg.EnableWriteAPI,
			WriteAPIToken:  cfg.WriteAPIToken,
			WriteRateLimit: cfg.WriteRateLimit,
			TracingName:    cfg.MetricsNamespace,
		},
		logger,
	)
}
