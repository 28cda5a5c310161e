package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	"drover/internal/broker"
	"drover/internal/config"
	"drover/internal/constants"
	"drover/internal/converter"
	"drover/internal/deadletter"
	"drover/internal/endpoint"
	"drover/internal/engine"
	"drover/internal/errorhandler"
	"drover/internal/idempotent"
	"drover/internal/logger"
	"drover/internal/management"
	"drover/internal/predicate"
	"drover/internal/processor"
	"drover/internal/route"
	"drover/pkg/bootstrap"
	"drover/pkg/circuitbreaker"
	"drover/pkg/health"
	"drover/pkg/logging"
	"drover/pkg/metrics"
	"drover/pkg/middleware"
	"drover/pkg/migrations"
	"drover/pkg/ratelimit"
	"drover/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "mediation-service"

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	db          *sql.DB
	redisClient *redisclient.Client
	mongoClient *mongo.Client

	engine      *engine.Engine
	routes      *route.Registry
	converter   *converter.Registry
	deadLetters deadletter.Store
	archiver    *deadletter.Archiver
	entry       processor.Processor
	routeID     string

	tracerProvider *tracing.TracerProvider
	router         *gin.Engine
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(serviceName)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		routes:      route.NewRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitBroker(serviceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterEngineMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterManagementMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initConverter()
	a.initEngine()

	if err := a.initRoute(); err != nil {
		return fmt.Errorf("failed to assemble route: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: a.router,
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.Config.Route.Idempotent.Enabled && a.Config.Route.Idempotent.Backend == "redis" {
		rdb, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			return err
		}
		a.redisClient = rdb
	}

	if a.Config.Route.DeadLetter.Enabled && a.Config.Route.DeadLetter.Persist {
		mongoClient, err := a.dbConnector.InitMongoDB(ctx)
		if err != nil {
			return err
		}
		if mongoClient != nil {
			a.mongoClient = mongoClient
			dbName := a.Config.Database.MongoDB.Database
			if dbName == "" {
				dbName = constants.DefaultMongoDBName
			}
			mongoDB := mongoClient.Database(dbName)

			if a.Config.Database.RunMigrations {
				if err := migrations.EnsureMongoCollection(ctx, mongoDB); err != nil {
					return fmt.Errorf("failed to ensure mongo collection: %w", err)
				}
			}

			a.deadLetters = deadletter.NewMongoStore(mongoDB)
		}
	}

	return nil
}

func (a *App) initConverter() {
	reg := converter.NewRegistry()

	// Structured bodies flatten to JSON text when a step needs a string.
	reg.Register(
		reflect.TypeOf(map[string]interface{}{}),
		reflect.TypeOf(""),
		func(v interface{}) (interface{}, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode body: %w", err)
			}
			return string(b), nil
		},
	)

	a.converter = reg
}

func (a *App) initEngine() {
	a.engine = engine.New(engine.Config{
		Workers:   a.Config.Engine.Workers,
		QueueSize: a.Config.Engine.QueueSize,
	}, a.Logger)
	a.engine.Start()
}

// initRoute assembles the hosted route from the inside out: the guarded
// send to the output topic sits at the leaf, the optional mediation steps
// wrap it, and the exception scope encloses the whole graph.
func (a *App) initRoute() error {
	rc := a.Config.Route

	a.routeID = rc.ID
	if a.routeID == "" {
		a.routeID = "mediation"
	}

	outputTopic := a.Config.Broker.Kafka.OutputTopic
	if outputTopic == "" {
		outputTopic = constants.DefaultOutputTopic
	}

	outbound := endpoint.NewKafka(a.Producer, outputTopic, serviceName, a.Logger)

	var steps []string
	p := processor.Processor(errorhandler.Wrap(processor.NewSend(outbound), a.engine, a.Logger))

	if rc.Transform.Enabled {
		tr, err := predicate.NewCELTransform(rc.Transform.Expression)
		if err != nil {
			return fmt.Errorf("invalid transform expression: %w", err)
		}
		p = processor.NewPipeline(processor.Transform(tr), p)
		steps = append(steps, "transform")
	}

	if a.Config.CircuitBreaker.Enabled {
		cbCfg := circuitbreaker.DefaultConfig(a.routeID)
		if a.Config.CircuitBreaker.MaxRequests > 0 {
			cbCfg.MaxRequests = a.Config.CircuitBreaker.MaxRequests
		}
		if a.Config.CircuitBreaker.Interval > 0 {
			cbCfg.Interval = a.Config.CircuitBreaker.Interval
		}
		if a.Config.CircuitBreaker.Timeout > 0 {
			cbCfg.Timeout = a.Config.CircuitBreaker.Timeout
		}
		p = processor.NewCircuitBreaker(circuitbreaker.NewWrapper(cbCfg), p)
		steps = append(steps, "circuit-breaker")
	}

	if rc.Filter.Enabled {
		pred, err := predicate.NewCEL(rc.Filter.Expression)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		p = processor.NewFilter(pred, p)
		steps = append(steps, "filter")
	}

	if rc.Throttle.Enabled {
		p = processor.NewPipeline(processor.NewThrottle(rc.Throttle.PerSecond, rc.Throttle.Burst, a.engine), p)
		steps = append(steps, "throttle")
	}

	if rc.Idempotent.Enabled {
		repo, err := a.idempotentRepository(rc.Idempotent)
		if err != nil {
			return err
		}
		p = processor.NewIdempotentConsumer(processor.HeaderKey(rc.Idempotent.Header), repo, p)
		steps = append(steps, "idempotent")
	}

	if rc.Redelivery.MaxRedeliveries > 0 {
		policy, err := redeliveryPolicy(rc.Redelivery)
		if err != nil {
			return err
		}
		scope := errorhandler.NewScope(&errorhandler.Clause{
			Policy: policy,
			Action: errorhandler.Propagate,
		})
		p = errorhandler.WithScope(scope, p)
	}

	if a.Config.Route.DeadLetter.Enabled && a.deadLetters != nil {
		a.archiver = deadletter.NewArchiver(a.deadLetters, a.routeID, a.Logger)
	}

	// Steps were collected inside out; reverse into declaration order.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	steps = append(steps, "to:"+outputTopic)

	a.entry = p
	return a.routes.Add(&route.Route{ID: a.routeID, Entry: p, Steps: steps})
}

func (a *App) idempotentRepository(cfg config.IdempotentConfig) (idempotent.Repository, error) {
	switch cfg.Backend {
	case "redis":
		if a.redisClient == nil {
			return nil, fmt.Errorf("idempotent backend %q requires redis", cfg.Backend)
		}
		ttlSeconds := cfg.TTLSeconds
		if ttlSeconds <= 0 {
			ttlSeconds = constants.DefaultTTLSeconds
		}
		return idempotent.NewRedisRepository(a.redisClient, constants.IdempotentKeyPrefix, time.Duration(ttlSeconds)*time.Second), nil
	case "postgres":
		if a.db == nil {
			return nil, fmt.Errorf("idempotent backend %q requires postgres", cfg.Backend)
		}
		return idempotent.NewPostgresRepository(a.db, a.routeID), nil
	default:
		return idempotent.NewMemoryRepository(0), nil
	}
}

func redeliveryPolicy(cfg config.RedeliveryConfig) (*errorhandler.Policy, error) {
	policy := errorhandler.DefaultPolicy()
	policy.MaxRedeliveries = cfg.MaxRedeliveries

	switch cfg.Backoff {
	case "", "exponential":
		policy.Backoff = errorhandler.BackoffExponential
	case "linear":
		policy.Backoff = errorhandler.BackoffLinear
	case "constant":
		policy.Backoff = errorhandler.BackoffConstant
	default:
		return nil, fmt.Errorf("unknown backoff type: %s", cfg.Backoff)
	}

	if cfg.Delay > 0 {
		policy.Delay = cfg.Delay
	}
	if cfg.Increment > 0 {
		policy.Increment = cfg.Increment
	}
	if cfg.Multiplier > 0 {
		policy.Multiplier = cfg.Multiplier
	}
	if cfg.MaxDelay > 0 {
		policy.MaxDelay = cfg.MaxDelay
	}
	if cfg.Jitter > 0 {
		policy.Jitter = cfg.Jitter
	}

	return policy, nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(serviceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.Config.Management.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.Config.Management.RateLimit.RPS,
			Burst:           a.Config.Management.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.Management.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.Management.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.Logger.InfowCtx(context.Background(), "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	svc := management.NewService(a.engine, a.routes, a.converter, a.deadLetters, a.Logger)
	handler := management.NewHandler(svc, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewKafkaChecker(a.Config.Broker.Kafka.Brokers))
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	inputTopic := a.Config.Broker.Kafka.InputTopic
	if inputTopic == "" {
		inputTopic = constants.DefaultInputTopic
	}
	g.Go(func() error {
		consumeCtx := logging.WithServiceName(gCtx, serviceName)
		a.Logger.InfowCtx(consumeCtx, "Starting input consumer",
			"topic", inputTopic,
			"route", a.routeID,
		)
		return a.Consumer.Consume(gCtx, inputTopic, a.handleEnvelope)
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

// handleEnvelope drives one consumed message through the hosted route and
// blocks until the exchange completes, so the broker offset only advances
// once the outcome is known.
func (a *App) handleEnvelope(ctx context.Context, env broker.Envelope) error {
	ex := env.ToExchange()
	ctx = logging.WithRouteID(ctx, a.routeID)

	a.engine.RunSync(ctx, ex, a.entry)

	if err := ex.Err(); err != nil {
		if a.archiver != nil {
			a.engine.RunSync(ctx, ex, a.archiver)
		}
		return err
	}

	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, serviceName)
	a.Logger.InfowCtx(shutdownCtx, "Shutting down mediation service")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			httpCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(httpCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.engine != nil {
			a.engine.Stop()
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
