package app

import (
	"context"
	"errors"
	"time"

	config "github.com/DRSN-tech/storefront/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront/internal/infrastructure/catalogapi"
	"github.com/DRSN-tech/storefront/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/storefront/internal/repository/minio"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	"github.com/DRSN-tech/storefront/internal/repository/redis"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/closer"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"golang.org/x/sync/errgroup"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	topicTimeout    = 10 * time.Second
)

// App — собранное приложение: HTTP API витрины, gRPC health, фоновые воркеры.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	carts        *usecase.SessionCarts
	outboxWorker *kafka.OutboxWorker

	// bgCtx живёт до конца Close: в нём работают фоновые очистки и outbox-воркер
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// NewApp поднимает все зависимости. migrationsURL, если не пуст, применяется до старта.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger, migrationsURL string) (_ *App, err error) {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   log,
		closer:   closer.NewCloser(0),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}
	a.closer.AddFunc("background context", bgCancel)

	defer func() {
		if err != nil {
			if cerr := a.closer.Close(context.Background()); cerr != nil {
				log.Warnf("failed to release resources after init error: %v", cerr)
			}
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := initPGDB(startCtx, log, cfg, migrationsURL)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.AddFunc("postgres", db.Close)

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(startCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(startCtx, minioClient, cfg.Minio.BucketName); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cartProducer := kafka.NewProducer(log, cfg.Kafka, cfg.Kafka.CartTopic, true)
	a.closer.Add("kafka cart producer", func(context.Context) error { return cartProducer.Close() })
	auditProducer := kafka.NewProducer(log, cfg.Kafka, cfg.Kafka.AuditTopic, false)
	a.closer.Add("kafka audit producer", func(context.Context) error { return auditProducer.Close() })

	for _, p := range []*kafka.Producer{cartProducer, auditProducer} {
		// брокер может создать топик сам при первой записи
		if err := p.EnsureTopic(topicTimeout); err != nil {
			log.Warnf("failed to ensure kafka topic: %v", err)
		}
	}

	// Каталог
	catalogClient := catalogapi.NewClient(cfg.Catalog, log)
	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis, log)
	catalogUC := usecase.NewCatalogUC(catalogClient, cacheRepo, log)
	a.closer.AddFunc("catalog cache writes", catalogUC.Wait)

	// Корзины
	cartRepo := redis.NewCartRepo(redisClient, cfg.Cart.SessionTTL)
	a.carts = usecase.NewSessionCarts(cfg.Cart.SessionTTL, cartRepo, kafka.NewCartEventsPublisher(cartProducer), log)

	// Админка
	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio.BucketName)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, bgCtx)
	a.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)

	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool)
	adminUC := usecase.NewAdminUC(
		catalogapi.NewAdminClient(catalogClient),
		catalogClient,
		imagesInfra,
		usecase.NewOutboxAuditTrail(outboxRepo, db.Pool),
		catalogUC,
		log,
	)

	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, log, auditProducer, db.Dsn)
	a.closer.AddFunc("outbox worker", a.outboxWorker.Stop)

	// Транспорт
	r := chi.NewRouter()
	v1Http.NewRouter(r, cfg.Http, cfg.Cart, log).Init(catalogUC, a.carts, adminUC,
		v1Http.HealthCheck{Name: "postgres", Check: db.Ping},
		v1Http.HealthCheck{Name: "redis", Check: redisClient.Ping},
	)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	return a, nil
}

// Run запускает серверы и воркеры и блокируется до отмены ctx или падения сервера.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			a.logger.Errorf(err, "HTTP server failed")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		return nil
	})

	g.Go(func() error {
		a.carts.Run(gctx, a.cfg.Cart.SweepInterval)
		return nil
	})

	a.outboxWorker.Start(a.bgCtx)
	a.grpcSrv.SetServing(true)

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Infof("Stopping gracefully...")
		a.grpcSrv.SetServing(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.closer.Close(shutdownCtx); err != nil {
			a.logger.Errorf(err, "shutdown finished with errors")
		} else {
			a.logger.Infof("Application shutdown complete")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config, migrationsURL string) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if migrationsURL == "" {
		return db, nil
	}

	if err := postgres.RunMigrations(db.Dsn, migrationsURL, logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
