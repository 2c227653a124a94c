package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/api"
	"storefront/internal/infra/db"
	"storefront/internal/infra/metrics"
	"storefront/internal/infra/notify"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{Service: "storefront-cart", Env: cfg.GoEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("storefront-cart stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Entry) error {
	//ローカルストレージ
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStorage.Close() }()
	log.WithField("storage", cfg.Storage).Info("local storage ready")

	//商品/在庫API
	catalog := api.NewCatalogHTTPRepository(cfg.CatalogAPIURL, cfg.CatalogTimeout)

	//通知（ログ・直近フィード・メトリクス）
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(reg)
	feed := notify.NewFeed(cfg.NoticeFeedSize)
	notifier := notify.Multi{notify.NewLogNotifier(log), feed, cartMetrics}

	//Usecase生成
	store, err := usecase.NewCartStore(ctx, catalog, storage, notifier, &realClock{}, log)
	if err != nil {
		return err
	}
	unsubscribe := store.Subscribe(cartMetrics.ObserveChange)
	defer unsubscribe()
	log.WithField("items", len(store.Cart())).Info("cart restored")

	//Handler生成
	e := server.New(server.Handlers{
		Cart:          handler.NewCartHandler(store),
		Notifications: handler.NewNotificationHandler(feed),
	}, cfg.APISecret, reg, log)

	//Server起動
	return server.Start(ctx, cfg.Addr(), e, log)
}

// CART_STORAGE に応じてドライバを選ぶ
func openStorage(ctx context.Context, cfg config.Config) (repo.LocalStorage, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return infraRepo.NewMemoryLocalStorage(), nopCloser{}, nil

	case config.StoragePostgres:
		gormDB, err := db.ConnectPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return infraRepo.NewLocalStorageGormRepository(gormDB), sqlDB, nil

	case config.StorageRedis:
		client := infraRepo.NewRedisClient(cfg.RedisAddr)
		s := infraRepo.NewRedisLocalStorage(client, cfg.RedisPrefix)
		if err := s.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, client, nil

	default:
		sqlDB, err := db.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		s, err := infraRepo.NewSQLiteLocalStorage(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return s, sqlDB, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
