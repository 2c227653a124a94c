package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/metrics"
	"storefront/internal/infra/notify"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyCatalog struct{}

func (emptyCatalog) FindProduct(ctx context.Context, id int64) (model.Product, error) {
	return model.Product{ID: id}, nil
}

func (emptyCatalog) FindStock(ctx context.Context, id int64) (model.Stock, error) {
	return model.Stock{ID: id}, nil
}

type clock struct{}

func (clock) Now() time.Time { return time.Now() }

func TestNew_Routes(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard

	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetrics(reg)
	feed := notify.NewFeed(5)

	store, err := usecase.NewCartStore(context.Background(), emptyCatalog{}, infraRepo.NewMemoryLocalStorage(), notify.Multi{feed, m}, clock{}, log)
	require.NoError(t, err)

	e := server.New(server.Handlers{
		Cart:          handler.NewCartHandler(store),
		Notifications: handler.NewNotificationHandler(feed),
	}, "secret", reg, log)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	// 読み取りは認証なし、書き込みは要認証
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 在庫0の商品を追加 → 通知がメトリクスに出る
	store.AddProduct(context.Background(), 1)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cart_notices_total{kind="out_of_stock"} 1`)
}

func TestStart_StopsOnCancel(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard

	e := server.New(server.Handlers{
		Cart:          handler.NewCartHandler(mustStore(t, log)),
		Notifications: handler.NewNotificationHandler(notify.NewFeed(1)),
	}, "", prometheus.NewRegistry(), log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx, "127.0.0.1:0", e, log) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func mustStore(t *testing.T, log logrus.FieldLogger) *usecase.CartStore {
	t.Helper()
	store, err := usecase.NewCartStore(context.Background(), emptyCatalog{}, infraRepo.NewMemoryLocalStorage(), notify.NewFeed(1), clock{}, log)
	require.NoError(t, err)
	return store
}
