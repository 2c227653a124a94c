package metrics

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

// カート操作のカウンタ
type CartMetrics struct {
	notices *prometheus.CounterVec
	commits *prometheus.CounterVec
}

// reg に登録する（テストでは prometheus.NewRegistry を渡す）
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	m := &CartMetrics{
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_notices_total",
			Help: "Rejected cart operations by notice kind.",
		}, []string{"kind"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_commits_total",
			Help: "Committed cart mutations by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.notices, m.commits)
	return m
}

// usecase.Notifier
func (m *CartMetrics) Notify(ctx context.Context, notice model.Notice) {
	m.notices.WithLabelValues(string(notice.Kind)).Inc()
}

// CartStore.Subscribe に渡す
func (m *CartMetrics) ObserveChange(change model.CartChange) {
	m.commits.WithLabelValues(string(change.Op)).Inc()
}
