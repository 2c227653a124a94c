package notify

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/sirupsen/logrus"
)

// 通知をログに出すだけ
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, notice model.Notice) {
	n.log.WithFields(logrus.Fields{
		"kind":       notice.Kind,
		"product_id": notice.ProductID,
	}).Warn(notice.Message)
}
