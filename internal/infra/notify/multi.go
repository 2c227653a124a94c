package notify

import (
	"context"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

// 複数のNotifierに配る
type Multi []usecase.Notifier

func (m Multi) Notify(ctx context.Context, notice model.Notice) {
	for _, n := range m {
		n.Notify(ctx, notice)
	}
}
