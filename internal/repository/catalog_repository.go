package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 外部の商品/在庫APIを読むだけの約束。
// 在庫は毎回取りに行く（キャッシュしない）。
type CatalogRepository interface {
	FindProduct(ctx context.Context, productID int64) (model.Product, error)
	FindStock(ctx context.Context, productID int64) (model.Stock, error)
}
