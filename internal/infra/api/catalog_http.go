package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 商品/在庫APIのHTTPクライアント
type CatalogHTTPRepository struct {
	baseURL string
	http    *http.Client
}

// DI
// timeout が 0 ならタイムアウトなし（ctx任せ）。
func NewCatalogHTTPRepository(baseURL string, timeout time.Duration) *CatalogHTTPRepository {
	return &CatalogHTTPRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GET /products/{id}
func (r *CatalogHTTPRepository) FindProduct(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product
	if err := r.getJSON(ctx, "/products/"+strconv.FormatInt(productID, 10), &p); err != nil {
		return model.Product{}, err
	}
	// amount はカート側の値なのでAPIの値は使わない
	p.Amount = 0
	return p, nil
}

// GET /stock/{id}
func (r *CatalogHTTPRepository) FindStock(ctx context.Context, productID int64) (model.Stock, error) {
	var st model.Stock
	if err := r.getJSON(ctx, "/stock/"+strconv.FormatInt(productID, 10), &st); err != nil {
		return model.Stock{}, err
	}
	return st, nil
}

func (r *CatalogHTTPRepository) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return repo.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
