package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// 失敗をユーザーに知らせる（トースト相当）。戻り値は見ない。
type Notifier interface {
	Notify(ctx context.Context, n model.Notice)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

var (
	errOutOfStock = errors.New("requested quantity out of stock")
	errNotInCart  = errors.New("product not in cart")
)

// 数量変更の入力
type UpdateProductAmount struct {
	ProductID int64
	Amount    int64
}

// CartStore はカートの状態を持ち、ローカルストレージへ書き通す。
// 各操作は「外部読み取り → 検証 → 確定 or 却下」の1回きり。
// 失敗は呼び出し元に返さず Notifier にだけ流す。
type CartStore struct {
	catalog  repo.CatalogRepository
	storage  repo.LocalStorage
	notifier Notifier
	clock    Clock
	log      logrus.FieldLogger

	mu   sync.Mutex
	cart []model.Product

	// 確定順の配信待ち。配信するのは同時に1つだけ（mu で守る）。
	pending     []model.CartChange
	dispatching bool

	subMu  sync.Mutex
	subs   map[int]func(model.CartChange)
	nextID int
}

// DI
// 起動時にストレージのスナップショットを読む（無ければ空）。
func NewCartStore(
	ctx context.Context,
	catalog repo.CatalogRepository,
	storage repo.LocalStorage,
	notifier Notifier,
	clock Clock,
	log logrus.FieldLogger,
) (*CartStore, error) {
	s := &CartStore{
		catalog:  catalog,
		storage:  storage,
		notifier: notifier,
		clock:    clock,
		log:      log,
		subs:     map[int]func(model.CartChange){},
	}

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.cart = cart

	return s, nil
}

// 現在のカート（コピー）
func (s *CartStore) Cart() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.cart)
}

// Subscribe は確定した変更を確定順に受け取る。
// コールバックからカートを操作してもよい（その変更は今の配信の後に届く）。
func (s *CartStore) Subscribe(fn func(model.CartChange)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// AddProduct はカートに1つ追加する。
// 既にあれば amount+1、無ければ amount=1 で末尾に追加。
func (s *CartStore) AddProduct(ctx context.Context, productID int64) {
	var (
		product model.Product
		stock   model.Stock
	)

	//商品と在庫は別々に読む
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.catalog.FindProduct(gctx, productID)
		if err != nil {
			return fmt.Errorf("find product: %w", err)
		}
		product = p
		return nil
	})
	g.Go(func() error {
		st, err := s.catalog.FindStock(gctx, productID)
		if err != nil {
			return fmt.Errorf("find stock: %w", err)
		}
		stock = st
		return nil
	})
	if err := g.Wait(); err != nil {
		s.report(ctx, model.NoticeAddFailed, productID, err)
		return
	}

	err := s.mutate(ctx, model.CartOpAdd, productID, func(cart []model.Product) ([]model.Product, error) {
		idx := indexOf(cart, productID)
		if idx >= 0 {
			if cart[idx].Amount >= stock.Amount {
				return nil, errOutOfStock
			}
			return withAmount(cart, idx, cart[idx].Amount+1), nil
		}

		if stock.Amount <= 0 {
			return nil, errOutOfStock
		}
		item := product
		item.ID = productID
		item.Amount = 1
		return append(cloneCart(cart), item), nil
	})
	if err != nil {
		s.report(ctx, kindFor(err, model.NoticeAddFailed), productID, err)
	}
}

// RemoveProduct は明細を丸ごと消す。外部呼び出しなし。
func (s *CartStore) RemoveProduct(ctx context.Context, productID int64) {
	err := s.mutate(ctx, model.CartOpRemove, productID, func(cart []model.Product) ([]model.Product, error) {
		if indexOf(cart, productID) < 0 {
			return nil, errNotInCart
		}
		next := make([]model.Product, 0, len(cart))
		for _, p := range cart {
			if p.ID != productID {
				next = append(next, p)
			}
		}
		return next, nil
	})
	if err != nil {
		s.report(ctx, model.NoticeRemoveFailed, productID, err)
	}
}

// UpdateProductAmount は数量を指定値に置き換える。
// amount < 1 は何もしない（通知もしない）。
func (s *CartStore) UpdateProductAmount(ctx context.Context, in UpdateProductAmount) {
	stock, err := s.catalog.FindStock(ctx, in.ProductID)
	if err != nil {
		s.report(ctx, model.NoticeUpdateFailed, in.ProductID, fmt.Errorf("find stock: %w", err))
		return
	}

	if in.Amount < 1 {
		return
	}
	if in.Amount > stock.Amount {
		s.report(ctx, model.NoticeOutOfStock, in.ProductID, errOutOfStock)
		return
	}

	err = s.mutate(ctx, model.CartOpUpdate, in.ProductID, func(cart []model.Product) ([]model.Product, error) {
		idx := indexOf(cart, in.ProductID)
		if idx < 0 {
			return nil, errNotInCart
		}
		return withAmount(cart, idx, in.Amount), nil
	})
	if err != nil {
		s.report(ctx, kindFor(err, model.NoticeUpdateFailed), in.ProductID, err)
	}
}

// 現在のカートで検証して、保存できたときだけ置き換える。
// 保存 → メモリ → 配信 の順。
func (s *CartStore) mutate(
	ctx context.Context,
	op model.CartOp,
	productID int64,
	fn func(cart []model.Product) ([]model.Product, error),
) error {
	s.mu.Lock()

	next, err := fn(s.cart)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cart = next
	s.pending = append(s.pending, model.CartChange{Op: op, ProductID: productID, Cart: cloneCart(next)})

	s.log.WithFields(logrus.Fields{
		"op":         op,
		"product_id": productID,
		"items":      len(next),
	}).Debug("cart committed")

	s.dispatch()
	return nil
}

// mu を持った状態で呼ぶ。戻るときには mu は解放済み。
// 配信中の誰かがいればその人が流すので、ここでは積むだけ。
func (s *CartStore) dispatch() {
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, change := range batch {
			s.publish(change)
		}

		s.mu.Lock()
	}

	s.dispatching = false
	s.mu.Unlock()
}

func (s *CartStore) publish(change model.CartChange) {
	s.subMu.Lock()
	fns := make([]func(model.CartChange), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (s *CartStore) load(ctx context.Context) ([]model.Product, error) {
	raw, ok, err := s.storage.GetItem(ctx, model.CartStorageKey)
	if err != nil {
		return nil, fmt.Errorf("read cart snapshot: %w", err)
	}
	if !ok {
		return []model.Product{}, nil
	}

	var cart []model.Product
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if cart == nil {
		cart = []model.Product{}
	}
	if err := validateCart(cart); err != nil {
		return nil, fmt.Errorf("invalid cart snapshot: %w", err)
	}
	return cart, nil
}

// amount >= 1、id の重複なし
func validateCart(cart []model.Product) error {
	seen := make(map[int64]struct{}, len(cart))
	for _, p := range cart {
		if p.Amount < 1 {
			return fmt.Errorf("product %d: amount %d", p.ID, p.Amount)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("product %d: duplicate entry", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func (s *CartStore) persist(ctx context.Context, cart []model.Product) error {
	b, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.storage.SetItem(ctx, model.CartStorageKey, string(b)); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	return nil
}

func (s *CartStore) report(ctx context.Context, kind model.NoticeKind, productID int64, err error) {
	s.log.WithFields(logrus.Fields{
		"kind":       kind,
		"product_id": productID,
	}).WithError(err).Warn("cart operation rejected")

	s.notifier.Notify(ctx, model.NewNotice(kind, productID, s.clock.Now()))
}

// 在庫切れだけは専用の通知、それ以外は操作ごとの失敗
func kindFor(err error, fallback model.NoticeKind) model.NoticeKind {
	if errors.Is(err, errOutOfStock) {
		return model.NoticeOutOfStock
	}
	return fallback
}

func indexOf(cart []model.Product, productID int64) int {
	for i, p := range cart {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

func withAmount(cart []model.Product, idx int, amount int64) []model.Product {
	next := cloneCart(cart)
	next[idx].Amount = amount
	return next
}

func cloneCart(cart []model.Product) []model.Product {
	out := make([]model.Product, len(cart))
	copy(out, cart)
	for i := range out {
		out[i].Extra = maps.Clone(out[i].Extra)
	}
	return out
}
