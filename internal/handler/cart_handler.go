package handler

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP（描画側が読むAPI）
type CartHandler struct {
	store *usecase.CartStore
}

// DI
func NewCartHandler(store *usecase.CartStore) *CartHandler {
	return &CartHandler{store: store}
}

type AddProductRequest struct {
	ProductID int64 `json:"product_id"`
}

type UpdateProductAmountRequest struct {
	Amount int64 `json:"amount"`
}

// 明細1行
// 商品のフィールドはそのまま（表示用の未知フィールドも含む）に subtotal を足す。
type CartItemResponse struct {
	model.Product
	Subtotal float64 `json:"subtotal"`
}

// model.Product の MarshalJSON が昇格するので自前で書く
func (r CartItemResponse) MarshalJSON() ([]byte, error) {
	sub, err := json.Marshal(r.Subtotal)
	if err != nil {
		return nil, err
	}
	p := r.Product
	p.Extra = maps.Clone(p.Extra)
	if p.Extra == nil {
		p.Extra = map[string]json.RawMessage{}
	}
	p.Extra[subtotalKey] = sub
	return json.Marshal(p)
}

func (r *CartItemResponse) UnmarshalJSON(b []byte) error {
	var p model.Product
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var sub float64
	if raw, ok := p.Extra[subtotalKey]; ok {
		if err := json.Unmarshal(raw, &sub); err != nil {
			return err
		}
		delete(p.Extra, subtotalKey)
		if len(p.Extra) == 0 {
			p.Extra = nil
		}
	}
	r.Product = p
	r.Subtotal = sub
	return nil
}

const subtotalKey = "subtotal"

// items は追加順。size は商品の種類数。
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
	Size  int                `json:"size"`
}

// /cart, /cart/{id} を登録
// guard は書き込み系だけに付ける。
func (h *CartHandler) RegisterRoutes(e *echo.Echo, guard echo.MiddlewareFunc) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.GET("/events", h.events)
	g.POST("", h.addProduct, guard)
	g.PATCH("/:id", h.updateAmount, guard)
	g.DELETE("/:id", h.removeProduct, guard)
}

func (h *CartHandler) getCart(c echo.Context) error {
	return c.JSON(http.StatusOK, buildCartResponse(h.store.Cart()))
}

// 結果は常に200で現在のカートを返す。失敗は通知側に出る。
func (h *CartHandler) addProduct(c echo.Context) error {
	var req AddProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	h.store.AddProduct(c.Request().Context(), req.ProductID)

	return c.JSON(http.StatusOK, buildCartResponse(h.store.Cart()))
}

func (h *CartHandler) updateAmount(c echo.Context) error {
	productID, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateProductAmountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	h.store.UpdateProductAmount(c.Request().Context(), usecase.UpdateProductAmount{
		ProductID: productID,
		Amount:    req.Amount,
	})

	return c.JSON(http.StatusOK, buildCartResponse(h.store.Cart()))
}

func (h *CartHandler) removeProduct(c echo.Context) error {
	productID, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	h.store.RemoveProduct(c.Request().Context(), productID)

	return c.JSON(http.StatusOK, buildCartResponse(h.store.Cart()))
}

// SSEでカートの変更を流す。最初に現在のカートを1回送る。
func (h *CartHandler) events(c echo.Context) error {
	ch := make(chan model.CartChange, 16)
	unsubscribe := h.store.Subscribe(func(change model.CartChange) {
		// 遅いクライアントの分は捨てる（毎回カート全体を送るので次で追いつく）
		select {
		case ch <- change:
		default:
		}
	})
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	if err := writeEvent(res, "cart", buildCartResponse(h.store.Cart())); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-ch:
			if err := writeEvent(res, string(change.Op), buildCartResponse(change.Cart)); err != nil {
				return nil
			}
		}
	}
}

func writeEvent(res *echo.Response, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", name, b); err != nil {
		return err
	}
	res.Flush()
	return nil
}

func buildCartResponse(cart []model.Product) CartResponse {
	items := make([]CartItemResponse, 0, len(cart))
	for _, p := range cart {
		items = append(items, CartItemResponse{
			Product:  p,
			Subtotal: p.Price * float64(p.Amount),
		})
	}

	return CartResponse{
		Items: items,
		Total: model.Subtotal(cart),
		Size:  len(cart),
	}
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
