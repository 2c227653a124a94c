package model

// ローカルストレージ上のカートのキー
const CartStorageKey = "@RocketShoes:cart"

type CartOp string

const (
	CartOpAdd    CartOp = "add"
	CartOpRemove CartOp = "remove"
	CartOpUpdate CartOp = "update"
)

// 確定したカートの変更（購読者に配る）
type CartChange struct {
	Op        CartOp    `json:"op"`
	ProductID int64     `json:"product_id"`
	Cart      []Product `json:"cart"`
}

// 小計（price × amount の合計）
func Subtotal(cart []Product) float64 {
	var total float64
	for _, p := range cart {
		total += p.Price * float64(p.Amount)
	}
	return total
}
