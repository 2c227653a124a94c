package model

import (
	"encoding/json"
	"maps"
	"strings"
)

// カートに入る商品
// title/price/image は表示用なのでそのまま持ち回る。
type Product struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int64   `json:"amount"`

	// 上以外のフィールド（商品APIやスナップショットにあった分をそのまま残す）
	Extra map[string]json.RawMessage `json:"-"`
}

// メソッド無しの別名（再帰しないため）
type productFields Product

var productKeys = []string{"id", "title", "price", "image", "amount"}

func (p *Product) UnmarshalJSON(b []byte) error {
	var known productFields
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k := range all {
		if isProductKey(k) {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		all = nil
	}

	*p = Product(known)
	p.Extra = all
	return nil
}

// 型のあるフィールドが Extra より優先
func (p Product) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(productFields(p))
	if err != nil || len(p.Extra) == 0 {
		return b, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	out := maps.Clone(p.Extra)
	maps.Copy(out, known)
	return json.Marshal(out)
}

func isProductKey(k string) bool {
	for _, name := range productKeys {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// 外部の在庫サービスが返す在庫数
type Stock struct {
	ID     int64 `json:"id"`
	Amount int64 `json:"amount"`
}
