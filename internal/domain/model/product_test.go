package model_test

import (
	"encoding/json"
	"testing"

	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_KeepsUnknownFields(t *testing.T) {
	raw := `{"id":1,"title":"Tenis","price":139.9,"image":"a.jpg","brand":"Nike","priceFormatted":"R$ 139,90","sizes":[38,39],"amount":2}`

	var p model.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, int64(2), p.Amount)
	assert.Len(t, p.Extra, 3)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(b))
}

func TestProduct_TypedFieldsWin(t *testing.T) {
	var p model.Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"amount":1,"note":"x"}`), &p))

	p.Amount = 3
	p.Extra["amount"] = json.RawMessage(`99`)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"","price":0,"image":"","amount":3,"note":"x"}`, string(b))
}

func TestProduct_NoExtraStaysNil(t *testing.T) {
	var p model.Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":5,"title":"Boot","price":10,"image":"b.jpg","amount":1}`), &p))

	assert.Equal(t, model.Product{ID: 5, Title: "Boot", Price: 10, Image: "b.jpg", Amount: 1}, p)
}
