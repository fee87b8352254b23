package cart

import (
	"encoding/json"
	"testing"

	"github.com/bloom-miniapp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIDJSON(t *testing.T) {
	cases := []struct {
		raw  string
		want ItemID
		out  string
	}{
		{raw: `1`, want: "1", out: `1`},
		{raw: `"1"`, want: "1", out: `1`},
		{raw: `"rose-01"`, want: "rose-01", out: `"rose-01"`},
		{raw: `"007"`, want: "007", out: `"007"`},
		{raw: `1.5`, want: "1.5", out: `"1.5"`},
		{raw: `1.0`, want: "1", out: `1`},
		{raw: `1e3`, want: "1000", out: `1000`},
		{raw: `-0`, want: "0", out: `0`},
		{raw: `2.50`, want: "2.5", out: `"2.5"`},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			var id ItemID
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &id))
			assert.Equal(t, tc.want, id)
			out, err := json.Marshal(id)
			require.NoError(t, err)
			assert.Equal(t, tc.out, string(out))
		})
	}

	var id ItemID
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
	assert.Error(t, json.Unmarshal([]byte(`null`), &id))
}

func TestItemJSONFlattensFields(t *testing.T) {
	item := Item{
		ID:       "9",
		Price:    money(12),
		Quantity: 3,
		Fields: map[string]json.RawMessage{
			"name":     json.RawMessage(`"Lilies"`),
			"category": json.RawMessage(`{"id":2,"slug":"bouquets"}`),
		},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"price":"12.00","quantity":3,"name":"Lilies","category":{"id":2,"slug":"bouquets"}}`, string(data))

	var decoded Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, item.ID, decoded.ID)
	assert.Equal(t, item.Quantity, decoded.Quantity)
	assert.Equal(t, item.Fields, decoded.Fields)
	assert.Equal(t, "36.00", decoded.Subtotal().StringFixed(2))
}

func TestNewItemDropsReservedFields(t *testing.T) {
	item := newItem(Product{
		ID:    "1",
		Price: money(5),
		Fields: map[string]json.RawMessage{
			"quantity": json.RawMessage(`1000`),
			"price":    json.RawMessage(`0`),
			"name":     json.RawMessage(`"Daisy"`),
		},
	}, 2)

	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "5.00", item.Price.String())
	assert.Equal(t, map[string]json.RawMessage{"name": json.RawMessage(`"Daisy"`)}, item.Fields)
}

func TestNewItemRoundsPriceToCents(t *testing.T) {
	item := newItem(Product{ID: "1", Price: models.Money{Decimal: decimal.RequireFromString("0.125")}}, 8)

	assert.Equal(t, "0.13", item.Price.String())
	assert.Equal(t, "1.04", item.Subtotal().StringFixed(2))
}

func TestUintIDConversion(t *testing.T) {
	assert.Equal(t, ItemID("42"), UintID(42))

	n, ok := ItemID("42").Uint()
	assert.True(t, ok)
	assert.Equal(t, uint(42), n)

	for _, id := range []ItemID{"0", "-1", "rose-01", ""} {
		_, ok := id.Uint()
		assert.False(t, ok, "id %q", id)
	}
}
