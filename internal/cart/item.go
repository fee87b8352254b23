package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bloom-miniapp/internal/models"

	"github.com/shopspring/decimal"
)

// 购物车项中由购物车自身解释的字段，其余字段原样透传
const (
	fieldID       = "id"
	fieldPrice    = "price"
	fieldQuantity = "quantity"
)

var integerIDPattern = regexp.MustCompile(`^(0|-?[1-9][0-9]{0,14})$`)

// 数字标识指数超出该范围时不做规范化
const maxIDExponent = 32

var (
	errItemIDMissing       = errors.New("cart item id missing")
	errItemQuantityInvalid = errors.New("cart item quantity invalid")
	errItemPriceInvalid    = errors.New("cart item price invalid")
	errItemDuplicated      = errors.New("cart item duplicated")
)

// ItemID 商品标识（字符串或整数，统一以文本保存）
// 整数形式的标识序列化为 JSON 数字，其余序列化为字符串。
type ItemID string

// MarshalJSON 输出商品标识
func (id ItemID) MarshalJSON() ([]byte, error) {
	if integerIDPattern.MatchString(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON 解析商品标识（字符串或数字）
func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return errItemIDMissing
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("cart item id must be string or number: %w", err)
	}
	*id = canonicalNumberID(n)
	return nil
}

// canonicalNumberID 数字标识统一为最简十进制文本，1.0 与 1e3 分别得到 "1" 与 "1000"
func canonicalNumberID(n json.Number) ItemID {
	d, err := decimal.NewFromString(n.String())
	if err != nil || d.Exponent() > maxIDExponent || d.Exponent() < -maxIDExponent {
		return ItemID(n.String())
	}
	return ItemID(d.String())
}

// UintID 由数据库主键构造商品标识
func UintID(id uint) ItemID {
	return ItemID(strconv.FormatUint(uint64(id), 10))
}

// Uint 解析为数据库主键，非正整数标识返回 false
func (id ItemID) Uint() (uint, bool) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Product 加入购物车的商品
// Fields 中的名称、图片、分类等字段不被购物车解释，原样随购物车项保存。
type Product struct {
	ID     ItemID
	Price  models.Money
	Fields map[string]json.RawMessage
}

// Item 购物车项
type Item struct {
	ID       ItemID
	Price    models.Money
	Quantity int
	Fields   map[string]json.RawMessage
}

// Subtotal 返回单价 × 数量
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Field 读取透传字段，不存在时返回 false
func (i Item) Field(key string, dest interface{}) (bool, error) {
	raw, ok := i.Fields[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, err
	}
	return true, nil
}

// MarshalJSON 将透传字段与 id/price/quantity 展平输出
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(i.Fields)+3)
	for key, value := range i.Fields {
		out[key] = value
	}
	out[fieldID] = i.ID
	out[fieldPrice] = i.Price
	out[fieldQuantity] = i.Quantity
	return json.Marshal(out)
}

// UnmarshalJSON 解析展平的购物车项
func (i *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	idRaw, ok := raw[fieldID]
	if !ok {
		return errItemIDMissing
	}
	var item Item
	if err := json.Unmarshal(idRaw, &item.ID); err != nil {
		return err
	}
	if priceRaw, ok := raw[fieldPrice]; ok && !bytes.Equal(bytes.TrimSpace(priceRaw), []byte("null")) {
		if err := json.Unmarshal(priceRaw, &item.Price); err != nil {
			return fmt.Errorf("%w: %v", errItemPriceInvalid, err)
		}
	}
	quantityRaw, ok := raw[fieldQuantity]
	if !ok {
		return errItemQuantityInvalid
	}
	if err := json.Unmarshal(quantityRaw, &item.Quantity); err != nil {
		return fmt.Errorf("%w: %v", errItemQuantityInvalid, err)
	}
	delete(raw, fieldID)
	delete(raw, fieldPrice)
	delete(raw, fieldQuantity)
	if len(raw) > 0 {
		item.Fields = raw
	}
	*i = item
	return nil
}

func (i Item) clone() Item {
	if i.Fields == nil {
		return i
	}
	fields := make(map[string]json.RawMessage, len(i.Fields))
	for key, value := range i.Fields {
		fields[key] = append(json.RawMessage(nil), value...)
	}
	i.Fields = fields
	return i
}

func newItem(product Product, quantity int) Item {
	fields := make(map[string]json.RawMessage, len(product.Fields))
	for key, value := range product.Fields {
		switch key {
		case fieldID, fieldPrice, fieldQuantity:
			continue
		}
		fields[key] = append(json.RawMessage(nil), value...)
	}
	if len(fields) == 0 {
		fields = nil
	}
	return Item{
		ID:       product.ID,
		Price:    models.NewMoneyFromDecimal(product.Price.Decimal),
		Quantity: quantity,
		Fields:   fields,
	}
}

// encodeItems 序列化为 JSON 数组，空购物车输出 []
func encodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// validateItem 校验单个购物车项，写入与恢复共用同一套规则
func validateItem(id ItemID, price models.Money, quantity int) error {
	if strings.TrimSpace(string(id)) == "" {
		return errItemIDMissing
	}
	if quantity < 1 {
		return fmt.Errorf("%w: %d", errItemQuantityInvalid, quantity)
	}
	if price.Decimal.IsNegative() {
		return fmt.Errorf("%w: %s", errItemPriceInvalid, price.String())
	}
	return nil
}

// decodeItems 解析持久化的购物车，并校验购物车不变量
func decodeItems(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	seen := make(map[ItemID]struct{}, len(items))
	for _, item := range items {
		if err := validateItem(item.ID, item.Price, item.Quantity); err != nil {
			return nil, err
		}
		if _, ok := seen[item.ID]; ok {
			return nil, fmt.Errorf("%w: %s", errItemDuplicated, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
