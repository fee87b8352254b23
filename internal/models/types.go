package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// JSON 多语言内容等 JSON 对象字段
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	raw, err := scanBytes(value)
	if err != nil || raw == nil {
		*j = make(JSON)
		return err
	}
	return json.Unmarshal(raw, j)
}

// Text 按语言取文本，缺失时依次回退到 en-US、zh-CN、任意一个非空值
func (j JSON) Text(locale string) string {
	candidates := []string{strings.TrimSpace(locale), "en-US", "zh-CN"}
	for _, key := range candidates {
		if key == "" {
			continue
		}
		if text, ok := j[key].(string); ok && strings.TrimSpace(text) != "" {
			return text
		}
	}
	for _, value := range j {
		if text, ok := value.(string); ok && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

// StringArray 字符串数组字段（images、tags 等）
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	raw, err := scanBytes(value)
	if err != nil || raw == nil {
		*s = StringArray{}
		return err
	}
	return json.Unmarshal(raw, s)
}

// First 返回第一个元素，空数组返回空串
func (s StringArray) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type: %T", value)
	}
}
