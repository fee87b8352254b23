package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// 商品多语言 JSON 字段参与搜索的语言键
var searchLocales = []string{"ru-RU", "en-US", "zh-CN"}

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// dialectOf 识别连接的方言，未知驱动按 sqlite 处理
func dialectOf(db *gorm.DB) sqlDialect {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	switch strings.ToLower(db.Dialector.Name()) {
	case "postgres", "postgresql":
		return dialectPostgres
	default:
		return dialectSQLite
	}
}

// jsonText 提取 JSON 列中某个语言键的文本
func (d sqlDialect) jsonText(column, key string) string {
	if d == dialectPostgres {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	// 键含 "-"，sqlite 路径需要加引号
	return fmt.Sprintf("json_extract(%s, '$.\"%s\"')", column, key)
}

// like postgres 使用 ILIKE 忽略大小写
func (d sqlDialect) like() string {
	if d == dialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// localizedSearch 普通列与多语言 JSON 列的模糊匹配
type localizedSearch struct {
	plain []string
	json  []string
}

// build 返回 OR 连接的条件与对应参数
func (s localizedSearch) build(d sqlDialect, term string) (string, []interface{}) {
	pattern := "%" + term + "%"
	parts := make([]string, 0, len(s.plain)+len(s.json)*len(searchLocales))
	for _, column := range s.plain {
		parts = append(parts, fmt.Sprintf("%s %s ?", column, d.like()))
	}
	for _, column := range s.json {
		for _, key := range searchLocales {
			parts = append(parts, fmt.Sprintf("%s %s ?", d.jsonText(column, key), d.like()))
		}
	}
	args := make([]interface{}, len(parts))
	for i := range args {
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
