package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
	LocaleRuRU = "ru-RU"

	// DefaultLocale 未识别语言时的回退语言
	DefaultLocale = LocaleEnUS
)

// contextLocaleKey 中间件写入 gin.Context 的语言键
const contextLocaleKey = "locale"

// SupportedLocales 支持的语言列表
func SupportedLocales() []string {
	return []string{LocaleRuRU, LocaleEnUS, LocaleZhCN}
}

// T 返回指定语言的文案，缺失时依次回退到默认语言和 key 本身
func T(locale, key string) string {
	if msg, ok := messages[NormalizeLocale(locale)][key]; ok {
		return msg
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 返回带格式化参数的文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// NormalizeLocale 归一化语言标识
func NormalizeLocale(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return DefaultLocale
	}
	value = strings.ReplaceAll(value, "_", "-")
	switch {
	case strings.HasPrefix(value, "zh"):
		return LocaleZhCN
	case strings.HasPrefix(value, "ru"):
		return LocaleRuRU
	case strings.HasPrefix(value, "en"):
		return LocaleEnUS
	default:
		return DefaultLocale
	}
}

// ResolveLocale 从请求解析语言
// 优先级：上下文 locale > 查询参数 lang > X-Locale > Accept-Language 首选项
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if value, ok := c.Get(contextLocaleKey); ok {
		if locale, ok := value.(string); ok && locale != "" {
			return NormalizeLocale(locale)
		}
	}
	if c.Request == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	if header := strings.TrimSpace(c.GetHeader("X-Locale")); header != "" {
		return NormalizeLocale(header)
	}
	return NormalizeLocale(firstAcceptLanguage(c.GetHeader("Accept-Language")))
}

// SetLocale 在上下文中记录已确定的语言（例如登录用户的 locale）
func SetLocale(c *gin.Context, locale string) {
	if c == nil || strings.TrimSpace(locale) == "" {
		return
	}
	c.Set(contextLocaleKey, NormalizeLocale(locale))
}

func firstAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag != "" && tag != "*" {
			return tag
		}
	}
	return ""
}
