package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":      DefaultLocale,
		"zh":    LocaleZhCN,
		"zh_TW": LocaleZhCN,
		"ru-RU": LocaleRuRU,
		"EN-gb": LocaleEnUS,
		"de":    DefaultLocale,
	}
	for raw, want := range cases {
		if got := NormalizeLocale(raw); got != want {
			t.Fatalf("NormalizeLocale(%q) want %s got %s", raw, want, got)
		}
	}
}

func TestTFallsBack(t *testing.T) {
	if got := T(LocaleZhCN, "error.cart_empty"); got != "购物车为空" {
		t.Fatalf("unexpected zh message: %s", got)
	}
	if got := T(LocaleRuRU, "error.user_id_type_invalid"); got != "Invalid user id type" {
		t.Fatalf("missing ru key should fall back to default locale, got %s", got)
	}
	if got := T(LocaleEnUS, "error.unknown_key"); got != "error.unknown_key" {
		t.Fatalf("unknown key should be returned as is, got %s", got)
	}
}

func TestCatalogueKeysCoveredByDefaultLocale(t *testing.T) {
	for locale, entries := range messages {
		for key := range entries {
			if _, ok := messages[DefaultLocale][key]; !ok {
				t.Fatalf("key %s of %s missing in %s", key, locale, DefaultLocale)
			}
		}
	}
}

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		target string
		header map[string]string
		want   string
	}{
		{name: "default", target: "/", want: DefaultLocale},
		{name: "query", target: "/?lang=ru", header: map[string]string{"Accept-Language": "zh-CN"}, want: LocaleRuRU},
		{name: "x-locale", target: "/", header: map[string]string{"X-Locale": "zh-CN", "Accept-Language": "ru"}, want: LocaleZhCN},
		{name: "accept-language", target: "/", header: map[string]string{"Accept-Language": "ru-RU,ru;q=0.9,en;q=0.8"}, want: LocaleRuRU},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.target, nil)
			for key, value := range tc.header {
				c.Request.Header.Set(key, value)
			}
			if got := ResolveLocale(c); got != tc.want {
				t.Fatalf("want %s got %s", tc.want, got)
			}
		})
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	SetLocale(c, "zh")
	if got := ResolveLocale(c); got != LocaleZhCN {
		t.Fatalf("context locale should win, got %s", got)
	}
}

func TestSprintf(t *testing.T) {
	if got := Sprintf(LocaleEnUS, "error.rate_limited", 30); got != "Too many requests, retry in 30 seconds" {
		t.Fatalf("unexpected message: %s", got)
	}
}
