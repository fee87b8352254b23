package public

import "github.com/bloom-miniapp/internal/provider"

// Handler 小程序前台接口处理器
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
