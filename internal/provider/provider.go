package provider

import (
	"context"
	"fmt"
	"net/http"
)

// Item 是签名库对一个 selector 返回的一条候选：完整哈希 + 签名文本。
// 切片顺序就是 provider 自己的热度排名（最常被引用的在前）。
type Item struct {
	Hash string `json:"hash"`
	Text string `json:"text"`
}

// Provider 把"签名库差异"限制在 provider 包内部；解析流程只依赖统一接口。
//
// 约束：
// - Lookup 不做缓存、不做重试、不做限速（网络策略由 httpx 统一固化）
// - 响应体缺失/无法解码 => (nil, nil)，即"未收录"；只有传输层失败才返回 error
// - 返回的 Item 顺序必须保持 provider 的热度排名
type Provider interface {
	Name() string
	Lookup(ctx context.Context, selector string, c *http.Client) ([]Item, error)
}

// Error 是 lookup 阶段的可追溯错误。
// 上层据此把批次失败归类为 lookup_failed，并能指出是哪个 selector。
type Error struct {
	Provider string // provider name（小写）
	Selector string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s selector=%s: %v", e.Provider, e.Selector, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
