package etherface

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	providerx "github.com/John-Robertt/sigscan/internal/provider"
)

// Provider 实现 Etherface 风格的 JSON 签名库查询。
//
// 契约（必须与批次失败语义配合理解）：
// - 网络层失败（连接/超时/读 body）=> error，整个批次失败
// - 响应体无法解码成预期 JSON（含 404 错误页等）=> "未收录"，返回 (nil, nil)
// - items 为空 => 同样是"未收录"
//
// 即：状态码不单独判定，一切以 body 能否解码为准。
type Provider struct {
	// BaseURL 允许指向镜像或测试桩。为空时使用官方 API。
	BaseURL string
}

func (Provider) Name() string { return "etherface" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return "https://api.etherface.io"
	}
	return strings.TrimRight(u, "/")
}

// response 对应 API 的响应体：{"items":[{"hash","text"},...]}，
// items 按热度排名（引用最多的在前）。
type response struct {
	Items []providerx.Item `json:"items"`
}

// Lookup 按 selector（8 位小写十六进制，不带 0x）查询候选签名。
// selector 到完整摘要的映射由签名库完成；这里只发 key、解释响应。
func (p Provider) Lookup(ctx context.Context, selector string, c *http.Client) ([]providerx.Item, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	if selector == "" {
		return nil, errors.New("selector 不能为空")
	}

	u := p.baseURL() + "/v1/signatures/hash/all/" + selector + "/1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		// 解不开就当未收录：错误页/空体都落在这里，不升级为批次失败。
		return nil, nil
	}
	return r.Items, nil
}
