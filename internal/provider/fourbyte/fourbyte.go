package fourbyte

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	providerx "github.com/John-Robertt/sigscan/internal/provider"
)

// Provider 实现 4byte 目录站的 HTML 列表抓取与解析。
// JSON API 限流严格时可切到该 provider；列表页承载同样的行数据。
//
// 约束：
// - 列表页只公开 4 字节哈希，因此 Item.Hash 就是 selector 本身
//   （selector 由 hash 派生的不变量依然成立：前 8 个字符即全部字符）
// - HTTP 404 => "未收录"；其它非 2xx => 传输失败（HTTPStatusError）
// - 解析必须是纯函数：相同 HTML => 相同输出
type Provider struct {
	// BaseURL 允许指定镜像域名或测试桩。为空时使用官方站点。
	BaseURL string
}

func (Provider) Name() string { return "fourbyte" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return "https://www.4byte.directory"
	}
	return strings.TrimRight(u, "/")
}

// Lookup 抓取 /signatures/?bytes4_signature=0x<selector> 并解析结果表格。
func (p Provider) Lookup(ctx context.Context, selector string, c *http.Client) ([]providerx.Item, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	if selector == "" {
		return nil, errors.New("selector 不能为空")
	}

	u := p.baseURL() + "/signatures/?bytes4_signature=0x" + selector
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &providerx.HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parse(html, selector)
}

// parse 把结果表格的每一行变成一个 Item，保持页面行序。
// 页面结构漂移导致解析不出任何行时，按"未收录"处理（与 JSON provider 一致）。
func parse(html []byte, selector string) ([]providerx.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, nil
	}

	var items []providerx.Item
	doc.Find("table tbody tr").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Find("td.text_signature").First().Text())
		if text == "" {
			return
		}
		hash := strings.TrimSpace(s.Find("td.bytes_signature").First().Text())
		hash = strings.TrimPrefix(hash, "0x")
		if hash == "" {
			hash = selector
		}
		items = append(items, providerx.Item{Hash: hash, Text: text})
	})
	return items, nil
}
