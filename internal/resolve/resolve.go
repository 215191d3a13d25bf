// Package resolve 把一组 selector 并发解析成候选签名列表。
//
// 失败语义（关键契约）：批次不容忍部分失败。任何一个 lookup 的传输层
// 失败都会让整个批次失败，调用方拿到零结果——即使其余 lookup 已经成功。
// "签名库未收录"（合法的空响应）不是失败，只是静默地不贡献结果。
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/sigscan/internal/domain"
	providerx "github.com/John-Robertt/sigscan/internal/provider"
)

// Policy 决定每个命中的 selector 贡献多少候选。
type Policy string

const (
	// PolicyFirst 只保留每个 selector 热度最高的一条候选。
	PolicyFirst Policy = "first"
	// PolicyAll 保留每个 selector 的全部候选，跨 selector 平铺、不再去重。
	PolicyAll Policy = "all"
)

// ParsePolicy 校验并解析聚合策略；空串取默认值 first。
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyFirst, nil
	case PolicyFirst, PolicyAll:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("policy 只能是 first 或 all，实际是 %q", s)
	}
}

// BatchError 包装批次中第一个观察到的 lookup 失败。
type BatchError struct {
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("签名解析批次失败（已放弃全部结果）：%v", e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

func IsBatchError(err error) bool {
	var e *BatchError
	return errors.As(err, &e)
}

// OnLookup 在单个 lookup 成功完成时被调用（可能来自任意 goroutine，
// 实现必须并发安全）。found 是该 selector 返回的候选条数（0 表示未收录）。
type OnLookup func(selector string, found int, dur time.Duration)

// Resolve 对集合里的每个 selector 各发一次并发 lookup（扇出宽度 = selector
// 数，无并发上限），全部成功后按 policy 聚合。
//
// 顺序保证：selector 间按字典序、selector 内按 provider 热度排名；
// 与请求完成顺序无关（完成顺序本来就不确定）。
//
// 第一个失败会通过 errgroup 的 context 取消所有在途请求（连接随取消释放，
// 不泄漏），Resolve 返回 *BatchError 且不返回任何部分结果。
func Resolve(ctx context.Context, p providerx.Provider, c *http.Client, set domain.SelectorSet, policy Policy, onLookup OnLookup) ([]domain.Signature, error) {
	selectors := set.Sorted()

	// 每个 goroutine 只写自己的槽位：聚合发生在 Wait 之后，无需加锁。
	results := make([][]providerx.Item, len(selectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, sel := range selectors {
		i, sel := i, sel
		g.Go(func() error {
			started := time.Now()
			items, err := p.Lookup(gctx, sel, c)
			if err != nil {
				return &providerx.Error{Provider: p.Name(), Selector: sel, Err: err}
			}
			results[i] = items
			if onLookup != nil {
				onLookup(sel, len(items), time.Since(started))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &BatchError{Err: err}
	}

	out := make([]domain.Signature, 0, len(selectors))
	for _, items := range results {
		if len(items) == 0 {
			// 未收录：静默排除，不算失败。
			continue
		}
		switch policy {
		case PolicyAll:
			for _, it := range items {
				out = append(out, domain.NewSignature(it.Text, it.Hash))
			}
		default:
			out = append(out, domain.NewSignature(items[0].Text, items[0].Hash))
		}
	}
	return out, nil
}
