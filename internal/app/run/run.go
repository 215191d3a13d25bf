// Package run 把一次完整的执行流程（取码 → 扫描 → 可选解析 → 组装报告）
// 串成一个入口，CLI 只负责参数与展示。
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/John-Robertt/sigscan/internal/address"
	"github.com/John-Robertt/sigscan/internal/bytecode"
	"github.com/John-Robertt/sigscan/internal/config"
	"github.com/John-Robertt/sigscan/internal/domain"
	"github.com/John-Robertt/sigscan/internal/infra/httpx"
	providerx "github.com/John-Robertt/sigscan/internal/provider"
	"github.com/John-Robertt/sigscan/internal/resolve"
	"github.com/John-Robertt/sigscan/internal/source"
)

// Error 是执行阶段的结构化错误：Code 取 domain 里的 error_code 常量，
// CLI 据此决定退出码与提示文案。
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Execute 按最终配置跑完一次提取。
//
// 失败即整次失败：任何阶段出错都返回零值 Report 与带 error_code 的错误，
// 不产出部分结果（签名批次的全有/全无语义由 resolve 保证）。
func Execute(ctx context.Context, eff config.EffectiveConfig, reg providerx.Registry, obs Observer) (domain.Report, error) {
	if obs == nil {
		obs = NopObserver{}
	}
	obs.OnStart(eff)

	started := time.Now()
	code, err := fetch(ctx, eff)
	if err != nil {
		return domain.Report{}, err
	}
	obs.OnPhaseDone(PhaseFetch, len(code), time.Since(started))

	started = time.Now()
	set := code.FindSelectors(eff.Deep)
	selectors := set.Sorted()
	obs.OnPhaseDone(PhaseScan, len(selectors), time.Since(started))

	report := domain.Report{Selectors: selectors}

	if eff.Signatures && len(selectors) > 0 {
		sigs, err := lookup(ctx, eff, reg, set, obs)
		if err != nil {
			return domain.Report{}, err
		}
		report.Signatures = sigs
	}

	report.Finalize()
	return report, nil
}

// fetch 按配置选择字节码来源：--file 读本地文件，--address 走 eth_getCode。
func fetch(ctx context.Context, eff config.EffectiveConfig) (bytecode.Bytecode, error) {
	if eff.File != "" {
		code, err := source.FromFile(eff.File)
		if err != nil {
			if bytecode.IsDecodeError(err) {
				return nil, &Error{Code: domain.ErrCodeBytecodeInvalid, Err: err}
			}
			return nil, &Error{Code: domain.ErrCodeIOFailed, Err: err}
		}
		return code, nil
	}

	addr, err := address.Parse(eff.Address)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeAddressInvalid, Err: err}
	}

	hc, err := httpx.NewNodeClient(eff.ProxyURL)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeRPCFetchFailed, Err: err}
	}
	node, err := source.Dial(ctx, eff.RPCURL, hc)
	if err != nil {
		return nil, classifyRPC(err)
	}
	defer node.Close()

	code, err := node.Code(ctx, addr)
	if err != nil {
		return nil, classifyRPC(err)
	}
	return code, nil
}

func classifyRPC(err error) error {
	var pe *source.ParseError
	if errors.As(err, &pe) {
		return &Error{Code: domain.ErrCodeRPCParseFailed, Err: err}
	}
	return &Error{Code: domain.ErrCodeRPCFetchFailed, Err: err}
}

func lookup(ctx context.Context, eff config.EffectiveConfig, reg providerx.Registry, set domain.SelectorSet, obs Observer) ([]domain.Signature, error) {
	p, ok := reg.Get(eff.Provider)
	if !ok {
		return nil, &Error{Code: domain.ErrCodeLookupFailed, Err: fmt.Errorf("未知的 provider：%q", eff.Provider)}
	}

	policy, err := resolve.ParsePolicy(eff.Policy)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeLookupFailed, Err: err}
	}

	hc, err := httpx.NewLookupClient(eff.ProxyURL)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeLookupFailed, Err: err}
	}

	started := time.Now()
	sigs, err := resolve.Resolve(ctx, p, hc, set, policy, obs.OnLookupDone)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeLookupFailed, Err: err}
	}
	obs.OnPhaseDone(PhaseResolve, len(sigs), time.Since(started))
	return sigs, nil
}
