package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingInput 表示 --address 与 --file 一个都没给。
	ErrCodeMissingInput = "config_missing_input"
	// ErrCodeAmbiguousInput 表示 --address 与 --file 同时给了。
	ErrCodeAmbiguousInput = "config_ambiguous_input"
)

const (
	// DefaultProvider 是签名库的最终默认值（CLI 与配置文件都未指定时）。
	DefaultProvider = "etherface"
	// DefaultPolicy 是聚合策略的内置默认值。
	DefaultPolicy = "first"
	// DefaultRPCURL 是 eth_getCode 的默认公共节点。
	DefaultRPCURL = "https://ethereum-rpc.publicnode.com"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留"是否显式指定"的信息。
// 这能保证覆盖优先级可实现：例如 --policy first 必须能覆盖 config.policy=all。
type CLIArgs struct {
	Address string
	File    string

	Signatures    bool
	SignaturesSet bool

	Deep    bool
	DeepSet bool

	Policy    string
	PolicySet bool

	Provider    string
	ProviderSet bool

	RPCURL    string
	RPCURLSet bool

	Output    string
	OutputSet bool
}

// FileConfig 对应 sigscan.json 的解析结构。
// 输入来源（address/file）是逐次运行的参数，只走 CLI，不进配置文件。
type FileConfig struct {
	Provider   string       `json:"provider"`
	Policy     string       `json:"policy"`
	RPCURL     string       `json:"rpc_url"`
	Output     string       `json:"output"`
	Signatures *bool        `json:"signatures"`
	Deep       *bool        `json:"deep"`
	Proxy      *ProxyConfig `json:"proxy"`

	// 镜像/测试桩域名覆盖（高级能力，仅配置文件，不暴露 CLI 参数）。
	EtherfaceBaseURL string `json:"etherface_base_url"`
	FourbyteBaseURL  string `json:"fourbyte_base_url"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
// （实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Address string
	File    string

	Signatures bool
	Deep       bool
	Policy     string
	Provider   string
	RPCURL     string
	Output     string
	ProxyURL   string

	EtherfaceBaseURL string
	FourbyteBaseURL  string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingInput:
		return fmt.Sprintf("%s：必须提供 --address 或 --file 之一", e.Code)
	case ErrCodeAmbiguousInput:
		return fmt.Sprintf("%s：--address 与 --file 只能提供一个", e.Code)
	case ErrCodeInvalid:
		if e.Path != "" && e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
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

// LoadEffective 读取可选的 <cwd>/sigscan.json，与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - address/file：仅 CLI（必须且只能提供一个）
// - signatures/deep/policy/provider/rpc_url/output：CLI > config > 默认
// - proxy 与 base_url 覆盖：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	addr := strings.TrimSpace(cli.Address)
	file := strings.TrimSpace(cli.File)
	if addr == "" && file == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingInput}
	}
	if addr != "" && file != "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeAmbiguousInput}
	}

	cfgPath := filepath.Join(cwd, "sigscan.json")
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return merge(addr, file, cli, fc, cfgPath)
}

func merge(addr, file string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// provider：CLI > config > 默认
	provider := DefaultProvider
	if cli.ProviderSet {
		provider = cli.Provider
	} else if strings.TrimSpace(fc.Provider) != "" {
		provider = fc.Provider
	}
	if err := validateProvider(provider); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// policy：CLI > config > 默认 first
	policy := DefaultPolicy
	if cli.PolicySet {
		policy = cli.Policy
	} else if strings.TrimSpace(fc.Policy) != "" {
		policy = fc.Policy
	}
	if err := validatePolicy(policy); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// signatures/deep：CLI > config > 默认 false
	signatures := false
	if cli.SignaturesSet {
		signatures = cli.Signatures
	} else if fc.Signatures != nil {
		signatures = *fc.Signatures
	}
	deep := false
	if cli.DeepSet {
		deep = cli.Deep
	} else if fc.Deep != nil {
		deep = *fc.Deep
	}

	rpcURL := DefaultRPCURL
	if cli.RPCURLSet {
		rpcURL = strings.TrimSpace(cli.RPCURL)
	} else if strings.TrimSpace(fc.RPCURL) != "" {
		rpcURL = strings.TrimSpace(fc.RPCURL)
	}
	if err := validateHTTPURL("rpc_url", rpcURL); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	output := ""
	if cli.OutputSet {
		output = strings.TrimSpace(cli.Output)
	} else {
		output = strings.TrimSpace(fc.Output)
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy.url 无效：%w", err)}
		}
	}

	etherfaceBase := strings.TrimSpace(fc.EtherfaceBaseURL)
	if etherfaceBase != "" {
		if err := validateHTTPURL("etherface_base_url", etherfaceBase); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}
	fourbyteBase := strings.TrimSpace(fc.FourbyteBaseURL)
	if fourbyteBase != "" {
		if err := validateHTTPURL("fourbyte_base_url", fourbyteBase); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	return EffectiveConfig{
		Address:          addr,
		File:             file,
		Signatures:       signatures,
		Deep:             deep,
		Policy:           policy,
		Provider:         provider,
		RPCURL:           rpcURL,
		Output:           output,
		ProxyURL:         proxyURL,
		EtherfaceBaseURL: etherfaceBase,
		FourbyteBaseURL:  fourbyteBase,
	}, nil
}

func validateProvider(p string) error {
	switch p {
	case "etherface", "fourbyte":
		return nil
	case "":
		return fmt.Errorf("provider 不能为空")
	default:
		return fmt.Errorf("provider 只能是 etherface 或 fourbyte，实际是 %q", p)
	}
}

func validatePolicy(p string) error {
	switch p {
	case "first", "all":
		return nil
	case "":
		return fmt.Errorf("policy 不能为空")
	default:
		return fmt.Errorf("policy 只能是 first 或 all，实际是 %q", p)
	}
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return nil
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误：配置文件是可选的）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
