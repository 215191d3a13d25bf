// Package source 负责获取待扫描的字节码：本地文件或 EVM 节点的 eth_getCode。
//
// 两条路径产出同一个 bytecode.Bytecode；获取失败即整次运行失败（不重试）。
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/John-Robertt/sigscan/internal/address"
	"github.com/John-Robertt/sigscan/internal/bytecode"
)

// DefaultRPCURL 是未配置 rpc_url 时使用的公共节点。
const DefaultRPCURL = "https://ethereum-rpc.publicnode.com"

// FromFile 读取本地文件中的十六进制字节码（0x 前缀可选，首尾空白被忽略）。
//
// 返回的错误可能是文件读取错误，也可能是 *bytecode.DecodeError；
// 上层用 bytecode.IsDecodeError 区分并映射 error_code。
func FromFile(path string) (bytecode.Bytecode, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytecode.FromHex(string(b))
}

// FetchError 表示 RPC 调用在传输层失败（网络错误、节点返回 JSON-RPC 错误）。
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("eth_getCode 请求失败（%s）：%v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError 表示节点返回了无法解码的响应体。
// 最常见的原因是端点不支持 eth_getCode 或返回了非 JSON-RPC 内容。
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("eth_getCode 响应无法解析（%s）：%v；请确认端点允许 eth_getCode，或换一个 RPC provider", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Node 是只暴露 eth_getCode 的最小节点客户端。
type Node struct {
	url string
	c   *rpc.Client
}

// Dial 连接 EVM 兼容节点。hc 允许注入统一的 HTTP 策略（超时/代理），
// 传 nil 则使用默认 client。
func Dial(ctx context.Context, rawurl string, hc *http.Client) (*Node, error) {
	opts := []rpc.ClientOption{}
	if hc != nil {
		opts = append(opts, rpc.WithHTTPClient(hc))
	}
	c, err := rpc.DialOptions(ctx, rawurl, opts...)
	if err != nil {
		return nil, &FetchError{URL: rawurl, Err: err}
	}
	return &Node{url: rawurl, c: c}, nil
}

func (n *Node) Close() {
	if n != nil && n.c != nil {
		n.c.Close()
	}
}

// Code 调用 eth_getCode(address, "latest") 并返回该地址的字节码。
// 地址必须已通过 address.Parse 校验。
func (n *Node) Code(ctx context.Context, addr address.Address) (bytecode.Bytecode, error) {
	var out hexutil.Bytes
	if err := n.c.CallContext(ctx, &out, "eth_getCode", string(addr), "latest"); err != nil {
		return nil, n.classify(err)
	}
	return bytecode.Bytecode(out), nil
}

// classify 把 RPC 错误分成"传输失败"与"响应不可解析"两类。
// 解码失败来自 result 字段的 JSON/hex 反序列化；其余一律按传输失败处理。
func (n *Node) classify(err error) error {
	var js *json.SyntaxError
	var jt *json.UnmarshalTypeError
	if errors.As(err, &js) || errors.As(err, &jt) ||
		errors.Is(err, hexutil.ErrEmptyString) ||
		errors.Is(err, hexutil.ErrMissingPrefix) ||
		errors.Is(err, hexutil.ErrSyntax) ||
		errors.Is(err, hexutil.ErrOddLength) {
		return &ParseError{URL: n.url, Err: err}
	}
	return &FetchError{URL: n.url, Err: err}
}
