package domain

import "sort"

const (
	ErrCodeAddressInvalid  = "address_invalid"
	ErrCodeBytecodeInvalid = "bytecode_invalid"
	ErrCodeIOFailed        = "io_failed"
	ErrCodeRPCFetchFailed  = "rpc_fetch_failed"
	ErrCodeRPCParseFailed  = "rpc_parse_failed"
	ErrCodeLookupFailed    = "lookup_failed"
)

// Report 是对外稳定输出（--output 文件 / stdout JSON）的结构。
// 一次运行构造一次，Finalize 之后只读。
type Report struct {
	Selectors  []string    `json:"selectors"`
	Signatures []Signature `json:"signatures"`
}

// Finalize 做两件事：
// 1) selectors 稳定排序（字典序），避免 map 顺序带来的不确定输出
// 2) 保证两个切片非 nil（JSON 输出 [] 而不是 null）
//
// signatures 不重排：selector 间按扇出顺序、selector 内按 provider 的
// 热度排名，这个顺序本身就是契约的一部分。
func (r *Report) Finalize() {
	if r.Selectors == nil {
		r.Selectors = []string{}
	}
	if r.Signatures == nil {
		r.Signatures = []Signature{}
	}
	sort.Strings(r.Selectors)
}
