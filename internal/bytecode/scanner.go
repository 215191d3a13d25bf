package bytecode

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/John-Robertt/sigscan/internal/domain"
)

// window 是所有扫描 pass 共用的窗口宽度：3 字节锚 + 4 字节 selector。
// 不足一个窗口的缓冲区（< 7 字节）在任何模式下都得到空集，
// 窗口也绝不会越过缓冲区末尾读取。
const window = 7

// FindSelectors 在字节码中收集候选函数选择器。
//
// 默认扫描由两个 pass 组成（对同一缓冲区逐字节滑窗，命中不消费窗口，
// 重叠命中全部保留，结果按 8 位小写十六进制去重）：
//
//	// dispatch 分支之间的边界：上一分支的 JUMPI 紧跟下一分支的 DUP1 PUSH4
//	JUMPI DUP1 PUSH4 <selector>
//	// 旧式比较形态（老编译器产物里常见，锚形态之前的主力启发式）
//	PUSH4 <selector> EQ
//
// deep=true 额外收集任意 PUSH4 后紧跟的 4 字节字面量（自定义错误等 4 字节
// 常量也会被抓到），代价是误报率明显升高。deep 结果恒为默认结果的超集。
//
// 这是启发式而非反汇编：扫描无法区分真正的指令字节与其它指令的立即数，
// 误报/漏报是接受的权衡。任何输入（包括空缓冲区）都合法，无错误路径。
func (b Bytecode) FindSelectors(deep bool) domain.SelectorSet {
	out := domain.NewSelectorSet()
	b.dispatchScan(out)
	if deep {
		b.pushScan(out)
	}
	return out
}

func (b Bytecode) dispatchScan(out domain.SelectorSet) {
	for i := 0; i+window <= len(b); i++ {
		if b[i] == byte(vm.JUMPI) && b[i+1] == byte(vm.DUP1) && b[i+2] == byte(vm.PUSH4) {
			out.Add(hex.EncodeToString(b[i+3 : i+7]))
		}
		if b[i] == byte(vm.PUSH4) && b[i+5] == byte(vm.EQ) {
			out.Add(hex.EncodeToString(b[i+1 : i+5]))
		}
	}
}

func (b Bytecode) pushScan(out domain.SelectorSet) {
	for i := 0; i+window <= len(b); i++ {
		if b[i] == byte(vm.PUSH4) {
			out.Add(hex.EncodeToString(b[i+1 : i+5]))
		}
	}
}
