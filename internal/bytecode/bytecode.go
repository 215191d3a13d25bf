package bytecode

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Bytecode 是一段已部署合约的原始字节码。
//
// 不变量：只能由合法十六进制来源构造（FromHex/文件/RPC），构造后只读；
// 扫描是纯函数，可重复执行且不改变缓冲区。
type Bytecode []byte

// DecodeError 表示来源字符串不是合法的十六进制字节码。
// 上层可把它映射为 error_code=bytecode_invalid。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("字节码不是合法的十六进制：%v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

// FromHex 由十六进制字符串构造 Bytecode。
// 0x 前缀可选；字符串必须是偶数长度的合法十六进制（空串合法，得到空字节码）。
func FromHex(s string) (Bytecode, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return Bytecode(b), nil
}
