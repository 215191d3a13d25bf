package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// ErrCodeLength 表示地址长度不是 42 个字符（0x + 40 位十六进制）。
	ErrCodeLength = "address_length"
	// ErrCodePrefix 表示地址缺少 0x 前缀。
	ErrCodePrefix = "address_prefix"
	// ErrCodeHex 表示 0x 之后包含非十六进制字符。
	ErrCodeHex = "address_hex"
)

// Address 是通过校验的 EVM 合约地址（保留输入原样，含 0x 前缀）。
// 只有 Parse 能构造它：拿到 Address 即拿到"已校验"的承诺。
type Address string

// Error 是地址校验的结构化错误（带 error_code）。
type Error struct {
	Code  string
	Input string
	Err   error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeLength:
		return fmt.Sprintf("%s：地址长度应为 42 个字符，实际 %d", e.Code, len(e.Input))
	case ErrCodePrefix:
		return fmt.Sprintf("%s：地址必须以 0x 开头", e.Code)
	case ErrCodeHex:
		return fmt.Sprintf("%s：地址必须是合法的十六进制字符串", e.Code)
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

// Parse 校验并构造 Address。
//
// 校验规则（固定，与链上地址格式一致）：
// 1) 长度必须是 42 个字符（0x + 20 字节）
// 2) 必须以 0x 开头
// 3) 0x 之后必须是合法十六进制
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if err := Validate(s); err != nil {
		return "", err
	}
	return Address(s), nil
}

// Validate 只做校验，不构造。规则见 Parse。
func Validate(s string) error {
	if len(s) != 42 {
		return &Error{Code: ErrCodeLength, Input: s}
	}
	if !strings.HasPrefix(s, "0x") {
		return &Error{Code: ErrCodePrefix, Input: s}
	}
	if _, err := hex.DecodeString(s[2:]); err != nil {
		return &Error{Code: ErrCodeHex, Input: s, Err: err}
	}
	return nil
}
