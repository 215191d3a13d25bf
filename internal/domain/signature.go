package domain

// Signature 是签名库返回的一条候选函数签名。
//
// 不变量：Selector 永远是 Hash 的前 8 个十六进制字符（纯字符串切片派生），
// 不允许独立赋值，也不做摘要重算校验——provider 报什么哈希就信什么。
type Signature struct {
	Text     string `json:"text"`
	Hash     string `json:"hash"`
	Selector string `json:"selector"`
}

// NewSignature 由签名文本与 provider 报告的哈希构造 Signature。
func NewSignature(text, hash string) Signature {
	return Signature{
		Text:     text,
		Hash:     hash,
		Selector: selectorOf(hash),
	}
}

func selectorOf(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
