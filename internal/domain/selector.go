package domain

import "sort"

// SelectorSet 是扫描结果：一组去重后的 4 字节函数选择器。
//
// 不变量（实现必须遵守）：
// - 元素是规范形态的 selector：8 个小写十六进制字符（不带 0x 前缀）
// - 集合内无序；对外输出一律走 Sorted()，保证确定性
type SelectorSet map[string]struct{}

func NewSelectorSet() SelectorSet {
	return make(SelectorSet)
}

func (s SelectorSet) Add(sel string) {
	s[sel] = struct{}{}
}

func (s SelectorSet) Has(sel string) bool {
	_, ok := s[sel]
	return ok
}

// Sorted 返回字典序排列的 selector 列表。
// 报告输出与并发解析的扇出顺序都以它为准，避免 map 迭代的不确定性泄漏到外部。
func (s SelectorSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for sel := range s {
		out = append(out, sel)
	}
	sort.Strings(out)
	return out
}
