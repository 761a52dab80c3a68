// Package natsort 提供本地化的“自然排序”：数字段按数值比较，忽略大小写与变音符号。
package natsort

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator 每次新建：collate.Collator 内部持有迭代缓冲区，不能跨 goroutine 共享。
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.Loose)
}

// Compare 返回 a 与 b 的自然排序比较结果（-1/0/1）。
func Compare(a, b string) int {
	return newCollator().CompareString(a, b)
}

// Sort 原地稳定排序。比较相等（例如仅大小写不同）的元素保持原有相对顺序。
func Sort(names []string) {
	c := newCollator()
	slices.SortStableFunc(names, c.CompareString)
}

// Sorted 返回排序后的副本，不修改入参。
func Sorted(names []string) []string {
	out := slices.Clone(names)
	Sort(out)
	return out
}
