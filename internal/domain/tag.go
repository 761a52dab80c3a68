package domain

import (
	"fmt"
	"strings"
)

// Tag 是文件名分类标签（封闭集合）。
// 每个通过视频名过滤的文件名恰好对应一个 Tag；无规则命中时为 TagNSFW。
type Tag string

const (
	TagNSFW     Tag = "nsfw"
	TagSFW      Tag = "sfw"
	TagBC1      Tag = "bc1"
	TagBC2      Tag = "bc2"
	TagPS       Tag = "ps"
	TagProfiles Tag = "profiles"
	TagOther    Tag = "other"
)

// AllTags 按展示顺序列出全部标签。
var AllTags = []Tag{TagNSFW, TagSFW, TagBC1, TagBC2, TagPS, TagProfiles, TagOther}

// DefaultTags 是未指定过滤器时的默认选择。
var DefaultTags = []Tag{TagNSFW}

// Flag 把标签映射为展示文案（静态配置，不含逻辑）。
type Flag struct {
	Tag   Tag    `json:"value"`
	Label string `json:"label"`
}

var Flags = []Flag{
	{Tag: TagNSFW, Label: "NSFW"},
	{Tag: TagSFW, Label: "SFW"},
	{Tag: TagBC1, Label: "Booty Calls"},
	{Tag: TagBC2, Label: "Booty Calls Alt"},
	{Tag: TagPS, Label: "Porn Shop"},
	{Tag: TagProfiles, Label: "Profiles"},
	{Tag: TagOther, Label: "Other"},
}

// ParseTag 解析单个标签（忽略大小写与首尾空白）。
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	for _, x := range AllTags {
		if x == t {
			return t, true
		}
	}
	return "", false
}

// ParseTags 解析标签列表：去重并保持首次出现的顺序；遇到未知标签直接报错。
func ParseTags(ss []string) ([]Tag, error) {
	out := make([]Tag, 0, len(ss))
	seen := make(map[Tag]struct{}, len(ss))
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}
		t, ok := ParseTag(s)
		if !ok {
			return nil, fmt.Errorf("未知标签 %q（可选：%s）", s, joinTags(AllTags))
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

func joinTags(ts []Tag) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}

// Buckets 是分类结果：每个标签下的文件名保持输入顺序。
type Buckets map[Tag][]string

// Select 按过滤器顺序拼接被选中的桶；重复的标签只取一次。
func (b Buckets) Select(tags []Tag) []string {
	n := 0
	for _, t := range tags {
		n += len(b[t])
	}
	out := make([]string, 0, n)
	seen := make(map[Tag]struct{}, len(tags))
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, b[t]...)
	}
	return out
}

// Len 返回所有桶内文件总数。
func (b Buckets) Len() int {
	n := 0
	for _, xs := range b {
		n += len(xs)
	}
	return n
}
