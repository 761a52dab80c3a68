// Package scene 把自然排序后的文件列表重建为 scene 分组，并拆分换装变体。
package scene

import (
	"regexp"
	"sort"
	"strings"

	"github.com/John-Robertt/SceneView/internal/classify"
	"github.com/John-Robertt/SceneView/internal/domain"
)

// AltSuffix 是非默认换装变体的名称后缀。
const AltSuffix = " (Alt)"

// 前缀：要么是固定的 "BC-3s" 编号约定，要么是开头的一段字母/连字符。
var prefixRE = regexp.MustCompile(`^(BC-3[sS]|[A-Za-z-]+)(.*)$`)

var bcSceneRE = regexp.MustCompile(`^B[Cc]-.+$`)

// Assembler 依赖 Classifier 判断扩展名与换装序号。无内部可变状态。
type Assembler struct {
	c *classify.Classifier
}

func NewAssembler(c *classify.Classifier) *Assembler {
	if c == nil {
		c = classify.Default()
	}
	return &Assembler{c: c}
}

// SceneName 从文件名推导 scene 名；无法识别结构时 ok=false。
//
// 规则：
// - 前缀取 "BC-3s"/"BC-3S"，或开头的字母/连字符段
// - 若前缀后紧跟数字，且前缀以 "-<小写字母>" 分段标签结尾，去掉该标签（"BC-Office-a1" -> "BC-Office"）
// - 最后去掉一个结尾的 '-'
func (a *Assembler) SceneName(file string) (string, bool) {
	stem, ok := a.c.Stem(file)
	if !ok {
		return "", false
	}
	m := prefixRE.FindStringSubmatch(stem)
	if m == nil {
		return "", false
	}
	name, rest := m[1], m[2]
	if rest != "" && isDigit(rest[0]) && hasPartLabel(name) {
		name = name[:len(name)-2]
	}
	name = strings.TrimSuffix(name, "-")
	if name == "" {
		return "", false
	}
	return name, true
}

func hasPartLabel(s string) bool {
	n := len(s)
	return n >= 3 && s[n-2] == '-' && s[n-1] >= 'a' && s[n-1] <= 'z'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Assemble 以“消耗工作列表”的方式分组：每轮取队首推导 scene 名，
// 再从剩余的整个列表中取出所有以该名字开头的文件（纯前缀判断）。
//
// 约束：
// - sorted 必须已自然排序；函数不修改入参
// - 无法识别的文件直接丢弃
// - 同名 scene 再次出现时追加到原条目
// - 被取出的文件按身份整体移除，保证每个文件只属于一个 scene
//
// 结果已完成换装拆分（SplitOutfits）。
func (a *Assembler) Assemble(sorted []string) domain.Scenes {
	work := append([]string(nil), sorted...)
	scenes := domain.Scenes{}
	index := map[string]int{}

	for len(work) > 0 {
		name, ok := a.SceneName(work[0])
		if !ok {
			work = work[1:]
			continue
		}

		parts := make([]string, 0, 8)
		rest := work[:0:0]
		for _, f := range work {
			if strings.HasPrefix(f, name) {
				parts = append(parts, f)
			} else {
				rest = append(rest, f)
			}
		}
		// 队首一定以自己的 scene 名开头，因此 parts 非空，循环必然前进。
		work = rest

		if i, ok := index[name]; ok {
			scenes[i].Parts = append(scenes[i].Parts, parts...)
			continue
		}
		index[name] = len(scenes)
		scenes = append(scenes, domain.Scene{Name: name, Parts: parts})
	}

	return a.SplitOutfits(scenes)
}

// SplitOutfits 把 BC 类 scene 按换装序号拆分。
//
// - 序号 "1"（默认）保留原名与原位置
// - 只有一个非默认序号时命名为 "<name> (Alt)"
// - 多个非默认序号时命名为 "<name> (Alt <序号>)"，避免互相覆盖
// - 变体按序号升序紧跟在基础条目之后
// - 已经是变体的条目原样保留（重复调用结果不变）
func (a *Assembler) SplitOutfits(scenes domain.Scenes) domain.Scenes {
	out := make(domain.Scenes, 0, len(scenes))
	for _, sc := range scenes {
		if !bcSceneRE.MatchString(sc.Name) || strings.Contains(sc.Name, " (Alt") {
			out = append(out, sc)
			continue
		}

		groups := map[string][]string{}
		for _, p := range sc.Parts {
			idx := a.c.OutfitIndex(p)
			groups[idx] = append(groups[idx], p)
		}

		if base, ok := groups["1"]; ok {
			out = append(out, domain.Scene{Name: sc.Name, Parts: base})
			delete(groups, "1")
		}

		alts := make([]string, 0, len(groups))
		for idx := range groups {
			alts = append(alts, idx)
		}
		sort.Strings(alts)

		for _, idx := range alts {
			name := sc.Name + AltSuffix
			if len(alts) > 1 {
				name = sc.Name + " (Alt " + idx + ")"
			}
			out = append(out, domain.Scene{Name: name, Parts: groups[idx]})
		}
	}
	return out
}

// Retain 是装配后的二次过滤：只保留标签属于 active 的分段，分段为空的 scene 整体丢弃。
func Retain(scenes domain.Scenes, tagOf func(string) (domain.Tag, bool), active []domain.Tag) domain.Scenes {
	allowed := make(map[domain.Tag]struct{}, len(active))
	for _, t := range active {
		allowed[t] = struct{}{}
	}

	out := make(domain.Scenes, 0, len(scenes))
	for _, sc := range scenes {
		kept := make([]string, 0, len(sc.Parts))
		for _, p := range sc.Parts {
			t, ok := tagOf(p)
			if !ok {
				continue
			}
			if _, ok := allowed[t]; ok {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, domain.Scene{Name: sc.Name, Parts: kept})
	}
	return out
}
