// Package classify 把扁平的视频文件名列表分到固定的标签集合中。
//
// 规则完全由文件名决定（前缀约定、后缀标记、扩展名），不读取文件内容。
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/John-Robertt/SceneView/internal/domain"
)

// LoopMarker 出现在循环辅助片段的文件名中，这类文件不参与分类。
const LoopMarker = "-l"

// DefaultExtensions 是默认识别的视频扩展名。
var DefaultExtensions = []string{".mp4"}

var (
	bcRE       = regexp.MustCompile(`^B[Cc]-`)
	outfitRE   = regexp.MustCompile(`[0-9]O[0-9]`)
	psRE       = regexp.MustCompile(`^PS-`)
	profilesRE = regexp.MustCompile(`^Fig-.`)
)

// sfwNames / otherNames 是基础名白名单（正则片段，整名匹配，不含扩展名）。
var sfwNames = []string{
	`AnDnr.+`, `BoMcBox.+`, `BrRead.+`, `Character`, `ChFb`, `ChJuAt.+`, `Dinner`,
	`DiDuFght.+`, `DiHrFight.+`, `DmlsFght.+`, `DuMcGnThrow.+`, `ElChDicks`, `ElDicks`,
	`ErInt.+`, `ElHnArmW.+`, `ElHnChTma.+`, `ErMcDiner`, `ElTaDiFgt.+`, `ErJuMcChHnElDinner`,
	`HeCaGrd.+`, `HeHomesale.+`, `HeMcBYKs`, `HeWorkout.*`, `HnErMcJuChDinner`, `HnMag`,
	`JoChMc`, `JuSearch.+`, `JuSpdr.+`, `LaWrkOut.+`, `KiAdMcint`, `KiMeMcInt`,
	`KiMcInterview`, `KiScandal`, `KmChr.+`, `Li-Meet.+`, `MadalynPast`, `McErHrRead`,
	`MdJuFrst.+`, `MeAdMcYg.+`, `MinJS`, `MlScrRm.+`, `NeBoJoObMc.+`, `NoMcInt`,
	`PLACEHOLDER`, `ZephWrite`,
}

var otherNames = []string{
	`AmuletH`, `Character`, `Ending.+`, `.+Logo`, `Opening`, `Oracle`, `Research.+`,
	`Title`, `Toma-.+`,
}

// Rule 是一条有序规则：Match 命中则文件归入 Tag。
// Match 的入参是去掉扩展名后的 stem。
type Rule struct {
	Tag   domain.Tag
	Match func(stem string) bool
}

// Classifier 持有编译后的规则表；只读，可被多个 goroutine 同时使用。
type Classifier struct {
	exts  []string
	rules []Rule
}

// New 用给定扩展名构建 Classifier。扩展名大小写不敏感，可带或不带前导 '.'。
func New(exts []string) (*Classifier, error) {
	norm := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e == "." || strings.ContainsAny(e[1:], "./\\") {
			return nil, fmt.Errorf("非法扩展名：%q", e)
		}
		norm = append(norm, e)
	}
	if len(norm) == 0 {
		return nil, fmt.Errorf("至少需要一个视频扩展名")
	}

	sfwRE := wholeName(sfwNames)
	otherRE := wholeName(otherNames)

	// 顺序即优先级：先命中者胜。bc1/bc2 基于同一个 BC 前缀判断，
	// 二者互为补集，保证 BC 文件只会落入其中一个。
	rules := []Rule{
		{Tag: domain.TagBC1, Match: func(s string) bool { return isBC(s) && !hasOutfit(s) }},
		{Tag: domain.TagBC2, Match: func(s string) bool { return isBC(s) && hasOutfit(s) }},
		{Tag: domain.TagPS, Match: psRE.MatchString},
		{Tag: domain.TagProfiles, Match: profilesRE.MatchString},
		{Tag: domain.TagSFW, Match: sfwRE.MatchString},
		{Tag: domain.TagOther, Match: otherRE.MatchString},
	}
	return &Classifier{exts: norm, rules: rules}, nil
}

// Default 返回只识别 .mp4 的 Classifier。
func Default() *Classifier {
	c, err := New(DefaultExtensions)
	if err != nil {
		panic(err)
	}
	return c
}

func wholeName(names []string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + strings.Join(names, "|") + `)$`)
}

// Extensions 返回规范化后的扩展名（小写，带 '.'）。
func (c *Classifier) Extensions() []string {
	return append([]string(nil), c.exts...)
}

// Stem 去掉已识别的视频扩展名；扩展名不匹配时 ok=false。
func (c *Classifier) Stem(name string) (string, bool) {
	for _, e := range c.exts {
		if len(name) >= len(e) && strings.EqualFold(name[len(name)-len(e):], e) {
			stem := name[:len(name)-len(e)]
			return stem, stem != ""
		}
	}
	return "", false
}

// IsVideo 判断文件名是否为可播放视频（且不是循环辅助片段）。
func (c *Classifier) IsVideo(name string) bool {
	stem, ok := c.Stem(name)
	if !ok {
		return false
	}
	return !strings.Contains(stem, LoopMarker) && !strings.ContainsAny(stem, "\r\n")
}

// Tag 返回文件名的标签；非视频文件返回 ok=false。
func (c *Classifier) Tag(name string) (domain.Tag, bool) {
	if !c.IsVideo(name) {
		return "", false
	}
	stem, _ := c.Stem(name)
	for _, r := range c.rules {
		if r.Match(stem) {
			return r.Tag, true
		}
	}
	return domain.TagNSFW, true
}

// Classify 对每个视频文件名打上唯一标签，桶内保持输入顺序。
// 非视频文件静默丢弃（不是错误）。
func (c *Classifier) Classify(names []string) domain.Buckets {
	out := domain.Buckets{}
	for _, n := range names {
		t, ok := c.Tag(n)
		if !ok {
			continue
		}
		out[t] = append(out[t], n)
	}
	return out
}

// IsOutfitVariant 判断文件名是否带有换装序号标记（即 bc2）。
func (c *Classifier) IsOutfitVariant(name string) bool {
	t, ok := c.Tag(name)
	return ok && t == domain.TagBC2
}

// OutfitIndex 返回换装序号：bc2 文件取最后一个 "<数字>O<数字>" 标记中 O 之后的数字，
// 其它文件为默认序号 "1"。
func (c *Classifier) OutfitIndex(name string) string {
	if !c.IsOutfitVariant(name) {
		return "1"
	}
	stem, _ := c.Stem(name)
	if idx, ok := lastOutfitIndex(stem); ok {
		return idx
	}
	return "1"
}

func isBC(stem string) bool { return bcRE.MatchString(stem) }

func hasOutfit(stem string) bool { return outfitRE.MatchString(stem) }

// lastOutfitIndex 从右向左查找 "<数字>O<数字>"，要求数字前至少还有一个字符。
func lastOutfitIndex(stem string) (string, bool) {
	for i := len(stem) - 3; i >= 1; i-- {
		if isDigit(stem[i]) && stem[i+1] == 'O' && isDigit(stem[i+2]) {
			return stem[i+2 : i+3], true
		}
	}
	return "", false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
