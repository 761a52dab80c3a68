package planner

import (
	"github.com/John-Robertt/SceneView/internal/domain"
)

// SourceResolver 把视频文件名解析为绝对路径（文件必须存在）。
type SourceResolver interface {
	SourcePath(filename string) (string, error)
}

// ThumbCache 是缩略图缓存的只读视图。
type ThumbCache interface {
	ThumbPath(file string) (string, error)
	HasThumb(file string) (bool, error)
}

// Plan 为每个 scene 生成一条缩略图计划（取第一个分段作为代表帧来源），不做任何写入。
//
// - 顺序与 scenes 一致
// - 源文件缺失或缓存路径非法时 SrcAbs/ThumbAbs 为空，由执行阶段记为失败
// - 已缓存的 scene NeedGenerate=false
func Plan(scenes domain.Scenes, src SourceResolver, cache ThumbCache) []domain.ThumbPlan {
	plans := make([]domain.ThumbPlan, 0, len(scenes))
	for _, sc := range scenes {
		if len(sc.Parts) == 0 {
			continue
		}
		file := sc.Parts[0]
		p := domain.ThumbPlan{Scene: sc.Name, File: file}

		if abs, err := src.SourcePath(file); err == nil {
			p.SrcAbs = abs
		}
		if tp, err := cache.ThumbPath(file); err == nil {
			p.ThumbAbs = tp
		}

		cached, err := cache.HasThumb(file)
		p.NeedGenerate = err != nil || !cached
		plans = append(plans, p)
	}
	return plans
}

// Pending 统计需要生成的计划数。
func Pending(plans []domain.ThumbPlan) int {
	n := 0
	for _, p := range plans {
		if p.NeedGenerate {
			n++
		}
	}
	return n
}
