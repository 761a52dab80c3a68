package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	ThumbStatusGenerated = "generated"
	ThumbStatusCached    = "cached"
	ThumbStatusPlanned   = "planned"
	ThumbStatusFailed    = "failed"
)

const (
	ErrCodeSourceMissing = "source_missing"
	ErrCodeFrameFailed   = "frame_failed"
	ErrCodeEncodeFailed  = "encode_failed"
	ErrCodeIOFailed      = "io_failed"
)

// ThumbReport 是 thumbs 命令对外稳定输出（stdout JSON）的结构。
type ThumbReport struct {
	Root   string `json:"root"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ThumbSummary  `json:"summary"`
	Items   []ThumbResult `json:"items"`
}

type ThumbSummary struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Cached    int `json:"cached"`
	Planned   int `json:"planned"`
	Failed    int `json:"failed"`
}

type ThumbResult struct {
	Scene string `json:"scene"`
	File  string `json:"file"`
	Thumb string `json:"thumb"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) items 稳定排序：按 scene 字典序，scene 为空的合成项（如配置错误）排在最后
// 3) summary 由 items 计算得出
func (r *ThumbReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a, b := r.Items[i].Scene, r.Items[j].Scene
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return a < b
	})

	s := ThumbSummary{Total: len(r.Items)}
	for _, it := range r.Items {
		switch it.Status {
		case ThumbStatusGenerated:
			s.Generated++
		case ThumbStatusCached:
			s.Cached++
		case ThumbStatusPlanned:
			s.Planned++
		case ThumbStatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 保证 items 为空时输出 [] 而不是 null。
func (r ThumbReport) MarshalJSON() ([]byte, error) {
	type Alias ThumbReport
	a := Alias(r)
	if a.Items == nil {
		a.Items = []ThumbResult{}
	}
	return json.Marshal(a)
}

// ThumbPlan 描述单个 scene 的缩略图任务（每个 scene 取第一个分段）。
type ThumbPlan struct {
	Scene string
	File  string

	SrcAbs   string
	ThumbAbs string

	NeedGenerate bool
}
