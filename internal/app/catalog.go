package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/John-Robertt/SceneView/internal/classify"
	"github.com/John-Robertt/SceneView/internal/domain"
	"github.com/John-Robertt/SceneView/internal/natsort"
	"github.com/John-Robertt/SceneView/internal/scene"
)

// Lister 提供视频目录下的原始文件名（未过滤）。
type Lister interface {
	ListVideoFiles(ctx context.Context) ([]string, error)
}

// Catalog 把 Classifier 与 Scene Assembler 组合成对外的分类查询。
type Catalog struct {
	Lister     Lister
	Classifier *classify.Classifier
	Root       string
}

// Result 是一次查询的结果。
type Result struct {
	Scenes   domain.Scenes `json:"scenes"`
	RootPath string        `json:"root_path"`
	Filters  []domain.Tag  `json:"filters"`
}

// GetCategorizedScenes 按标签过滤并组装场景。
//
// ok=false 表示“没有找到任何文件”（列目录失败或目录为空），调用方据此区分“无数据”与“过滤后为空”。
// 过滤后没有匹配时返回 ok=true 与空的 Scenes。
func (c Catalog) GetCategorizedScenes(ctx context.Context, filters []domain.Tag) (Result, bool) {
	res := Result{
		Scenes:   domain.Scenes{},
		RootPath: c.Root,
		Filters:  append([]domain.Tag{}, filters...),
	}

	files, err := c.Lister.ListVideoFiles(ctx)
	if err != nil {
		log.Warn().Err(err).Str("root", c.Root).Msg("列出视频文件失败")
		return res, false
	}
	if len(files) == 0 {
		log.Debug().Str("root", c.Root).Msg("视频目录为空")
		return res, false
	}

	cls := c.Classifier
	if cls == nil {
		cls = classify.Default()
	}

	buckets := cls.Classify(files)
	selected := natsort.Sorted(buckets.Select(filters))

	asm := scene.NewAssembler(cls)
	scenes := scene.Retain(asm.Assemble(selected), cls.Tag, filters)
	if scenes == nil {
		scenes = domain.Scenes{}
	}
	res.Scenes = scenes

	log.Debug().
		Int("files", len(files)).
		Int("videos", buckets.Len()).
		Int("selected", len(selected)).
		Int("scenes", scenes.Len()).
		Msg("分类完成")
	return res, true
}
