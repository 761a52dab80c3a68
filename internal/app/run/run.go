package run

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/SceneView/internal/app"
	"github.com/John-Robertt/SceneView/internal/app/planner"
	"github.com/John-Robertt/SceneView/internal/config"
	"github.com/John-Robertt/SceneView/internal/domain"
	"github.com/John-Robertt/SceneView/internal/infra/imgx"
)

// FrameSource 截取视频的一帧（JPEG/PNG 字节）。
type FrameSource interface {
	Frame(ctx context.Context, src string) ([]byte, error)
}

// ThumbStore 是缩略图缓存（读 + 写）。
type ThumbStore interface {
	planner.ThumbCache
	WriteThumb(file string, jpg []byte) error
}

// Deps 是一次 thumbs 运行需要的外部依赖。
type Deps struct {
	Catalog app.Catalog
	Sources planner.SourceResolver
	Store   ThumbStore
	Frames  FrameSource
}

// Execute 执行一次缩略图生成（dry-run/apply），并返回对外稳定的 ThumbReport。
// 单个 scene 的失败只降级为条目状态，不影响其他 scene。
func Execute(ctx context.Context, eff config.EffectiveConfig, d Deps) domain.ThumbReport {
	return ExecuteWithObserver(ctx, eff, d, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, d Deps, obs Observer) domain.ThumbReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.ThumbReport{
		Root:      eff.Path,
		DryRun:    !eff.Apply,
		StartedAt: started,
		Items:     make([]domain.ThumbResult, 0, 64),
	}

	scanStarted := time.Now()
	res, ok := d.Catalog.GetCategorizedScenes(ctx, eff.Filters)
	scanDur := time.Since(scanStarted)
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"scenes": res.Scenes.Len(),
			"found":  ok,
		}, scanDur)
	}
	if !ok {
		log.Info().Str("root", eff.Path).Msg("没有找到视频文件")
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	planStarted := time.Now()
	plans := planner.Plan(res.Scenes, d.Sources, d.Store)
	if obs != nil {
		obs.OnPhaseDone("plan", map[string]any{
			"items":        len(plans),
			"need_thumb":   planner.Pending(plans),
			"cached_thumb": len(plans) - planner.Pending(plans),
		}, time.Since(planStarted))
	}

	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}
	if obs != nil {
		obs.OnPhaseDone("exec", map[string]any{
			"workers":     workers,
			"total_items": len(plans),
		}, 0)
	}

	results := make([]domain.ThumbResult, len(plans))

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range plans {
		g.Go(func() error {
			oneStarted := time.Now()
			r := execOne(gctx, eff, p, d)

			mu.Lock()
			defer mu.Unlock()
			results[i] = r
			done++
			if obs != nil {
				obs.OnItemDone(done, len(plans), r, time.Since(oneStarted))
			}
			return nil
		})
	}
	_ = g.Wait()

	rr.Items = append(rr.Items, results...)
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func execOne(ctx context.Context, eff config.EffectiveConfig, p domain.ThumbPlan, d Deps) domain.ThumbResult {
	out := domain.ThumbResult{
		Scene: p.Scene,
		File:  p.File,
		Thumb: p.ThumbAbs,
	}

	if !p.NeedGenerate {
		out.Status = domain.ThumbStatusCached
		return out
	}
	if p.SrcAbs == "" {
		return failed(out, domain.ErrCodeSourceMissing, fmt.Sprintf("视频文件不存在：%q", p.File))
	}
	if p.ThumbAbs == "" {
		return failed(out, domain.ErrCodeIOFailed, fmt.Sprintf("无法确定缩略图路径：%q", p.File))
	}
	if !eff.Apply {
		out.Status = domain.ThumbStatusPlanned
		return out
	}

	frame, err := d.Frames.Frame(ctx, p.SrcAbs)
	if err != nil {
		return failed(out, domain.ErrCodeFrameFailed, err.Error())
	}
	jpg, err := imgx.Thumbnail(frame, eff.ThumbWidth)
	if err != nil {
		return failed(out, domain.ErrCodeEncodeFailed, err.Error())
	}
	if err := d.Store.WriteThumb(p.File, jpg); err != nil {
		return failed(out, domain.ErrCodeIOFailed, err.Error())
	}

	log.Debug().Str("scene", p.Scene).Str("thumb", p.ThumbAbs).Msg("缩略图已生成")
	out.Status = domain.ThumbStatusGenerated
	return out
}

func failed(r domain.ThumbResult, code, msg string) domain.ThumbResult {
	r.Status = domain.ThumbStatusFailed
	r.ErrorCode = code
	r.ErrorMsg = msg
	log.Warn().Str("scene", r.Scene).Str("file", r.File).Str("error_code", code).Msg(msg)
	return r
}
