package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/John-Robertt/SceneView/internal/app/run"
	"github.com/John-Robertt/SceneView/internal/config"
	"github.com/John-Robertt/SceneView/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下 thumbs 命令的进度输出。
//
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：ffmpeg 较慢时定期输出一行进度
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	workers int
	total   int
	done    int
	ok      int
	fail    int
	cached  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool

	okStyle     lipgloss.Style
	failStyle   lipgloss.Style
	mutedStyle  lipgloss.Style
	headerStyle lipgloss.Style
}

func newProgressUI(w io.Writer) *progressUI {
	r := lipgloss.NewRenderer(w)
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,

		okStyle:     r.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Bold(true),
		failStyle:   r.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true),
		mutedStyle:  r.NewStyle().Foreground(lipgloss.Color("245")),
		headerStyle: r.NewStyle().Foreground(lipgloss.Color("#86AAEC")).Bold(true),
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "dry-run"
	modeHint := " (不截帧/不写入)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	fmt.Fprintln(p.w, p.headerStyle.Render(fmt.Sprintf("[%s] SceneView thumbs (%s)", now.Format("15:04:05"), mode)))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  filters: %s\n", formatTags(eff.Filters))
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  ffmpeg: %s\n", eff.FFmpegPath)
	fmt.Fprintf(p.w, "  width: %d\n", eff.ThumbWidth)
	fmt.Fprintln(p.w, "输出:")
	fmt.Fprintf(p.w, "  thumbnails: %s\n", eff.Dirs.ThumbDir())
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: scenes=%d (%s)\n", intField(fields, "scenes"), formatShortDuration(dur))
	case "plan":
		fmt.Fprintf(p.w, "规划: items=%d need_thumb=%d cached=%d (%s)\n",
			intField(fields, "items"),
			intField(fields, "need_thumb"),
			intField(fields, "cached_thumb"),
			formatShortDuration(dur),
		)
	case "exec":
		p.workers = intField(fields, "workers")
		p.total = intField(fields, "total_items")
		fmt.Fprintf(p.w, "执行: workers=%d total_items=%d\n\n", p.workers, p.total)
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ThumbResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch res.Status {
	case domain.ThumbStatusGenerated, domain.ThumbStatusPlanned:
		p.ok++
	case domain.ThumbStatusCached:
		p.cached++
	case domain.ThumbStatusFailed:
		p.fail++
	}

	switch res.Status {
	case domain.ThumbStatusFailed:
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s: %s (%s)\n",
			idx, total, res.Scene, p.failStyle.Render("FAIL"), res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	case domain.ThumbStatusCached:
		fmt.Fprintf(p.w, "[%d/%d] %s %s\n", idx, total, res.Scene, p.mutedStyle.Render("CACHED"))
	case domain.ThumbStatusPlanned:
		fmt.Fprintf(p.w, "[%d/%d] %s %s <- %s\n", idx, total, res.Scene, p.okStyle.Render("PLAN"), res.File)
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s (%s)\n",
			idx, total, res.Scene, p.okStyle.Render("OK"), res.Thumb, formatShortDuration(dur),
		)
	}

	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		p.stopTickerLocked()
	}
}

// Close 停止 keepalive（幂等）。
func (p *progressUI) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tickerStarted {
		p.stopTickerLocked()
	}
}

func (p *progressUI) stopTickerLocked() {
	close(p.stopCh)
	p.tickerStarted = false
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					active := p.workers
					if remain := p.total - p.done; remain < active {
						active = remain
					}
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d cached=%d active=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, p.cached, active, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func formatTags(tags []domain.Tag) string {
	ss := make([]string, 0, len(tags))
	for _, t := range tags {
		ss = append(ss, string(t))
	}
	return "[" + strings.Join(ss, ",") + "]"
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
