package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/John-Robertt/SceneView/internal/app"
	"github.com/John-Robertt/SceneView/internal/app/run"
	"github.com/John-Robertt/SceneView/internal/classify"
	"github.com/John-Robertt/SceneView/internal/config"
	"github.com/John-Robertt/SceneView/internal/domain"
	"github.com/John-Robertt/SceneView/internal/export"
	"github.com/John-Robertt/SceneView/internal/infra/cache"
	"github.com/John-Robertt/SceneView/internal/infra/ffmpegx"
	"github.com/John-Robertt/SceneView/internal/infra/fsx"
	"github.com/John-Robertt/SceneView/internal/library"
	"github.com/John-Robertt/SceneView/internal/logging"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// cli 持有一次命令执行的全部外部依赖（测试中替换为内存文件系统与缓冲区）。
type cli struct {
	fs        afero.Fs
	dirs      config.Dirs
	cwd       string
	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool

	// progress 为 nil 时不输出进度。
	progress io.Writer
	// frames 为 nil 时使用 ffmpeg。
	frames run.FrameSource
}

func main() {
	args, verbose := extractVerbose(os.Args[1:])

	dirs := config.DefaultDirs()
	closer, err := logging.Init(dirs.LogDir(), verbose, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败：%v\n", err)
		log.Logger = zerolog.Nop()
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(1)
	}

	progressW, _ := pickProgressWriter()
	c := &cli{
		fs:        afero.NewOsFs(),
		dirs:      dirs,
		cwd:       cwd,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isTTY(os.Stdout),
		progress:  progressW,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := c.main(ctx, args)
	stop()
	if closer != nil {
		_ = closer.Close()
	}
	os.Exit(code)
}

func (c *cli) main(ctx context.Context, args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(c.stdout)
		return 0
	}

	sub, rest := args[0], args[1:]
	for _, a := range rest {
		if isHelp(a) {
			printUsage(c.stdout)
			return 0
		}
	}

	switch sub {
	case "setup":
		return c.setupCmd(rest)
	case "scenes":
		return c.scenesCmd(ctx, rest)
	case "thumbs":
		return c.thumbsCmd(ctx, rest)
	case "resolve":
		return c.resolveCmd(rest)
	case "tags":
		return c.tagsCmd(rest)
	default:
		fmt.Fprintf(c.stderr, "未知命令：%q\n\n", sub)
		printUsage(c.stderr)
		return 2
	}
}

func (c *cli) usageError(err error) int {
	fmt.Fprintf(c.stderr, "参数错误：%v\n\n", err)
	printUsage(c.stderr)
	return 2
}

// setupCmd 校验并记录游戏根目录。
func (c *cli) setupCmd(args []string) int {
	ca, err := parseArgs(args, 0, 1)
	if err != nil {
		return c.usageError(err)
	}
	if len(ca.Positional) != 1 {
		return c.usageError(errors.New("setup 需要一个目录参数"))
	}

	root := absFrom(c.cwd, ca.Positional[0])
	if err := library.ValidateRoot(c.fs, root); err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	if err := config.SaveRoot(c.fs, c.dirs, root); err != nil {
		fmt.Fprintf(c.stderr, "保存配置失败：%v\n", err)
		return 1
	}

	title := library.New(c.fs, root).Title()
	log.Info().Str("root", root).Str("title", title).Msg("已记录游戏目录")
	if c.stdoutTTY {
		fmt.Fprintf(c.stdout, "已记录游戏目录：%s（%s）\n", root, title)
		return 0
	}
	return c.emitJSON(map[string]string{"root": root, "title": title})
}

// sceneOutput 是 scenes 命令的 JSON 输出。found=false 表示视频目录下没有任何文件。
type sceneOutput struct {
	app.Result
	Title string `json:"title"`
	Found bool   `json:"found"`
}

func (c *cli) scenesCmd(ctx context.Context, args []string) int {
	ca, err := parseArgs(args, flagFilter|flagFormat|flagOut|flagWatch|flagForce, 1)
	if err != nil {
		return c.usageError(err)
	}

	format := ca.Format
	if format == "" {
		format = formatText
		if !c.stdoutTTY {
			format = formatJSON
		}
	}
	if format != formatJSON && format != formatText {
		if format, err = export.ParseFormat(format); err != nil {
			return c.usageError(err)
		}
	}
	if ca.Watch && ca.Out != "" {
		return c.usageError(errors.New("--watch 与 --out 不能同时使用"))
	}

	eff, err := c.loadEffective(ca)
	if err != nil {
		return c.configError(err)
	}

	lib := library.New(c.fs, eff.Path)
	cls, err := classify.New(eff.Extensions)
	if err != nil {
		return c.configError(err)
	}
	catalog := app.Catalog{Lister: lib, Classifier: cls, Root: eff.Path}
	title := lib.Title()

	emit := func() int {
		res, ok := catalog.GetCategorizedScenes(ctx, eff.Filters)
		if !ok {
			fmt.Fprintf(c.stderr, "未找到视频文件：%s\n", lib.MoviesDir())
		}

		var buf bytes.Buffer
		if err := renderScenes(&buf, format, title, sceneOutput{Result: res, Title: title, Found: ok}, lib); err != nil {
			fmt.Fprintf(c.stderr, "输出失败：%v\n", err)
			return 1
		}

		if ca.Out != "" {
			if err := c.writeOut(ca.Out, buf.Bytes(), ca.Force); err != nil {
				fmt.Fprintf(c.stderr, "写入 %s 失败：%v\n", ca.Out, err)
				return 1
			}
			fmt.Fprintf(c.stderr, "已写入：%s（scenes=%d）\n", absFrom(c.cwd, ca.Out), res.Scenes.Len())
		} else if _, err := c.stdout.Write(buf.Bytes()); err != nil {
			return 1
		}

		if !ok {
			return 1
		}
		return 0
	}

	code := emit()
	if !ca.Watch {
		return code
	}

	fmt.Fprintf(c.stderr, "监听中：%s（Ctrl+C 退出）\n", lib.MoviesDir())
	if err := lib.Watch(ctx, library.DefaultDebounce, func() { emit() }); err != nil {
		fmt.Fprintf(c.stderr, "监听失败：%v\n", err)
		return 1
	}
	return 0
}

func renderScenes(w io.Writer, format, title string, out sceneOutput, lib *library.Library) error {
	switch format {
	case formatJSON:
		return json.NewEncoder(w).Encode(out)
	case formatText:
		if out.Scenes.Len() == 0 {
			_, err := fmt.Fprintln(w, "（没有匹配的场景）")
			return err
		}
		for _, sc := range out.Scenes {
			fmt.Fprintf(w, "%s (%d)\n", sc.Name, len(sc.Parts))
			for _, p := range sc.Parts {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
		return nil
	default:
		return export.Write(w, format, title, out.Scenes, lib.ResolvePlayableSource)
	}
}

// writeOut 原子写入导出文件；默认不覆盖已有文件。
func (c *cli) writeOut(path string, data []byte, force bool) error {
	abs := absFrom(c.cwd, path)
	dir, name := filepath.Split(abs)
	if force {
		return fsx.WriteFileAtomic(c.fs, dir, name, data)
	}
	err := fsx.WriteFileAtomicNoOverwrite(c.fs, dir, name, data)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("文件已存在（使用 --force 覆盖）")
	}
	return err
}

func (c *cli) thumbsCmd(ctx context.Context, args []string) int {
	ca, err := parseArgs(args, flagFilter|flagApply, 1)
	if err != nil {
		return c.usageError(err)
	}

	eff, err := c.loadEffective(ca)
	if err != nil {
		c.emitReport(reportForConfigError(absFrom(c.cwd, firstOr(ca.Positional, ".")), ca, err))
		return 1
	}

	lib := library.New(c.fs, eff.Path)
	cls, err := classify.New(eff.Extensions)
	if err != nil {
		c.emitReport(reportForConfigError(eff.Path, ca, err))
		return 1
	}

	frames := c.frames
	if frames == nil {
		ex := ffmpegx.Extractor{Path: eff.FFmpegPath}
		if eff.Apply {
			if err := ex.Check(); err != nil {
				fmt.Fprintf(c.stderr, "%v（可在配置文件中设置 ffmpeg_path）\n", err)
				return 1
			}
		}
		frames = ex
	}

	deps := run.Deps{
		Catalog: app.Catalog{Lister: lib, Classifier: cls, Root: eff.Path},
		Sources: lib,
		Store:   cache.New(c.fs, eff.Dirs.ThumbDir(), !eff.Apply),
		Frames:  frames,
	}

	var obs run.Observer
	if c.progress != nil {
		ui := newProgressUI(c.progress)
		defer ui.Close()
		obs = ui
	}

	rr := run.ExecuteWithObserver(ctx, eff, deps, obs)

	// apply：写入 <data>/report.json；dry-run 禁止落盘。
	if eff.Apply {
		if err := c.writeReportFile(eff.Dirs.Data, rr); err != nil {
			fmt.Fprintf(c.stderr, "写入 report.json 失败：%v\n", err)
			c.emitReport(rr)
			return 1
		}
	}

	c.emitReport(rr)
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

func (c *cli) resolveCmd(args []string) int {
	ca, err := parseArgs(args, 0, 2)
	if err != nil {
		return c.usageError(err)
	}
	if len(ca.Positional) == 0 {
		return c.usageError(errors.New("resolve 需要一个视频文件名"))
	}

	file := ca.Positional[len(ca.Positional)-1]
	ca.Positional = ca.Positional[:len(ca.Positional)-1]

	eff, err := c.loadEffective(ca)
	if err != nil {
		return c.configError(err)
	}

	uri, err := library.New(c.fs, eff.Path).ResolvePlayableSource(file)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	if c.stdoutTTY {
		fmt.Fprintln(c.stdout, uri)
		return 0
	}
	return c.emitJSON(map[string]string{"file": file, "uri": uri})
}

func (c *cli) tagsCmd(args []string) int {
	if _, err := parseArgs(args, 0, 0); err != nil {
		return c.usageError(err)
	}
	if c.stdoutTTY {
		for _, f := range domain.Flags {
			fmt.Fprintf(c.stdout, "%-9s %s\n", f.Tag, f.Label)
		}
		return 0
	}
	return c.emitJSON(domain.Flags)
}

func (c *cli) loadEffective(ca cmdArgs) (config.EffectiveConfig, error) {
	return config.LoadEffective(c.fs, c.dirs, c.cwd, config.CLIArgs{
		Path:       firstOr(ca.Positional, ""),
		Filters:    ca.Filters,
		FiltersSet: ca.FiltersSet,
		Apply:      ca.Apply,
		ApplySet:   ca.ApplySet,
	})
}

func (c *cli) configError(err error) int {
	if code := config.Code(err); code != "" {
		fmt.Fprintln(c.stderr, err.Error())
	} else {
		fmt.Fprintf(c.stderr, "%s：%v\n", config.ErrCodeInvalid, err)
	}
	return 1
}

func (c *cli) emitJSON(v any) int {
	enc := json.NewEncoder(c.stdout)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(c.stderr, "输出失败：%v\n", err)
		return 1
	}
	return 0
}

func (c *cli) emitReport(rr domain.ThumbReport) {
	summary := fmt.Sprintf("完成：total=%d generated=%d cached=%d planned=%d failed=%d",
		rr.Summary.Total, rr.Summary.Generated, rr.Summary.Cached, rr.Summary.Planned, rr.Summary.Failed,
	)

	if c.stdoutTTY {
		fmt.Fprintln(c.stdout, summary)
		for _, it := range rr.Items {
			if it.Status != domain.ThumbStatusFailed {
				continue
			}
			key := it.Scene
			if key == "" {
				key = "<config>"
			}
			fmt.Fprintf(c.stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 ThumbReport JSON（摘要走 stderr）。
	_ = json.NewEncoder(c.stdout).Encode(rr)
	fmt.Fprintln(c.stderr, summary)
}

func reportForConfigError(root string, ca cmdArgs, err error) domain.ThumbReport {
	now := time.Now().UTC()
	code := config.Code(err)
	if code == "" {
		code = config.ErrCodeInvalid
	}
	rr := domain.ThumbReport{
		Root:       root,
		DryRun:     !(ca.ApplySet && ca.Apply),
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ThumbResult{{
			Status:    domain.ThumbStatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func (c *cli) writeReportFile(dataDir string, rr domain.ThumbReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(c.fs, dataDir, "report.json", b)
}

func absFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func firstOr(xs []string, def string) string {
	if len(xs) > 0 {
		return xs[0]
	}
	return def
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  sceneview setup <folder>
  sceneview scenes [path] [--filter tag,...] [--format json|text|csv|m3u|xspf] [--out FILE [--force]] [--watch]
  sceneview thumbs [path] [--filter tag,...] [--apply[=true|false]]
  sceneview resolve [path] <file>
  sceneview tags

命令：
  setup    校验并记录游戏根目录（需包含 www/）
  scenes   按标签分类并组装场景
  thumbs   为每个场景生成缩略图（默认 dry-run）
  resolve  把视频文件名解析为 file:// URI
  tags     列出可用标签

参数：
  --filter    标签：nsfw|sfw|bc1|bc2|ps|profiles|other（可重复或逗号分隔；默认读配置，最终默认 nsfw）
  --format    输出格式（stdout 为终端时默认 text，否则 json）
  --out, -o   写入文件而不是 stdout（已存在时需 --force）
  --watch     监听视频目录，变化后重新输出
  --apply     执行截帧与写入（默认 dry-run）；支持 --apply=false 覆盖配置中的 apply=true
  -v, --verbose  在 stderr 输出调试日志
  -h, --help  显示帮助
`)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
