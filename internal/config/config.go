package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/John-Robertt/SceneView/internal/classify"
	"github.com/John-Robertt/SceneView/internal/domain"
	"github.com/John-Robertt/SceneView/internal/infra/fsx"
)

// AppName 用于拼接 XDG 配置/数据目录。
const AppName = "sceneview"

// FileName 是配置文件名（位于配置目录下）。
const FileName = "config.json"

const (
	// ErrCodeNotFound 表示未指定 path 且配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示未指定 path 且配置文件缺少 game_dir。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// DefaultConcurrency 与缩略图生成的最大并发一致。
	DefaultConcurrency = 4
	DefaultFFmpegPath  = "ffmpeg"
	DefaultThumbWidth  = 320
)

// Dirs 是配置与数据的根目录（可在测试中替换）。
type Dirs struct {
	Config string
	Data   string
}

// DefaultDirs 基于 XDG 目录规范。
func DefaultDirs() Dirs {
	return Dirs{
		Config: filepath.Join(xdg.ConfigHome, AppName),
		Data:   filepath.Join(xdg.DataHome, AppName),
	}
}

func (d Dirs) ConfigFile() string { return filepath.Join(d.Config, FileName) }
func (d Dirs) ThumbDir() string   { return filepath.Join(d.Data, "thumbnails") }
func (d Dirs) LogDir() string     { return filepath.Join(d.Data, "logs") }

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息，
// 以保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config 中的 true。
type CLIArgs struct {
	Path string

	Filters    []string
	FiltersSet bool

	Apply    bool
	ApplySet bool
}

// FileConfig 对应 config.json 的解析结构。
type FileConfig struct {
	GameDir     string   `json:"game_dir"`
	Initialized bool     `json:"initialized"`
	Filters     []string `json:"filters,omitempty" validate:"omitempty,dive,oneof=nsfw sfw bc1 bc2 ps profiles other"`
	Extensions  []string `json:"extensions,omitempty" validate:"omitempty,dive,min=2,startswith=."`
	Apply       *bool    `json:"apply,omitempty"`
	Concurrency int      `json:"concurrency,omitempty"`
	FFmpegPath  string   `json:"ffmpeg_path,omitempty"`
	ThumbWidth  int      `json:"thumb_width,omitempty" validate:"omitempty,min=16,max=4096"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path    string
	Filters []domain.Tag
	Apply   bool

	Extensions  []string
	Concurrency int
	FFmpegPath  string
	ThumbWidth  int

	Dirs Dirs
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q（先运行 sceneview setup <folder>）", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少 game_dir", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var validate = validator.New()

// LoadEffective 读取配置文件并与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：配置文件可选
// 2) CLI 未提供 path：配置文件必选，且其中必须包含 game_dir
//
// 覆盖优先级（固定）：
// - path：CLI path > config game_dir
// - filters：CLI --filter > config > 默认 [nsfw]
// - apply：CLI --apply/--apply=false > config > 默认 false
// - 其他字段：仅由 config 控制
func LoadEffective(fsys afero.Fs, dirs Dirs, cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cfgPath := dirs.ConfigFile()

	fc, exists, err := ReadFileConfig(fsys, cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	var root string
	switch {
	case strings.TrimSpace(cli.Path) != "":
		root = absCleanFrom(cwd, cli.Path)
	case !exists:
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	case strings.TrimSpace(fc.GameDir) == "":
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	default:
		root = absCleanFrom(cwd, fc.GameDir)
	}

	return merge(root, cli, fc, cfgPath, dirs)
}

func merge(root string, cli CLIArgs, fc FileConfig, cfgPath string, dirs Dirs) (EffectiveConfig, error) {
	if err := validate.Struct(fc); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// filters：CLI > config > 默认
	rawFilters := fc.Filters
	if cli.FiltersSet {
		rawFilters = cli.Filters
	}
	filters, err := domain.ParseTags(rawFilters)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if len(filters) == 0 {
		filters = append([]domain.Tag(nil), domain.DefaultTags...)
	}

	apply := false
	if cli.ApplySet {
		apply = cli.Apply
	} else if fc.Apply != nil {
		apply = *fc.Apply
	}

	exts := fc.Extensions
	if len(exts) == 0 {
		exts = classify.DefaultExtensions
	}
	if _, err := classify.New(exts); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	ffmpeg := strings.TrimSpace(fc.FFmpegPath)
	if ffmpeg == "" {
		ffmpeg = DefaultFFmpegPath
	}

	width := fc.ThumbWidth
	if width == 0 {
		width = DefaultThumbWidth
	}

	return EffectiveConfig{
		Path:        root,
		Filters:     filters,
		Apply:       apply,
		Extensions:  append([]string(nil), exts...),
		Concurrency: concurrency,
		FFmpegPath:  ffmpeg,
		ThumbWidth:  width,
		Dirs:        dirs,
	}, nil
}

// SaveRoot 记录用户选择的游戏根目录（保留配置文件中的其它字段）。
// 目录结构的校验由调用方负责（见 library.ValidateRoot）。
func SaveRoot(fsys afero.Fs, dirs Dirs, root string) error {
	cfgPath := dirs.ConfigFile()
	fc, _, err := ReadFileConfig(fsys, cfgPath)
	if err != nil {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	fc.GameDir = root
	fc.Initialized = false

	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(fsys, dirs.Config, FileName, b)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// ReadFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func ReadFileConfig(fsys afero.Fs, path string) (fc FileConfig, exists bool, err error) {
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
