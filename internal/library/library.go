// Package library 封装“游戏根目录”这一外部约定：
// 视频位于 <root>/www/movies，页面入口位于 <root>/www/index.html。
//
// 它实现了核心依赖的两个窄接口：列出视频文件名、把文件名解析为可播放源。
package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"

	"github.com/John-Robertt/SceneView/internal/scan"
)

var (
	// ErrNotFound 表示请求的文件不在视频目录中。
	ErrNotFound = errors.New("library: file not found")
	// ErrInvalidRoot 表示所选目录不符合游戏根目录结构（缺少 www/）。
	ErrInvalidRoot = errors.New("library: invalid game root")
)

// Library 是只读视图；可并发使用。
type Library struct {
	fs   afero.Fs
	root string
}

func New(fsys afero.Fs, root string) *Library {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Library{fs: fsys, root: filepath.Clean(strings.TrimSpace(root))}
}

func (l *Library) Root() string { return l.root }

func (l *Library) WebDir() string { return filepath.Join(l.root, "www") }

func (l *Library) MoviesDir() string { return filepath.Join(l.root, "www", "movies") }

// ValidateRoot 校验 root 是否是游戏根目录（必须包含 www/ 目录）。
func ValidateRoot(fsys afero.Fs, root string) error {
	root = strings.TrimSpace(root)
	if root == "" {
		return fmt.Errorf("%w：路径为空", ErrInvalidRoot)
	}
	ok, err := afero.DirExists(fsys, filepath.Join(filepath.Clean(root), "www"))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w：%q 下没有 www 目录", ErrInvalidRoot, root)
	}
	return nil
}

// ListVideoFiles 返回视频目录下的全部文件名（未分类、未过滤扩展名）。
func (l *Library) ListVideoFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scan.ListFiles(l.fs, l.MoviesDir())
}

// SourcePath 返回文件的绝对路径，并校验文件存在。
//
// 约束：filename 必须是单纯的文件名（不允许路径分隔符/上跳），避免越出视频目录。
func (l *Library) SourcePath(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("%w：%q", ErrNotFound, filename)
	}
	p := filepath.Join(l.MoviesDir(), filename)
	fi, err := l.fs.Stat(p)
	if err != nil || fi.IsDir() {
		return "", fmt.Errorf("%w：%q", ErrNotFound, filename)
	}
	return p, nil
}

// ResolvePlayableSource 把文件名解析为可播放的 file:// URI。
func (l *Library) ResolvePlayableSource(filename string) (string, error) {
	p, err := l.SourcePath(filename)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		// Windows 盘符路径：file:///C:/...
		u.Path = "/" + u.Path
	}
	return u.String(), nil
}

// Title 读取 www/index.html 的 <title> 作为库的展示名；读取失败或为空时退化为根目录名。
func (l *Library) Title() string {
	fallback := filepath.Base(l.root)
	b, err := afero.ReadFile(l.fs, filepath.Join(l.WebDir(), "index.html"))
	if err != nil {
		return fallback
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return fallback
	}
	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	if title == "" {
		return fallback
	}
	return title
}
