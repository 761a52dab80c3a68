package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/John-Robertt/SceneView/internal/infra/fsx"
)

// ThumbExt 是缩略图文件的扩展名（追加在视频文件名之后）。
const ThumbExt = ".jpg"

// Store 提供 <data>/thumbnails/ 下的缩略图缓存读写。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - apply：允许写（ReadOnly=false）
type Store struct {
	fs       afero.Fs
	Dir      string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(fsys afero.Fs, dir string, readOnly bool) Store {
	return Store{
		fs:       fsys,
		Dir:      filepath.Clean(strings.TrimSpace(dir)),
		ReadOnly: readOnly,
	}
}

// ThumbPath 返回视频文件对应的缩略图绝对路径：<dir>/<file>.jpg。
func (s Store) ThumbPath(file string) (string, error) {
	name, err := thumbName(file)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

// HasThumb 判断缩略图是否已缓存（空文件视为未缓存）。
func (s Store) HasThumb(file string) (bool, error) {
	p, err := s.ThumbPath(file)
	if err != nil {
		return false, err
	}
	fi, err := s.fs.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.Mode().IsRegular() && fi.Size() > 0, nil
}

func (s Store) ReadThumb(file string) ([]byte, bool, error) {
	p, err := s.ThumbPath(file)
	if err != nil {
		return nil, false, err
	}
	b, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WriteThumb(file string, jpg []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	name, err := thumbName(file)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.fs, s.Dir, name, jpg)
}

func thumbName(file string) (string, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return "", fmt.Errorf("文件名不能为空")
	}
	// 最小约束：缓存按扁平文件名存放，避免路径穿越。
	if file == "." || file == ".." || strings.ContainsAny(file, `/\`) {
		return "", fmt.Errorf("非法文件名：%q", file)
	}
	return file + ThumbExt, nil
}
