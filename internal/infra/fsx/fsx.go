package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// WriteFileAtomic 在 dir 下原子写入 name（临时文件 + rename），目标已存在则覆盖。
//
// 配置文件、缩略图等内部状态使用该函数。
func WriteFileAtomic(fsys afero.Fs, dir, name string, data []byte) error {
	dst := filepath.Join(filepath.Clean(dir), name)
	if err := checkRegular(fsys, dst); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return writeFileAtomic(fsys, dir, name, data, 0o644)
}

// WriteFileAtomicNoOverwrite 与 WriteFileAtomic 相同，但目标已存在时返回 os.ErrExist。
//
// 导出的播放列表/清单属于用户文件，默认不覆盖。
func WriteFileAtomicNoOverwrite(fsys afero.Fs, dir, name string, data []byte) error {
	dst := filepath.Join(filepath.Clean(dir), name)
	if err := checkRegular(fsys, dst); err != nil {
		return err
	}
	return writeFileAtomic(fsys, dir, name, data, 0o644)
}

// checkRegular：目标不存在返回 nil；是普通文件返回 os.ErrExist；其它类型返回 PathTypeConflictError。
func checkRegular(fsys afero.Fs, dst string) error {
	fi, err := fsys.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if fi.IsDir() {
		return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
	}
	if !fi.Mode().IsRegular() {
		return &PathTypeConflictError{Path: dst, Want: "regular file", Got: fi.Mode().Type().String()}
	}
	return os.ErrExist
}

func writeFileAtomic(fsys afero.Fs, dir, name string, data []byte, perm os.FileMode) error {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)

	// 同目录临时文件（前缀带 '.'，不会被当作视频或缩略图列出）。
	tmp, err := afero.TempFile(fsys, dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fsys.Chmod(tmpName, perm); err != nil {
		return err
	}

	if err := fsys.Rename(tmpName, dst); err != nil {
		return err
	}

	// 目录 fsync：best-effort。
	_ = syncDirBestEffort(fsys, dir)
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDirBestEffort(fsys afero.Fs, dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := fsys.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
