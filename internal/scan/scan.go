package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ListFiles 列出 dir 下的常规文件名（只取名字，不含路径）。
//
// 规则（硬约束）：
// - 不递归：视频目录是扁平的
// - 跳过目录与以 '.' 开头的隐藏文件（例如原子写入留下的临时文件）
// - dir 不存在时返回空列表（视为“没有文件”，不是错误）
//
// 注意：只做 ReadDir，不读文件内容；扩展名过滤交给分类阶段。
func ListFiles(fsys afero.Fs, dir string) ([]string, error) {
	dir = filepath.Clean(dir)
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		name := fi.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !fi.Mode().IsRegular() && fi.Mode()&os.ModeSymlink == 0 {
			continue
		}
		names = append(names, name)
	}

	// 强制稳定输出，避免不同平台/文件系统的目录顺序差异。
	sort.Strings(names)
	return names, nil
}
